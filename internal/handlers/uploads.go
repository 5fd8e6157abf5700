package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/services"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// uploadSet is the result of the file fields of one form.
type uploadSet struct {
	ImageURL    string
	ImagePath   string
	Attachments []models.Attachment
}

// paths lists every blob written, for cleanup when the record write fails.
func (u uploadSet) paths() []string {
	out := make([]string, 0, len(u.Attachments)+1)
	if u.ImagePath != "" {
		out = append(out, u.ImagePath)
	}
	for _, a := range u.Attachments {
		out = append(out, a.StoragePath)
	}
	return out
}

func fileHeaders(r *http.Request, field string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[field] {
		if fh.Size > 0 && fh.Filename != "" {
			out = append(out, fh)
		}
	}
	return out
}

// withUpload opens fh for the duration of fn.
func withUpload(fh *multipart.FileHeader, fn func(services.Upload) error) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(services.Upload{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
}

// uploadForm stores the image field and every file of the attachment field
// concurrently. On failure the blobs already written are removed.
func uploadForm(ctx context.Context, files *services.Files, r *http.Request, bucket string, owner uuid.UUID, imageField, attachField string) (uploadSet, error) {
	var out uploadSet
	images := fileHeaders(r, imageField)
	docs := fileHeaders(r, attachField)
	if len(images) == 0 && len(docs) == 0 {
		return out, nil
	}
	out.Attachments = make([]models.Attachment, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	if len(images) > 0 {
		g.Go(func() error {
			return withUpload(images[0], func(up services.Upload) error {
				url, key, err := files.Image(gctx, bucket, owner, up)
				out.ImageURL, out.ImagePath = url, key
				return err
			})
		})
	}
	for i, fh := range docs {
		g.Go(func() error {
			return withUpload(fh, func(up services.Upload) error {
				a, err := files.Document(gctx, bucket, owner, up)
				out.Attachments[i] = a
				return err
			})
		})
	}
	if err := g.Wait(); err != nil {
		_ = files.Remove(context.WithoutCancel(ctx), out.paths()...)
		return uploadSet{}, err
	}
	return out, nil
}

// singleUpload runs fn on the first file of field, if any.
func singleUpload(r *http.Request, field string, fn func(services.Upload) error) (bool, error) {
	fhs := fileHeaders(r, field)
	if len(fhs) == 0 {
		return false, nil
	}
	return true, withUpload(fhs[0], fn)
}
