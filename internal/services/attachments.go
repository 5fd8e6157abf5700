package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/diewo77/go-rentals/internal/attachments"
	"github.com/diewo77/go-rentals/internal/models"
	"github.com/diewo77/go-rentals/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DefaultMaxUpload is the per-file upload limit.
const DefaultMaxUpload int64 = 10 << 20

var (
	ErrFileTooLarge        = errors.New("file exceeds the upload limit")
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrAttachmentsDisabled = errors.New("attachment store not configured")
	ErrAttachmentStore     = errors.New("attachment store failure")
)

// Upload is a file received from a form.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Files wraps an attachment store with naming and size rules.
type Files struct {
	store   attachments.Store
	maxSize int64
	now     func() time.Time
}

func NewFiles(st attachments.Store, maxSize int64) *Files {
	if maxSize <= 0 {
		maxSize = DefaultMaxUpload
	}
	return &Files{store: st, maxSize: maxSize, now: time.Now}
}

func (f *Files) check(up Upload) error {
	if f == nil || f.store == nil {
		return ErrAttachmentsDisabled
	}
	if up.Size > f.maxSize {
		return fmt.Errorf("%s (%d bytes): %w", up.Name, up.Size, ErrFileTooLarge)
	}
	return nil
}

func contentType(up Upload) string {
	if up.ContentType != "" {
		return up.ContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(up.Name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func (f *Files) put(ctx context.Context, key string, up Upload) error {
	opts := attachments.Options{Overwrite: true, ContentType: contentType(up), CacheControl: "max-age=3600"}
	if err := f.store.Upload(ctx, key, up.Body, opts); err != nil {
		return fmt.Errorf("upload %s: %w: %w", key, ErrAttachmentStore, err)
	}
	return nil
}

// Document uploads a document for owner and returns its listing entry.
func (f *Files) Document(ctx context.Context, bucket string, owner uuid.UUID, up Upload) (models.Attachment, error) {
	if err := f.check(up); err != nil {
		return models.Attachment{}, err
	}
	key := attachments.DocumentPath(bucket, owner.String(), up.Name, f.now())
	if err := f.put(ctx, key, up); err != nil {
		return models.Attachment{}, err
	}
	return models.Attachment{
		ID:          uuid.NewString(),
		Name:        up.Name,
		URL:         f.store.PublicURL(key),
		StoragePath: key,
		Mime:        contentType(up),
		Size:        up.Size,
	}, nil
}

// Image uploads an image for owner and returns its public URL and storage path.
func (f *Files) Image(ctx context.Context, bucket string, owner uuid.UUID, up Upload) (url, key string, err error) {
	if err := f.check(up); err != nil {
		return "", "", err
	}
	key = attachments.ImagePath(bucket, owner.String(), up.Name, f.now())
	if err := f.put(ctx, key, up); err != nil {
		return "", "", err
	}
	return f.store.PublicURL(key), key, nil
}

// Remove deletes blobs, skipping empty paths.
func (f *Files) Remove(ctx context.Context, paths ...string) error {
	var keys []string
	for _, p := range paths {
		if p != "" {
			keys = append(keys, p)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if f == nil || f.store == nil {
		return ErrAttachmentsDisabled
	}
	if err := f.store.Remove(ctx, keys...); err != nil {
		return fmt.Errorf("remove %v: %w: %w", keys, ErrAttachmentStore, err)
	}
	return nil
}

// IsAttachmentError reports failures of the attachment store rather than the record store.
func IsAttachmentError(err error) bool {
	return errors.Is(err, ErrAttachmentStore) || errors.Is(err, ErrFileTooLarge) ||
		errors.Is(err, ErrAttachmentsDisabled) || errors.Is(err, attachments.ErrExists)
}

// addAttachment uploads a document and appends it to the owner's attachments
// column with a whole-collection write. Concurrent editors of the same owner
// overwrite each other's list.
func addAttachment[T any](ctx context.Context, f *Files, tbl *store.Table[T], bucket string, id uuid.UUID, list func(*T) []models.Attachment, up Upload) (*models.Attachment, error) {
	rec, err := tbl.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	att, err := f.Document(ctx, bucket, id, up)
	if err != nil {
		return nil, err
	}
	next := append(append([]models.Attachment(nil), list(rec)...), att)
	if err := tbl.Update(ctx, id, map[string]any{"attachments": datatypes.JSONSlice[models.Attachment](next)}); err != nil {
		return nil, err
	}
	return &att, nil
}

// removeAttachment deletes the blob first, then rewrites the list without it.
func removeAttachment[T any](ctx context.Context, f *Files, tbl *store.Table[T], id uuid.UUID, attID string, list func(*T) []models.Attachment) error {
	rec, err := tbl.Get(ctx, id)
	if err != nil {
		return err
	}
	cur := list(rec)
	next := make([]models.Attachment, 0, len(cur))
	var found *models.Attachment
	for i := range cur {
		if cur[i].ID == attID {
			found = &cur[i]
			continue
		}
		next = append(next, cur[i])
	}
	if found == nil {
		return ErrAttachmentNotFound
	}
	if err := f.Remove(ctx, found.StoragePath); err != nil {
		return err
	}
	return tbl.Update(ctx, id, map[string]any{"attachments": datatypes.JSONSlice[models.Attachment](next)})
}
