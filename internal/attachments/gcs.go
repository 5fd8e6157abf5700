package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCS stores attachments in a Google Cloud Storage bucket.
type GCS struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

// NewGCS opens a client. credentialsFile may be empty to use ambient credentials;
// baseURL defaults to the public storage.googleapis.com endpoint of the bucket.
func NewGCS(ctx context.Context, bucket, baseURL, credentialsFile string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket name is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCS{client: c, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (g *GCS) Upload(ctx context.Context, p string, r io.Reader, opts Options) error {
	key, err := cleanKey(p)
	if err != nil {
		return err
	}
	obj := g.client.Bucket(g.bucket).Object(key)
	if !opts.Overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}
	w := obj.NewWriter(ctx)
	w.ContentType = opts.ContentType
	w.CacheControl = opts.CacheControl
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && gErr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("%s: %w", key, ErrExists)
		}
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}

func (g *GCS) PublicURL(p string) string {
	key, err := cleanKey(p)
	if err != nil {
		return ""
	}
	return g.baseURL + "/" + key
}

// Remove deletes every object; objects already gone are ignored.
func (g *GCS) Remove(ctx context.Context, paths ...string) error {
	for _, p := range paths {
		key, err := cleanKey(p)
		if err != nil {
			return err
		}
		if err := g.client.Bucket(g.bucket).Object(key).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}

func (g *GCS) Close() error { return g.client.Close() }
