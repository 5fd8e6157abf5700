// Package attachments is the attachment store client: binary blobs stored
// under per-entity path prefixes and exposed through public URLs.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

// Per-entity buckets (path prefixes).
const (
	BucketCompanies = "companies"
	BucketAssets    = "assets"
	BucketKits      = "asset-kits"
)

// ErrExists is returned by Upload when the path is taken and Overwrite is false.
var ErrExists = errors.New("attachment already exists")

// Options tune an upload.
type Options struct {
	Overwrite    bool
	ContentType  string
	CacheControl string
}

// Store is implemented by every backend.
type Store interface {
	Upload(ctx context.Context, p string, r io.Reader, opts Options) error
	PublicURL(p string) string
	Remove(ctx context.Context, paths ...string) error
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeName keeps a file name safe for object keys.
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// DocumentPath builds "<bucket>/documents/<owner>/<unixmilli>-<name>".
func DocumentPath(bucket, owner, name string, now time.Time) string {
	return fmt.Sprintf("%s/documents/%s/%d-%s", bucket, owner, now.UnixMilli(), SanitizeName(name))
}

// ImagePath builds "<bucket>/images/<owner>/<unixmilli>-<name>".
func ImagePath(bucket, owner, name string, now time.Time) string {
	return fmt.Sprintf("%s/images/%s/%d-%s", bucket, owner, now.UnixMilli(), SanitizeName(name))
}

// cleanKey rejects traversal and normalises separators.
func cleanKey(p string) (string, error) {
	p = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
	if p == "" || p == "." {
		return "", fmt.Errorf("invalid attachment path %q", p)
	}
	return p, nil
}
