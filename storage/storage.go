package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/errs"
)

// BlobStore keeps uploaded files and hands back a public URL for each one.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the blob store selected by STORAGE_DRIVER (s3 or minio).
func New(ctx context.Context, c config.Config) (BlobStore, error) {
	switch driver := config.GetString(c, "STORAGE_DRIVER", "s3"); driver {
	case "s3":
		return NewS3Store(ctx, c)
	case "minio":
		return NewMinIOStore(ctx, c)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", driver)
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// ResumeKey returns a unique object key under resumes/ for an uploaded filename.
func ResumeKey(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = unsafeFilenameChars.ReplaceAllString(base, "_")
	base = strings.Trim(base, "._")
	if base == "" {
		base = "resume.pdf"
	}
	return fmt.Sprintf("resumes/%s-%s", uuid.NewString(), base)
}

// publicURL joins a base URL and an object key.
func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func requireSetting(c config.Config, key string) (string, error) {
	v := config.GetString(c, key, "")
	if v == "" {
		return "", errs.NewConfigMissingError(key)
	}
	return v, nil
}
