package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// LocalStore writes uploads below root; the HTTP server serves root at baseURL.
type LocalStore struct {
	root    string
	baseURL string
	log     *logrus.Logger
}

func NewLocalStore(root, baseURL string, logger *logrus.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not create media root %s: %w", root, err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger,
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, folder string, upload domain.Upload) (string, error) {
	name := objectName(upload)
	dir := filepath.Join(s.root, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create media folder: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("could not create media file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, readerWithContext(ctx, upload.Body))
	if err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("could not write media file: %w", err)
	}

	url := s.baseURL + "/" + path.Join(folder, name)
	s.log.Infof("Media: Stored %s (%d bytes) at %s", upload.Filename, written, url)
	return url, nil
}

// Delete removes a file previously returned by Save. URLs outside baseURL are ignored.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	rel := strings.TrimPrefix(url, s.baseURL+"/")
	if rel == url || rel == "" || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete media file: %w", err)
	}
	return nil
}

// objectName keeps the upload's extension and replaces the rest with a uuid.
func objectName(upload domain.Upload) string {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext == "" {
		ext = extensionFor(upload.ContentType)
	}
	return uuid.NewString() + ext
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// IsAllowedImage reports whether contentType is an image format the API accepts.
func IsAllowedImage(contentType string) bool {
	_, ok := allowedImageTypes[strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))]
	return ok
}

func extensionFor(contentType string) string {
	return allowedImageTypes[strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))]
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
