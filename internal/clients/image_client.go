package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/sirupsen/logrus"
)

// ImageClient downloads remotely hosted images so they can be re-stored
// through a MediaStore.
type ImageClient interface {
	Fetch(ctx context.Context, imageURL string) (domain.Upload, error)
}

type imageHTTPClient struct {
	client   *http.Client
	maxBytes int64
	log      *logrus.Logger
}

func NewImageHTTPClient(timeout time.Duration, maxBytes int64, logger *logrus.Logger) ImageClient {
	return &imageHTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxBytes,
		log:      logger,
	}
}

func (c *imageHTTPClient) Fetch(ctx context.Context, imageURL string) (domain.Upload, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return domain.Upload{}, fmt.Errorf("%w: unsupported image URL %q", domain.ErrValidation, imageURL)
	}

	c.log.Infof("ImageClient: Requesting image from URL: %s", imageURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		c.log.Errorf("ImageClient: Failed to create request for %s: %v", imageURL, err)
		return domain.Upload{}, fmt.Errorf("failed to create image request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Errorf("ImageClient: Failed to execute request for %s: %v", imageURL, err)
		return domain.Upload{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.log.Warnf("ImageClient: Image %s not found", imageURL)
		return domain.Upload{}, fmt.Errorf("%w: image %s", domain.ErrNotFound, imageURL)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Errorf("ImageClient: Request for %s failed with status %d", imageURL, resp.StatusCode)
		return domain.Upload{}, fmt.Errorf("image host returned status %d for %s", resp.StatusCode, imageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(body)) > c.maxBytes {
		return domain.Upload{}, fmt.Errorf("%w: image %s exceeds %d bytes", domain.ErrValidation, imageURL, c.maxBytes)
	}

	// Content-Type headers from image hosts are unreliable.
	contentType := http.DetectContentType(body)
	if !strings.HasPrefix(contentType, "image/") {
		return domain.Upload{}, fmt.Errorf("%w: %s is %s, not an image", domain.ErrValidation, imageURL, contentType)
	}

	filename := path.Base(parsed.Path)
	if filename == "." || filename == "/" {
		filename = "image"
	}

	c.log.Infof("ImageClient: Downloaded %d bytes (%s) from %s", len(body), contentType, imageURL)
	return domain.Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	}, nil
}
