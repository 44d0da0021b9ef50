package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CloudinaryStore uploads media to Cloudinary and stores the secure URL it returns.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
	log    *logrus.Logger
}

func NewCloudinaryStore(cloudinaryURL, folder string, logger *logrus.Logger) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("could not configure cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder, log: logger}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, folder string, upload domain.Upload) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, upload.Body, uploader.UploadParams{
		PublicID: uuid.NewString(),
		Folder:   path.Join(s.folder, folder),
	})
	if err != nil {
		s.log.Errorf("Media: Cloudinary upload of %s failed: %v", upload.Filename, err)
		return "", fmt.Errorf("could not upload to cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		s.log.Errorf("Media: Cloudinary rejected %s: %s", upload.Filename, resp.Error.Message)
		return "", fmt.Errorf("cloudinary rejected upload: %s", resp.Error.Message)
	}
	s.log.Infof("Media: Uploaded %s to cloudinary as %s", upload.Filename, resp.PublicID)
	return resp.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, url string) error {
	publicID := publicIDFromURL(url)
	if publicID == "" {
		return nil
	}
	resp, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("could not delete from cloudinary: %w", err)
	}
	if resp.Error.Message != "" {
		return fmt.Errorf("cloudinary rejected delete: %s", resp.Error.Message)
	}
	return nil
}

// publicIDFromURL turns .../image/upload/v1712/nexus/products/abc.jpg into
// nexus/products/abc. Non-Cloudinary URLs yield "".
func publicIDFromURL(url string) string {
	const marker = "/upload/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	rest := url[idx+len(marker):]
	if slash := strings.Index(rest, "/"); slash > 0 && rest[0] == 'v' && isDigits(rest[1:slash]) {
		rest = rest[slash+1:]
	}
	return strings.TrimSuffix(rest, path.Ext(rest))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
