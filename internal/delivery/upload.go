package delivery

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/jj-tech-ranger/alx-project-nexus/internal/domain"

	"github.com/gin-gonic/gin"
)

const uploadField = "image"

// readUpload opens the "image" multipart field. The content type is sniffed
// from the first bytes rather than trusted from the client.
func readUpload(c *gin.Context, maxBytes int64) (domain.Upload, func(), error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		return domain.Upload{}, nil, fmt.Errorf("%w: multipart field %q is required (max %d bytes): %v", domain.ErrValidation, uploadField, maxBytes, err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		file.Close()
		return domain.Upload{}, nil, fmt.Errorf("could not read upload: %w", err)
	}
	head = head[:n]

	upload := domain.Upload{
		Filename:    header.Filename,
		ContentType: http.DetectContentType(head),
		Size:        header.Size,
		Body:        io.MultiReader(bytes.NewReader(head), file),
	}
	return upload, func() { file.Close() }, nil
}
