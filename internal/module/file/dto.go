package file

import (
	"strings"

	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
)

// UploadFileRequest carries the form fields accompanying a multipart
// upload. The file part itself is read separately by the handler.
type UploadFileRequest struct {
	Description  string `form:"description" binding:"omitempty,max=500"`
	Tags         string `form:"tags"`
	CollectionID string `form:"collection_id" binding:"omitempty,uuid"`
	ProductID    string `form:"product_id" binding:"omitempty,uuid"`
}

// toUpload combines the form fields with the file part into the service
// intake payload. Tags arrive comma-separated. The content type is left
// for the service to derive from the filename; clients routinely send
// application/octet-stream regardless of content.
func (r UploadFileRequest) toUpload(filename string, content []byte) (*domain.FileUpload, error) {
	up := &domain.FileUpload{
		Filename:    filename,
		Content:     content,
		Description: r.Description,
		Tags:        splitTags(r.Tags),
	}

	if r.CollectionID != "" {
		id, err := uuid.Parse(r.CollectionID)
		if err != nil {
			return nil, domain.BadRequest("INVALID_ID", "collection_id must be a valid UUID").
				With("value", r.CollectionID)
		}
		up.CollectionID = &id
	}
	if r.ProductID != "" {
		id, err := uuid.Parse(r.ProductID)
		if err != nil {
			return nil, domain.BadRequest("INVALID_ID", "product_id must be a valid UUID").
				With("value", r.ProductID)
		}
		up.ProductID = &id
	}
	return up, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}
