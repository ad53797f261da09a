package file

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
	"github.com/simp-lee/showroom/internal/pkg"
)

// Handler handles REST API requests for the file resource.
type Handler struct {
	svc domain.FileService
}

// NewHandler creates a file handler backed by the given service.
func NewHandler(svc domain.FileService) *Handler {
	return &Handler{svc: svc}
}

// Upload handles POST /api/v1/files/upload. The request is multipart with
// the content under the "file" field and metadata in sibling form fields.
func (h *Handler) Upload(c *gin.Context) {
	var req UploadFileRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		pkg.Error(c, domain.BadRequest("FILE_REQUIRED", `multipart field "file" is required`))
		return
	}
	src, err := fh.Open()
	if err != nil {
		pkg.Error(c, domain.BadRequest("INVALID_UPLOAD", "uploaded file is unreadable"))
		return
	}
	defer src.Close()
	content, err := io.ReadAll(src)
	if err != nil {
		pkg.Error(c, domain.BadRequest("INVALID_UPLOAD", "uploaded file is unreadable"))
		return
	}

	up, err := req.toUpload(fh.Filename, content)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.Upload(c.Request.Context(), up, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    result,
	})
}

// Get handles GET /api/v1/files/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	f, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, f)
}

// List handles GET /api/v1/files with collection_id, product_id,
// content_type and tag filters. content_type matches by prefix, so
// "image" covers every image subtype.
func (h *Handler) List(c *gin.Context) {
	params, err := pkg.ParseListParams(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	filters := domain.Filters{}
	if raw := c.Query("collection_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			pkg.Error(c, domain.BadRequest("INVALID_ID", "collection_id must be a valid UUID").
				With("value", raw))
			return
		}
		filters["collection_id"] = domain.Eq(id)
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			pkg.Error(c, domain.BadRequest("INVALID_ID", "product_id must be a valid UUID").
				With("value", raw))
			return
		}
		filters["product_id"] = domain.Eq(id)
	}
	if ct := c.Query("content_type"); ct != "" {
		filters["content_type"] = domain.Like(ct + "%")
	}
	if tag := c.Query("tag"); tag != "" {
		// Tags persist as a JSON array, so a quoted element matches exactly.
		filters["tags"] = domain.Like(`%"` + tag + `"%`)
	}
	params.Filters = filters
	params.IncludeDeleted = pkg.BoolQuery(c, "include_deleted")

	result, err := h.svc.List(c.Request.Context(), params, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Download handles GET /api/v1/files/:id/download, streaming the stored
// content with the original filename.
func (h *Handler) Download(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	f, rc, err := h.svc.Download(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, f.Size, f.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", f.OriginalFilename),
	})
}

// Delete handles DELETE /api/v1/files/:id. The hard query flag switches
// from soft delete to physical removal including the stored blob.
func (h *Handler) Delete(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, pkg.BoolQuery(c, "hard"), middleware.Actor(c)); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// Restore handles POST /api/v1/files/:id/restore.
func (h *Handler) Restore(c *gin.Context) {
	id, err := pkg.UUIDParam(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	f, err := h.svc.Restore(c.Request.Context(), id, middleware.Actor(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, f)
}

// Search handles GET /api/v1/files/search.
func (h *Handler) Search(c *gin.Context) {
	skip, err := pkg.IntQuery(c, "skip", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	limit, err := pkg.IntQuery(c, "limit", 0)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	files, err := h.svc.Search(c.Request.Context(), c.Query("q"), skip, limit)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, files)
}
