package collection

import (
	"time"

	"github.com/simp-lee/showroom/internal/domain"
)

// CreateCollectionRequest is the payload for creating a collection. Slug is
// optional; when omitted it is derived from name, season and year.
type CreateCollectionRequest struct {
	Name             string         `json:"name" binding:"required,min=2,max=100"`
	Slug             string         `json:"slug" binding:"omitempty,max=120"`
	Season           string         `json:"season" binding:"required,max=20"`
	Year             int            `json:"year" binding:"required"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"short_description" binding:"omitempty,max=500"`
	OrderStartDate   *time.Time     `json:"order_start_date"`
	OrderEndDate     *time.Time     `json:"order_end_date"`
	Status           string         `json:"status" binding:"omitempty,oneof=draft active archived"`
	Metadata         map[string]any `json:"metadata"`
	SEOTitle         string         `json:"seo_title" binding:"omitempty,max=200"`
	SEODescription   string         `json:"seo_description" binding:"omitempty,max=500"`
	Notes            string         `json:"notes"`
}

func (r *CreateCollectionRequest) toModel() *domain.Collection {
	return &domain.Collection{
		Name:             r.Name,
		Slug:             r.Slug,
		Season:           r.Season,
		Year:             r.Year,
		Description:      r.Description,
		ShortDescription: r.ShortDescription,
		OrderStartDate:   r.OrderStartDate,
		OrderEndDate:     r.OrderEndDate,
		Status:           r.Status,
		Metadata:         r.Metadata,
		SEOTitle:         r.SEOTitle,
		SEODescription:   r.SEODescription,
		Model:            domain.Model{Notes: r.Notes},
	}
}

// UpdateCollectionRequest is the partial-update payload. Pointer fields
// distinguish "absent" from "set to zero"; publication state changes go
// through the publish endpoints instead.
type UpdateCollectionRequest struct {
	Name             *string        `json:"name" binding:"omitempty,min=2,max=100"`
	Slug             *string        `json:"slug" binding:"omitempty,max=120"`
	Season           *string        `json:"season" binding:"omitempty,max=20"`
	Year             *int           `json:"year"`
	Description      *string        `json:"description"`
	ShortDescription *string        `json:"short_description" binding:"omitempty,max=500"`
	OrderStartDate   *time.Time     `json:"order_start_date"`
	OrderEndDate     *time.Time     `json:"order_end_date"`
	Status           *string        `json:"status" binding:"omitempty,oneof=draft active archived"`
	Metadata         map[string]any `json:"metadata"`
	SEOTitle         *string        `json:"seo_title" binding:"omitempty,max=200"`
	SEODescription   *string        `json:"seo_description" binding:"omitempty,max=500"`
	Notes            *string        `json:"notes"`
}

// changes flattens the request into a column change set.
func (r *UpdateCollectionRequest) changes() map[string]any {
	out := make(map[string]any)
	if r.Name != nil {
		out["name"] = *r.Name
	}
	if r.Slug != nil {
		out["slug"] = *r.Slug
	}
	if r.Season != nil {
		out["season"] = *r.Season
	}
	if r.Year != nil {
		out["year"] = *r.Year
	}
	if r.Description != nil {
		out["description"] = *r.Description
	}
	if r.ShortDescription != nil {
		out["short_description"] = *r.ShortDescription
	}
	if r.OrderStartDate != nil {
		out["order_start_date"] = r.OrderStartDate
	}
	if r.OrderEndDate != nil {
		out["order_end_date"] = r.OrderEndDate
	}
	if r.Status != nil {
		out["status"] = *r.Status
	}
	if r.Metadata != nil {
		out["metadata"] = r.Metadata
	}
	if r.SEOTitle != nil {
		out["seo_title"] = *r.SEOTitle
	}
	if r.SEODescription != nil {
		out["seo_description"] = *r.SEODescription
	}
	if r.Notes != nil {
		out["notes"] = *r.Notes
	}
	return out
}
