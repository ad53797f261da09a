package collection

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/pkg"
	"github.com/simp-lee/showroom/internal/service"
)

// SEO constraints carried over from the merchandising guidelines.
const (
	seoTitleMaxLen      = 60
	seoDescriptionMin   = 120
	seoDescriptionMax   = 160
	defaultFeaturedSize = 6
)

// Service implements domain.CollectionService on top of the generic
// pipeline.
type Service struct {
	base *service.Service[domain.Collection]
	repo *Repository
}

var _ domain.CollectionService = (*Service)(nil)

// NewService wires the collection business rules into the generic hooks.
func NewService(repo *Repository) *Service {
	s := &Service{repo: repo}
	s.base = service.New(repo.Repository, "collection", service.Hooks[domain.Collection]{
		ValidateCreate: s.validateCreate,
		PrepareCreate:  s.resolveSlug,
		ValidateUpdate: s.validateUpdate,
		ListFilters:    s.listFilters,
	})
	return s
}

func (s *Service) Create(ctx context.Context, c *domain.Collection, actor string) (*domain.Collection, error) {
	return s.base.Create(ctx, c, actor)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID, load []string) (*domain.Collection, error) {
	return s.base.Get(ctx, id, load)
}

func (s *Service) GetBySlug(ctx context.Context, slugVal string) (*domain.Collection, error) {
	c, err := s.repo.GetByField(ctx, "slug", slugVal)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFoundFor("collection", slugVal)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, params domain.ListParams, actor string) (*domain.PageResult[domain.Collection], error) {
	return s.base.List(ctx, params, actor)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, changes map[string]any, actor string) (*domain.Collection, error) {
	return s.base.Update(ctx, id, changes, actor)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, hard bool, actor string) error {
	return s.base.Delete(ctx, id, hard, actor)
}

func (s *Service) Restore(ctx context.Context, id uuid.UUID, actor string) (*domain.Collection, error) {
	return s.base.Restore(ctx, id, actor)
}

// SetPublished publishes or unpublishes a collection. Publishing requires
// at least one active live product; unpublishing reverts the status to
// draft.
func (s *Service) SetPublished(ctx context.Context, id uuid.UUID, publish bool, actor string) (*domain.Collection, error) {
	if _, err := s.base.Get(ctx, id, nil); err != nil {
		return nil, err
	}

	changes := map[string]any{"is_published": false, "status": domain.CollectionStatusDraft}
	if publish {
		active, err := s.repo.ActiveProductCount(ctx, id)
		if err != nil {
			return nil, err
		}
		if active == 0 {
			return nil, domain.Validation("COLLECTION_NO_ACTIVE_PRODUCTS",
				"collection has no active products to publish").
				With("collection_id", id.String())
		}
		changes = map[string]any{"is_published": true, "status": domain.CollectionStatusActive}
	}

	updated, err := s.repo.Update(ctx, id, changes, actor)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, s.base.NotFound(id.String())
	}
	return updated, nil
}

func (s *Service) Search(ctx context.Context, query string, publishedOnly bool, skip, limit int) ([]domain.Collection, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < 2 {
		return nil, domain.Validation("INVALID_SEARCH_QUERY", "search query must be at least 2 characters")
	}
	if skip < 0 {
		skip = 0
	}
	limit = pkg.ClampLimit(limit, pkg.DefaultLimit)
	return s.repo.Search(ctx, query, publishedOnly, skip, limit)
}

func (s *Service) Featured(ctx context.Context, limit int) ([]domain.Collection, error) {
	return s.repo.Featured(ctx, pkg.ClampLimit(limit, defaultFeaturedSize))
}

// Stats feeds the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*domain.CollectionStats, error) {
	return s.repo.Stats(ctx)
}

// --- hooks ---

func (s *Service) validateCreate(ctx context.Context, c *domain.Collection) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Season = strings.TrimSpace(c.Season)
	if c.Status == "" {
		c.Status = domain.CollectionStatusDraft
	}

	if c.Name == "" {
		return domain.Validation("NAME_REQUIRED", "collection name is required")
	}
	if c.Season == "" {
		return domain.Validation("SEASON_REQUIRED", "collection season is required")
	}
	if !domain.ValidCollectionStatus(c.Status) {
		return domain.Validation("INVALID_STATUS", "unknown collection status").With("status", c.Status)
	}
	if err := validateYear(c.Year); err != nil {
		return err
	}
	if err := validateOrderDates(c.OrderStartDate, c.OrderEndDate); err != nil {
		return err
	}
	return validateSEO(c.SEOTitle, c.SEODescription)
}

// resolveSlug normalizes an explicit slug or derives one from
// name+season+year, disambiguating collisions with a numeric suffix.
func (s *Service) resolveSlug(ctx context.Context, c *domain.Collection) error {
	if c.Slug != "" {
		normalized := slug.Make(c.Slug)
		if normalized == "" {
			return domain.Validation("INVALID_SLUG", "slug has no URL-safe characters").With("slug", c.Slug)
		}
		taken, err := s.repo.SlugTaken(ctx, normalized, uuid.Nil)
		if err != nil {
			return err
		}
		if taken {
			return domain.Conflict("SLUG_ALREADY_EXISTS", "slug is already in use").With("slug", normalized)
		}
		c.Slug = normalized
		return nil
	}

	base := slug.Make(fmt.Sprintf("%s %s %d", c.Name, c.Season, c.Year))
	candidate := base
	for i := 1; ; i++ {
		taken, err := s.repo.SlugTaken(ctx, candidate, uuid.Nil)
		if err != nil {
			return err
		}
		if !taken {
			break
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	c.Slug = candidate
	return nil
}

func (s *Service) validateUpdate(ctx context.Context, current *domain.Collection, changes map[string]any) error {
	if name, ok := stringChange(changes, "name"); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return domain.Validation("NAME_REQUIRED", "collection name is required")
		}
		changes["name"] = name
	}
	if season, ok := stringChange(changes, "season"); ok {
		season = strings.TrimSpace(season)
		if season == "" {
			return domain.Validation("SEASON_REQUIRED", "collection season is required")
		}
		changes["season"] = season
	}
	if status, ok := stringChange(changes, "status"); ok {
		if !domain.ValidCollectionStatus(status) {
			return domain.Validation("INVALID_STATUS", "unknown collection status").With("status", status)
		}
	}
	if year, ok := intChange(changes, "year"); ok {
		if err := validateYear(year); err != nil {
			return err
		}
	}

	// Order dates validate against the merged view of record + changes.
	start, end := current.OrderStartDate, current.OrderEndDate
	if v, ok := timeChange(changes, "order_start_date"); ok {
		start = v
	}
	if v, ok := timeChange(changes, "order_end_date"); ok {
		end = v
	}
	if err := validateOrderDates(start, end); err != nil {
		return err
	}

	title := current.SEOTitle
	if v, ok := stringChange(changes, "seo_title"); ok {
		title = v
	}
	description := current.SEODescription
	if v, ok := stringChange(changes, "seo_description"); ok {
		description = v
	}
	if err := validateSEO(title, description); err != nil {
		return err
	}

	if slugVal, ok := stringChange(changes, "slug"); ok {
		normalized := slug.Make(slugVal)
		if normalized == "" {
			return domain.Validation("INVALID_SLUG", "slug has no URL-safe characters").With("slug", slugVal)
		}
		if normalized != current.Slug {
			taken, err := s.repo.SlugTaken(ctx, normalized, current.ID)
			if err != nil {
				return err
			}
			if taken {
				return domain.Conflict("SLUG_ALREADY_EXISTS", "slug is already in use").With("slug", normalized)
			}
		}
		changes["slug"] = normalized
	}
	return nil
}

// listFilters restricts anonymous callers to live published collections.
func (s *Service) listFilters(ctx context.Context, actor string, params *domain.ListParams) error {
	if actor == "" {
		params.IncludeDeleted = false
		params.Filters = params.Filters.Merge(domain.Filters{"is_published": domain.Eq(true)})
	}
	return nil
}

// --- validation helpers ---

func validateYear(year int) error {
	max := time.Now().Year() + 2
	if year < domain.CollectionMinYear || year > max {
		return domain.Validation("INVALID_YEAR",
			fmt.Sprintf("year must be between %d and %d", domain.CollectionMinYear, max)).
			With("year", year)
	}
	return nil
}

func validateOrderDates(start, end *time.Time) error {
	if start != nil && end != nil && !end.After(*start) {
		return domain.Validation("INVALID_ORDER_DATES", "order end date must be after start date")
	}
	return nil
}

func validateSEO(title, description string) error {
	if utf8.RuneCountInString(title) > seoTitleMaxLen {
		return domain.Validation("SEO_TITLE_TOO_LONG",
			fmt.Sprintf("seo title must be at most %d characters", seoTitleMaxLen))
	}
	if description != "" {
		n := utf8.RuneCountInString(description)
		if n < seoDescriptionMin || n > seoDescriptionMax {
			return domain.Validation("SEO_DESCRIPTION_INVALID_LENGTH",
				fmt.Sprintf("seo description must be %d-%d characters", seoDescriptionMin, seoDescriptionMax))
		}
	}
	return nil
}

// --- change-set accessors ---

func stringChange(changes map[string]any, key string) (string, bool) {
	v, ok := changes[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func intChange(changes map[string]any, key string) (int, bool) {
	switch v := changes[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func timeChange(changes map[string]any, key string) (*time.Time, bool) {
	v, ok := changes[key]
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case *time.Time:
		return t, true
	case time.Time:
		return &t, true
	default:
		return nil, false
	}
}
