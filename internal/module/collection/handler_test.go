package collection

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/simp-lee/showroom/internal/domain"
	"github.com/simp-lee/showroom/internal/middleware"
	"github.com/simp-lee/showroom/internal/pkg"
)

// mockService is an in-memory domain.CollectionService for handler tests.
type mockService struct {
	collections map[uuid.UUID]*domain.Collection
	createErr   error
	publishErr  error

	lastParams domain.ListParams
	lastActor  string
	lastQuery  string
	lastScoped bool
}

func newMockService() *mockService {
	return &mockService{collections: make(map[uuid.UUID]*domain.Collection)}
}

func (m *mockService) Create(_ context.Context, c *domain.Collection, actor string) (*domain.Collection, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	c.ID = uuid.New()
	m.lastActor = actor
	m.collections[c.ID] = c
	return c, nil
}

func (m *mockService) Get(_ context.Context, id uuid.UUID, _ []string) (*domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, domain.NotFoundFor("collection", id)
	}
	return c, nil
}

func (m *mockService) GetBySlug(_ context.Context, slug string) (*domain.Collection, error) {
	for _, c := range m.collections {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, domain.NotFoundFor("collection", slug)
}

func (m *mockService) List(_ context.Context, params domain.ListParams, actor string) (*domain.PageResult[domain.Collection], error) {
	m.lastParams = params
	m.lastActor = actor
	items := make([]domain.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		items = append(items, *c)
	}
	page := domain.NewPage(items, int64(len(items)), params.Skip, max(params.Limit, 1))
	return &page, nil
}

func (m *mockService) Update(_ context.Context, id uuid.UUID, changes map[string]any, _ string) (*domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, domain.NotFoundFor("collection", id)
	}
	if name, ok := changes["name"].(string); ok {
		c.Name = name
	}
	return c, nil
}

func (m *mockService) Delete(_ context.Context, id uuid.UUID, _ bool, _ string) error {
	if _, ok := m.collections[id]; !ok {
		return domain.NotFoundFor("collection", id)
	}
	delete(m.collections, id)
	return nil
}

func (m *mockService) Restore(_ context.Context, id uuid.UUID, _ string) (*domain.Collection, error) {
	c, ok := m.collections[id]
	if !ok {
		return nil, domain.NotFoundFor("collection", id)
	}
	return c, nil
}

func (m *mockService) SetPublished(_ context.Context, id uuid.UUID, publish bool, _ string) (*domain.Collection, error) {
	if m.publishErr != nil {
		return nil, m.publishErr
	}
	c, ok := m.collections[id]
	if !ok {
		return nil, domain.NotFoundFor("collection", id)
	}
	c.IsPublished = publish
	return c, nil
}

func (m *mockService) Search(_ context.Context, query string, publishedOnly bool, _, _ int) ([]domain.Collection, error) {
	m.lastQuery = query
	m.lastScoped = publishedOnly
	return nil, nil
}

func (m *mockService) Featured(_ context.Context, _ int) ([]domain.Collection, error) {
	return nil, nil
}

func setupHandlerRouter(svc domain.CollectionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	NewModule(NewHandler(svc)).RegisterRoutes(api)
	return r
}

// asUser injects an authenticated principal ahead of the module routes, in
// place of the full authenticator.
func setupHandlerRouterAs(svc domain.CollectionService, p *domain.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetPrincipal(c, p)
		c.Next()
	})
	api := r.Group("/api/v1")
	NewModule(NewHandler(svc)).RegisterRoutes(api)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func editorPrincipal() *domain.Principal {
	return &domain.Principal{UserID: uuid.New(), UID: "uid-editor", Role: domain.RoleUser}
}

func TestHandler_Create(t *testing.T) {
	svc := newMockService()
	r := setupHandlerRouterAs(svc, editorPrincipal())

	body := `{"name":"Summer Breeze","season":"Summer","year":2024}`
	w := doJSON(r, http.MethodPost, "/api/v1/collections", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}
	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "success" {
		t.Errorf("message = %q, want success", resp.Message)
	}
	if svc.lastActor == "" {
		t.Error("expected actor to be forwarded to the service")
	}
}

func TestHandler_Create_RequiresAuth(t *testing.T) {
	r := setupHandlerRouter(newMockService())

	body := `{"name":"Summer Breeze","season":"Summer","year":2024}`
	w := doJSON(r, http.MethodPost, "/api/v1/collections", body)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestHandler_Create_BindingError(t *testing.T) {
	r := setupHandlerRouterAs(newMockService(), editorPrincipal())

	w := doJSON(r, http.MethodPost, "/api/v1/collections", `{"season":"Summer"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp pkg.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := resp.Errors["name"]; !ok {
		t.Error("expected 'name' in the field error map")
	}
}

func TestHandler_Create_ServiceConflict(t *testing.T) {
	svc := newMockService()
	svc.createErr = domain.Conflict("SLUG_ALREADY_EXISTS", "slug is already in use")
	r := setupHandlerRouterAs(svc, editorPrincipal())

	body := `{"name":"Summer Breeze","season":"Summer","year":2024}`
	w := doJSON(r, http.MethodPost, "/api/v1/collections", body)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestHandler_Get(t *testing.T) {
	svc := newMockService()
	c := &domain.Collection{Name: "Lookup", Slug: "lookup"}
	c.ID = uuid.New()
	svc.collections[c.ID] = c
	r := setupHandlerRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/v1/collections/"+c.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/collections/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing status = %d, want 404", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/v1/collections/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", w.Code)
	}
}

func TestHandler_GetBySlug(t *testing.T) {
	svc := newMockService()
	c := &domain.Collection{Name: "Lookup", Slug: "summer-lookup"}
	c.ID = uuid.New()
	svc.collections[c.ID] = c
	r := setupHandlerRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/v1/collections/slug/summer-lookup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestHandler_List_Filters(t *testing.T) {
	svc := newMockService()
	r := setupHandlerRouter(svc)

	w := doJSON(r, http.MethodGet, "/api/v1/collections?season=Summer&year=2024&status=active&is_published=true&skip=5&limit=10", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	if svc.lastParams.Skip != 5 || svc.lastParams.Limit != 10 {
		t.Errorf("pagination = %d/%d, want 5/10", svc.lastParams.Skip, svc.lastParams.Limit)
	}
	for _, col := range []string{"season", "year", "status", "is_published"} {
		if _, ok := svc.lastParams.Filters[col]; !ok {
			t.Errorf("expected filter on %q", col)
		}
	}
	if svc.lastActor != "" {
		t.Errorf("anonymous actor = %q, want empty", svc.lastActor)
	}
}

func TestHandler_List_BadYear(t *testing.T) {
	r := setupHandlerRouter(newMockService())

	w := doJSON(r, http.MethodGet, "/api/v1/collections?year=twenty", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandler_Update(t *testing.T) {
	svc := newMockService()
	c := &domain.Collection{Name: "Before"}
	c.ID = uuid.New()
	svc.collections[c.ID] = c
	r := setupHandlerRouterAs(svc, editorPrincipal())

	w := doJSON(r, http.MethodPut, "/api/v1/collections/"+c.ID.String(), `{"name":"After"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if c.Name != "After" {
		t.Errorf("name = %q, want After", c.Name)
	}
}

func TestHandler_Delete_RoleGate(t *testing.T) {
	svc := newMockService()
	c := &domain.Collection{Name: "Gated"}
	c.ID = uuid.New()
	svc.collections[c.ID] = c

	// A viewer fails the role gate.
	viewer := &domain.Principal{UserID: uuid.New(), UID: "uid-viewer", Role: domain.RoleViewer}
	r := setupHandlerRouterAs(svc, viewer)
	w := doJSON(r, http.MethodDelete, "/api/v1/collections/"+c.ID.String(), "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("viewer status = %d, want 403", w.Code)
	}

	r = setupHandlerRouterAs(svc, editorPrincipal())
	w = doJSON(r, http.MethodDelete, "/api/v1/collections/"+c.ID.String(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("editor status = %d, want 200", w.Code)
	}
}

func TestHandler_Publish_ValidationMapsTo422(t *testing.T) {
	svc := newMockService()
	svc.publishErr = domain.Validation("COLLECTION_NO_ACTIVE_PRODUCTS", "collection has no active products to publish")
	r := setupHandlerRouterAs(svc, editorPrincipal())

	w := doJSON(r, http.MethodPost, "/api/v1/collections/"+uuid.NewString()+"/publish", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ErrorCode != "COLLECTION_NO_ACTIVE_PRODUCTS" {
		t.Errorf("error_code = %q, want COLLECTION_NO_ACTIVE_PRODUCTS", resp.ErrorCode)
	}
}

func TestHandler_Search_AnonymousIsAlwaysScoped(t *testing.T) {
	svc := newMockService()
	r := setupHandlerRouter(svc)

	// Anonymous callers cannot opt out of the published-only scope.
	w := doJSON(r, http.MethodGet, "/api/v1/collections/search?q=summer&published_only=false", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !svc.lastScoped {
		t.Error("anonymous search was not scoped to published collections")
	}

	r = setupHandlerRouterAs(svc, editorPrincipal())
	w = doJSON(r, http.MethodGet, "/api/v1/collections/search?q=summer&published_only=false", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if svc.lastScoped {
		t.Error("authenticated search ignored published_only=false")
	}
}
