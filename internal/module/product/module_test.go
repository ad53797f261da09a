package product

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestModuleRegisterRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")

	mod := NewModule(&Handler{})
	mod.RegisterRoutes(api)

	expected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/products"},
		{http.MethodGet, "/api/v1/products/featured"},
		{http.MethodGet, "/api/v1/products/search"},
		{http.MethodGet, "/api/v1/products/sku/:sku"},
		{http.MethodGet, "/api/v1/products/:id"},
		{http.MethodGet, "/api/v1/collections/:id/products"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPost, "/api/v1/products/bulk"},
		{http.MethodPut, "/api/v1/products/:id"},
		{http.MethodDelete, "/api/v1/products/:id"},
		{http.MethodPost, "/api/v1/products/:id/restore"},
		{http.MethodPatch, "/api/v1/products/:id/status"},
		{http.MethodPost, "/api/v1/products/:id/feature"},
		{http.MethodPost, "/api/v1/products/:id/variants"},
		{http.MethodPut, "/api/v1/products/variants/:variantID"},
		{http.MethodPost, "/api/v1/products/:id/images"},
		{http.MethodPost, "/api/v1/products/:id/specifications"},
		{http.MethodPost, "/api/v1/products/:id/size-chart"},
	}

	registered := make(map[string]bool)
	for _, ri := range r.Routes() {
		registered[ri.Method+":"+ri.Path] = true
	}

	for _, exp := range expected {
		if !registered[exp.method+":"+exp.path] {
			t.Errorf("expected route %s %s to be registered", exp.method, exp.path)
		}
	}
}

func TestNewModule_PanicsOnNilHandler(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewModule() expected panic for nil handler, got none")
		}
	}()

	_ = NewModule(nil)
}
