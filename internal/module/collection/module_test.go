package collection

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
		{http.MethodGet, "/api/v1/collections"},
		{http.MethodGet, "/api/v1/collections/featured"},
		{http.MethodGet, "/api/v1/collections/search"},
		{http.MethodGet, "/api/v1/collections/slug/:slug"},
		{http.MethodGet, "/api/v1/collections/:id"},
		{http.MethodPost, "/api/v1/collections"},
		{http.MethodPut, "/api/v1/collections/:id"},
		{http.MethodDelete, "/api/v1/collections/:id"},
		{http.MethodPost, "/api/v1/collections/:id/restore"},
		{http.MethodPost, "/api/v1/collections/:id/publish"},
		{http.MethodPost, "/api/v1/collections/:id/unpublish"},
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
