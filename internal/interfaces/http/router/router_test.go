package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag/v2"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	group.Group("nested", "/nested").PATCH("/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})

	r.Register(group).Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v2/test/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "pong", w.Body.String())

	req = httptest.NewRequest(http.MethodPatch, "/api/v2/test/nested/42", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "42", w.Body.String())

	assert.Equal(t, "test", group.Name())
	assert.Equal(t, "/test", group.Prefix())
}

func TestDomainGroupMiddlewareIsScoped(t *testing.T) {
	engine := gin.New()
	blocked := NewDomainGroup("blocked", "/blocked").
		Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) }).
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	open := NewDomainGroup("open", "/open").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Register(blocked, open).Setup()

	for path, want := range map[string]int{"/api/v1/blocked": http.StatusTeapot, "/api/v1/open": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, path)
	}
}

func newTestEngine(t *testing.T, checks map[string]handler.HealthCheck) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	return newDocsEngine(t, checks, middleware.SwaggerConfig{})
}

func newDocsEngine(t *testing.T, checks map[string]handler.HealthCheck, docs middleware.SwaggerConfig) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtSvc := auth.NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "storefront"})
	engine, err := NewEngine(EngineOptions{
		Logger:      zap.NewNop(),
		ServiceName: "storefront",
		MaxBodySize: 1 << 20,
		Auth:        middleware.AuthConfig{JWTService: jwtSvc},
		Docs:        docs,
	}, Handlers{
		Health:     handler.NewHealthHandler(checks),
		Products:   handler.NewProductHandler(nil),
		Categories: handler.NewCategoryHandler(nil),
		Brands:     handler.NewBrandHandler(nil),
		Cart:       handler.NewCartHandler(nil),
		Wishlist:   handler.NewWishlistHandler(nil),
	})
	require.NoError(t, err)
	return engine, jwtSvc
}

func TestNewEngine_Health(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]handler.HealthCheck{
		"database": func(context.Context) error { return nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDKey))
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestNewEngine_HealthDegraded(t *testing.T) {
	engine, _ := newTestEngine(t, map[string]handler.HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewEngine_AccessControl(t *testing.T) {
	engine, jwtSvc := newTestEngine(t, nil)
	shopper, err := jwtSvc.GenerateToken(uuid.New(), "", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"cart needs a token", http.MethodGet, "/api/v1/cart", "", http.StatusUnauthorized},
		{"wishlist needs a token", http.MethodPost, "/api/v1/wishlist/" + uuid.NewString(), "", http.StatusUnauthorized},
		{"admin needs the admin role", http.MethodPost, "/api/v1/admin/products", shopper, http.StatusForbidden},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+tt.token)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

var pathParam = regexp.MustCompile(`:(\w+)`)

func TestNewEngine_DocsCoverEveryRoute(t *testing.T) {
	engine, _ := newTestEngine(t, nil)

	raw, err := swag.ReadDoc("swagger")
	require.NoError(t, err)
	var doc struct {
		BasePath string                                `json:"basePath"`
		Paths    map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)

	served := map[string]bool{}
	for _, route := range engine.Routes() {
		rel, ok := strings.CutPrefix(route.Path, doc.BasePath)
		if !ok {
			continue
		}
		rel = pathParam.ReplaceAllString(rel, "{$1}")
		method := strings.ToLower(route.Method)
		served[method+" "+rel] = true
		assert.Contains(t, doc.Paths[rel], method, "undocumented route %s %s", route.Method, route.Path)
	}
	require.NotEmpty(t, served)

	for path, ops := range doc.Paths {
		for method := range ops {
			assert.True(t, served[method+" "+path], "documented route %s %s is not served", method, path)
		}
	}
}

func TestNewEngine_Docs(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		engine, _ := newTestEngine(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("serves the document when enabled", func(t *testing.T) {
		engine, _ := newDocsEngine(t, nil, middleware.SwaggerConfig{Enabled: true})
		req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"/cart/items"`)
	})

	t.Run("require auth rejects anonymous callers", func(t *testing.T) {
		engine, jwtSvc := newDocsEngine(t, nil, middleware.SwaggerConfig{Enabled: true, RequireAuth: true})

		req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		token, err := jwtSvc.GenerateToken(uuid.New(), "", time.Minute)
		require.NoError(t, err)
		req = httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
		w = httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
