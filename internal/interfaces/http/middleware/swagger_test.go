package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSwaggerRouter(t *testing.T, cfg SwaggerConfig, auth gin.HandlerFunc) *gin.Engine {
	t.Helper()
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.Use(RequestID())
	r.GET("/swagger/*any", SwaggerProtection(cfg, auth), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return r
}

func getDocs(r *gin.Engine, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled docs are not found", func(t *testing.T) {
		r := newSwaggerRouter(t, SwaggerConfig{}, nil)
		w := getDocs(r, "127.0.0.1:40000", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeRouteNotFound, errorCode(t, w))
	})

	t.Run("enabled docs are open by default", func(t *testing.T) {
		r := newSwaggerRouter(t, SwaggerConfig{Enabled: true}, nil)
		w := getDocs(r, "203.0.113.9:40000", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "docs", w.Body.String())
	})

	t.Run("ip whitelist", func(t *testing.T) {
		r := newSwaggerRouter(t, SwaggerConfig{
			Enabled:    true,
			AllowedIPs: []string{"192.168.1.10", " 10.0.0.0/8", "not-an-ip", "300.0.0.0/99"},
		}, nil)

		tests := []struct {
			remote string
			want   int
		}{
			{"192.168.1.10:5000", http.StatusOK},
			{"10.20.30.40:5000", http.StatusOK},
			{"192.168.1.11:5000", http.StatusForbidden},
			{"[::1]:5000", http.StatusForbidden},
		}
		for _, tt := range tests {
			w := getDocs(r, tt.remote, nil)
			assert.Equal(t, tt.want, w.Code, tt.remote)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, errorCode(t, w))
			}
		}
	})

	t.Run("untrusted forwarded header is ignored", func(t *testing.T) {
		r := newSwaggerRouter(t, SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, nil)
		w := getDocs(r, "198.51.100.7:5000", map[string]string{"X-Forwarded-For": "10.0.0.1"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("require auth delegates to the auth middleware", func(t *testing.T) {
		r := newSwaggerRouter(t, SwaggerConfig{Enabled: true, RequireAuth: true},
			Auth(AuthConfig{AllowHeaderIdentity: true}))

		w := getDocs(r, "127.0.0.1:5000", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, errorCode(t, w))

		w = getDocs(r, "127.0.0.1:5000", map[string]string{UserIDHeader: "0b8f9c3e-2f6a-4a55-9d1e-6a3c1f0e2d11"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("whitelist is checked before auth", func(t *testing.T) {
		called := false
		auth := func(c *gin.Context) { called = true }
		r := newSwaggerRouter(t, SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.1"}}, auth)

		w := getDocs(r, "10.0.0.2:5000", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, called)
	})
}
