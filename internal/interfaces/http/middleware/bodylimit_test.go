package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bodyLimitEngine echoes the body length, or reports the read error the way
// handlers do
func bodyLimitEngine(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestID(), BodyLimit(limit))
	engine.POST("/cart/items", func(c *gin.Context) {
		raw, err := io.ReadAll(c.Request.Body)
		if IsBodyTooLarge(err) {
			BodyTooLarge(c)
			return
		}
		if err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.String(http.StatusOK, fmt.Sprint(len(raw)))
	})
	engine.DELETE("/cart/items", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return engine
}

func TestBodyLimit(t *testing.T) {
	item := `{"product_id":"6f1c","size":"9","quantity":2}`

	tests := []struct {
		name          string
		limit         int64
		body          string
		contentLength int64
		wantStatus    int
	}{
		{"declared length within limit", 64, item, int64(len(item)), http.StatusOK},
		{"declared length at the limit", int64(len(item)), item, int64(len(item)), http.StatusOK},
		{"declared length over limit", 16, item, int64(len(item)), http.StatusRequestEntityTooLarge},
		{"undeclared length over limit", 16, item, -1, http.StatusRequestEntityTooLarge},
		{"undeclared length within limit", 64, item, -1, http.StatusOK},
		{"limit disabled", 0, strings.Repeat("x", 4096), 4096, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			bodyLimitEngine(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, fmt.Sprint(len(tt.body)), w.Body.String())
			}
		})
	}
}

func TestBodyLimit_Envelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(strings.Repeat("x", 200)))
	req.Header.Set(RequestIDKey, "req-413")
	w := httptest.NewRecorder()
	bodyLimitEngine(100).ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
	assert.Equal(t, "req-413", resp.Error.RequestID)
	assert.Equal(t, http.StatusRequestEntityTooLarge, dto.GetHTTPStatus(resp.Error.Code))
}

func TestBodyLimit_BodylessRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/cart/items", nil)
	w := httptest.NewRecorder()
	bodyLimitEngine(1).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIsBodyTooLarge(t *testing.T) {
	assert.True(t, IsBodyTooLarge(fmt.Errorf("bind: %w", &http.MaxBytesError{Limit: 16})))
	assert.False(t, IsBodyTooLarge(io.ErrUnexpectedEOF))
	assert.False(t, IsBodyTooLarge(nil))
}
