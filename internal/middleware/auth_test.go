package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(auth *APIKeyAuth, called *bool) *gin.Engine {
	r := gin.New()
	r.Use(auth.Handler())
	r.GET("/test", func(c *gin.Context) {
		*called = true
		c.Status(http.StatusOK)
	})
	return r
}

func TestNewAPIKeyAuth(t *testing.T) {
	t.Parallel()

	t.Run("creates auth with valid keys", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{"key1", "key2", "key3"}, nil)

		require.NotNil(t, auth)
		assert.Len(t, auth.apiKeys, 3)
		assert.True(t, auth.apiKeys["key1"])
		assert.True(t, auth.apiKeys["key3"])
	})

	t.Run("filters out empty keys", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{"key1", "", "key2", ""}, nil)

		assert.Len(t, auth.apiKeys, 2)
	})

	t.Run("uses nop logger when nil", func(t *testing.T) {
		t.Parallel()

		auth := NewAPIKeyAuth([]string{"key1"}, nil)

		require.NotNil(t, auth.log)
	})

	t.Run("uses provided logger", func(t *testing.T) {
		t.Parallel()

		log := zap.NewExample()
		auth := NewAPIKeyAuth([]string{"key1"}, log)

		assert.Same(t, log, auth.log)
	})
}

func TestAPIKeyAuth_Handler_Success(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headerName string
		apiKey     string
		validKeys  []string
	}{
		{"valid X-API-Key header", headerAPIKey, "valid-key-123", []string{"valid-key-123"}},
		{"valid Authorization Bearer header", headerAuth, "Bearer valid-key-456", []string{"valid-key-456"}},
		{"matches one of multiple valid keys", headerAPIKey, "key2", []string{"key1", "key2", "key3"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			r := newAuthRouter(NewAPIKeyAuth(tt.validKeys, nil), &called)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(tt.headerName, tt.apiKey)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.True(t, called, "handler should have been called")
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestAPIKeyAuth_Handler_Unauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		header    string
		value     string
		validKeys []string
	}{
		{"missing key", "", "", []string{"key"}},
		{"wrong key", headerAPIKey, "nope", []string{"key"}},
		{"bearer without prefix", headerAuth, "key", []string{"key"}},
		{"lowercase bearer", headerAuth, "bearer key", []string{"key"}},
		{"no keys configured", headerAPIKey, "key", nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			called := false
			r := newAuthRouter(NewAPIKeyAuth(tt.validKeys, nil), &called)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.False(t, called, "handler should not have been called")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, http.StatusUnauthorized, body.Status)
			assert.Equal(t, unauthorizedError, body.Error)
			assert.Equal(t, "/test", body.Path)
		})
	}
}

func TestAPIKeyAuth_ExtractAPIKey(t *testing.T) {
	t.Parallel()

	auth := NewAPIKeyAuth(nil, nil)

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"x-api-key", map[string]string{headerAPIKey: "a"}, "a"},
		{"bearer", map[string]string{headerAuth: "Bearer b"}, "b"},
		{"x-api-key wins", map[string]string{headerAPIKey: "a", headerAuth: "Bearer b"}, "a"},
		{"basic auth ignored", map[string]string{headerAuth: "Basic xyz"}, ""},
		{"none", map[string]string{}, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, auth.extractAPIKey(req))
		})
	}
}

func TestAPIKeyAuth_IsValidAPIKey(t *testing.T) {
	t.Parallel()

	auth := NewAPIKeyAuth([]string{"secret"}, nil)

	assert.True(t, auth.isValidAPIKey("secret"))
	assert.False(t, auth.isValidAPIKey(""))
	assert.False(t, auth.isValidAPIKey("secre"))
	assert.False(t, auth.isValidAPIKey("secret "))
	assert.False(t, NewAPIKeyAuth(nil, nil).isValidAPIKey("secret"))
}
