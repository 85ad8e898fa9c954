package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procura/internal/core/apperror"
	"procura/internal/domain/auth"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Trace(), ErrorHandler())
	return r
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_AppError(t *testing.T) {
	r := newTestRouter()
	r.GET("/missing", func(c *gin.Context) {
		c.Error(apperror.NewNotFound("purchase order", "abc"))
		c.Abort()
	})

	w := doRequest(r, http.MethodGet, "/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeNotFound, body["code"])
	assert.Equal(t, "purchase order not found", body["message"])
}

func TestErrorHandler_UnknownError(t *testing.T) {
	r := newTestRouter()
	r.GET("/boom", func(c *gin.Context) {
		c.Error(errors.New("pg: connection reset"))
		c.Abort()
	})

	w := doRequest(r, http.MethodGet, "/boom", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, body["message"], "pg:", "internal details must not leak")
}

func TestTrace_PropagatesRequestID(t *testing.T) {
	r := newTestRouter()
	r.GET("/ok", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := doRequest(r, http.MethodGet, "/ok", map[string]string{HeaderRequestID: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))

	// Generated when the caller sends none.
	w = doRequest(r, http.MethodGet, "/ok", nil)
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestAuth_RejectsMissingAndBadTokens(t *testing.T) {
	svc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret-key-at-least-32-chars-long"))

	r := newTestRouter()
	r.Use(Auth(svc))
	r.GET("/secure", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := doRequest(r, http.MethodGet, "/secure", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, http.MethodGet, "/secure", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	svc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret-key-at-least-32-chars-long"))
	token, _, err := svc.GenerateAccessToken("user-1", "User One", "buyer", "IT", "")
	require.NoError(t, err)

	r := newTestRouter()
	r.Use(Auth(svc))
	r.GET("/secure", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString("user_id")})
	})

	w := doRequest(r, http.MethodGet, "/secure", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestRequireRole(t *testing.T) {
	svc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret-key-at-least-32-chars-long"))
	buyerToken, _, err := svc.GenerateAccessToken("user-1", "User One", "buyer", "", "")
	require.NoError(t, err)
	adminToken, _, err := svc.GenerateAccessToken("user-2", "User Two", "admin", "", "")
	require.NoError(t, err)

	r := newTestRouter()
	r.Use(Auth(svc))
	r.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := doRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + buyerToken})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodGet, "/admin", map[string]string{"Authorization": "Bearer " + adminToken})
	assert.Equal(t, http.StatusNoContent, w.Code)
}
