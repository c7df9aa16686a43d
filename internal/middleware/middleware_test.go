package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/identity"
)

type verifierFunc func(ctx context.Context, token string) (*identity.UserIdentity, error)

func (f verifierFunc) Verify(ctx context.Context, token string) (*identity.UserIdentity, error) {
	return f(ctx, token)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(verifier TokenVerifier) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/private", AuthMiddleware(verifier), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": UserID(c), "name": Identity(c).DisplayName, "token": Token(c)})
	})
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	verifier := verifierFunc(func(_ context.Context, token string) (*identity.UserIdentity, error) {
		if token != "good" {
			return nil, apperror.Unauthenticated("invalid token")
		}
		return &identity.UserIdentity{UserID: "u1", DisplayName: "Ana"}, nil
	})
	r := newEngine(verifier)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, "missing authorization header"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid authorization header format"},
		{"bad token", "Bearer bad", http.StatusUnauthorized, "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.message, resp.Error)
			assert.Equal(t, apperror.KindUnauthenticated, resp.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":"u1","name":"Ana","token":"good"}`, w.Body.String())
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   apperror.Kind
	}{
		{apperror.Validation(map[string]string{"title": "is required"}), http.StatusBadRequest, apperror.KindValidation},
		{apperror.InvalidArgument("bad cursor"), http.StatusBadRequest, apperror.KindInvalidArgument},
		{apperror.Forbidden("nope"), http.StatusForbidden, apperror.KindForbidden},
		{apperror.NotFound("recipe", "r1"), http.StatusNotFound, apperror.KindNotFound},
		{apperror.Conflict("taken"), http.StatusConflict, apperror.KindConflict},
		{apperror.Unavailable("get recipe", errors.New("down")), http.StatusServiceUnavailable, apperror.KindUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, apperror.KindInternal},
	}
	for _, tt := range tests {
		r := gin.New()
		r.Use(ErrorHandler(zap.NewNop()))
		err := tt.err
		r.GET("/", func(c *gin.Context) { _ = c.Error(err) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tt.status, w.Code, err.Error())
		resp := decodeError(t, w)
		assert.Equal(t, tt.code, resp.Code)
		if tt.code == apperror.KindInternal {
			assert.Equal(t, "internal server error", resp.Error, "internal details are not leaked")
		}
		if tt.code == apperror.KindValidation {
			assert.Equal(t, map[string]string{"title": "is required"}, resp.Fields)
		}
	}
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.KindInternal, decodeError(t, w).Code)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestLogger(zap.New(core)))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "/ping", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PATCH")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large a body")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
