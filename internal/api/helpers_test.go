package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/identity"
	"github.com/pageza/recipeshare/backend/internal/middleware"
	"github.com/pageza/recipeshare/backend/internal/mocks"
)

// tokenVerifier accepts "token-<uid>" bearer tokens.
type tokenVerifier struct{}

func (tokenVerifier) Verify(_ context.Context, token string) (*identity.UserIdentity, error) {
	uid, ok := strings.CutPrefix(token, "token-")
	if !ok {
		return nil, apperror.Unauthenticated("invalid token")
	}
	return &identity.UserIdentity{UserID: uid, Email: uid + "@example.com", DisplayName: "User " + uid}, nil
}

type testServer struct {
	router       *gin.Engine
	auth         *mocks.MockIdentityProvider
	recipes      *mocks.MockRecipeService
	interactions *mocks.MockInteractionService
	comments     *mocks.MockCommentService
	profiles     *mocks.MockProfileService
	dashboard    *mocks.MockDashboardService
	images       *mocks.MockImageService
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &testServer{
		auth:         new(mocks.MockIdentityProvider),
		recipes:      new(mocks.MockRecipeService),
		interactions: new(mocks.MockInteractionService),
		comments:     new(mocks.MockCommentService),
		profiles:     new(mocks.MockProfileService),
		dashboard:    new(mocks.MockDashboardService),
		images:       new(mocks.MockImageService),
	}
	t.Cleanup(func() {
		s.auth.AssertExpectations(t)
		s.recipes.AssertExpectations(t)
		s.interactions.AssertExpectations(t)
		s.comments.AssertExpectations(t)
		s.profiles.AssertExpectations(t)
		s.dashboard.AssertExpectations(t)
		s.images.AssertExpectations(t)
	})

	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	v1 := router.Group("/api/v1")
	requireAuth := middleware.AuthMiddleware(tokenVerifier{})
	NewAuthHandler(s.auth).RegisterRoutes(v1, requireAuth)
	NewProfileHandler(s.profiles).RegisterRoutes(v1, requireAuth)
	NewRecipeHandler(s.recipes, s.interactions, s.images, zap.NewNop()).RegisterRoutes(v1, requireAuth)
	NewCommentHandler(s.comments).RegisterRoutes(v1, requireAuth)
	NewImageHandler(s.images).RegisterRoutes(v1, requireAuth)
	NewDashboardHandler(s.dashboard, s.recipes).RegisterRoutes(v1, requireAuth)
	s.router = router
	return s
}

// do sends a request. uid signs the request in when non-empty; body is JSON
// encoded unless it is already an io.Reader.
func (s *testServer) do(t *testing.T, method, path, uid string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if uid != "" {
		req.Header.Set("Authorization", "Bearer token-"+uid)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
