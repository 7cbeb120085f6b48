package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	args := m.Called(ctx, username, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, email, password string) (*service.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Identity), args.Error(1)
}

func (m *MockAuthService) IssueToken(id service.Identity) (string, error) {
	args := m.Called(id)
	return args.String(0), args.Error(1)
}

func (m *MockAuthService) VerifyToken(tokenString string) (*service.Identity, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Identity), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func whoami(c *gin.Context) {
	if id, ok := IdentityFromContext(c); ok {
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID})
		return
	}
	c.JSON(http.StatusOK, gin.H{"anonymous": true})
}

func TestOptionalAuth(t *testing.T) {
	authService := new(MockAuthService)
	authService.On("VerifyToken", "good").Return(&service.Identity{UserID: 1, Username: "alice"}, nil)
	authService.On("VerifyToken", "forged").Return(nil, service.ErrInvalidToken)
	authService.On("VerifyToken", "old").Return(nil, service.ErrExpiredToken)

	router := setupRouter()
	router.GET("/me", OptionalAuth(authService), whoami)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"NoHeader", "", http.StatusOK, `{"anonymous":true}`},
		{"ValidToken", "Bearer good", http.StatusOK, `{"userId":1}`},
		{"LowercaseScheme", "bearer good", http.StatusOK, `{"userId":1}`},
		{"ForgedToken", "Bearer forged", http.StatusUnauthorized, `{"error":"invalid token"}`},
		{"ExpiredToken", "Bearer old", http.StatusUnauthorized, `{"error":"token has expired"}`},
		{"WrongScheme", "Basic abc", http.StatusUnauthorized, `{"error":"invalid authorization header format"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestRequireAdminKey(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	t.Run("OpenWhenUnset", func(t *testing.T) {
		router := setupRouter()
		router.GET("/admin", RequireAdminKey(""), ok)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Guarded", func(t *testing.T) {
		router := setupRouter()
		router.GET("/admin", RequireAdminKey("s3cret"), ok)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-Admin-Key", "wrong")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		req = httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("X-Admin-Key", "s3cret")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	router := setupRouter()
	router.Use(RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFromContext(c))
	})

	t.Run("Generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := w.Header().Get("X-Request-ID")
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.Body.String())
	})

	t.Run("Propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "  abc-123 ")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	})
}

func TestClientRateLimiter(t *testing.T) {
	limiter := NewClientRateLimiter(1, 2)
	frozen := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return frozen }

	router := setupRouter()
	router.POST("/signin", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/signin", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"), "buckets are per client")

	frozen = frozen.Add(time.Second)
	assert.Equal(t, http.StatusOK, send("10.0.0.1"), "bucket refills over time")
}
