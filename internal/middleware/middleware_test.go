package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dinedash/internal/common"
	"dinedash/internal/logger"
	"dinedash/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func serve(mw echo.MiddlewareFunc, req *http.Request, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(handler)(c)
}

func httpStatus(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestJWTMiddleware_ExtractsPrincipal(t *testing.T) {
	userID := uuid.New()
	restaurantID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":                 userID.String(),
		"role":                "owner",
		"owner_restaurant_id": restaurantID.String(),
		"exp":                 time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	var got common.Principal
	_, err := serve(JWTMiddleware(NewHMACAuthenticator(testSecret)), req, func(c echo.Context) error {
		p, ok := common.GetPrincipalFromContext(c.Request().Context())
		require.True(t, ok)
		got = p
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, userID, got.ID)
	assert.Equal(t, models.RoleOwner, got.Role)
	assert.True(t, got.OwnsRestaurant(restaurantID))
}

func TestJWTMiddleware_Rejections(t *testing.T) {
	valid := jwt.MapClaims{"sub": uuid.New().String(), "role": "customer", "exp": time.Now().Add(time.Hour).Unix()}
	expired := jwt.MapClaims{"sub": uuid.New().String(), "role": "customer", "exp": time.Now().Add(-time.Hour).Unix()}
	badRole := jwt.MapClaims{"sub": uuid.New().String(), "role": "courier", "exp": time.Now().Add(time.Hour).Unix()}
	noExp := jwt.MapClaims{"sub": uuid.New().String(), "role": "customer"}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Token " + signToken(t, valid)},
		{"garbage", "Bearer not-a-jwt"},
		{"expired", "Bearer " + signToken(t, expired)},
		{"unknown role", "Bearer " + signToken(t, badRole)},
		{"no expiry", "Bearer " + signToken(t, noExp)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := serve(JWTMiddleware(NewHMACAuthenticator(testSecret)), req, func(c echo.Context) error {
				t.Fatal("handler must not run")
				return nil
			})
			assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
		})
	}
}

func TestJWTMiddleware_WrongSecret(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": uuid.New().String(), "role": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	_, err := serve(JWTMiddleware(NewHMACAuthenticator("other-secret")), req, func(c echo.Context) error { return nil })
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

func withPrincipal(req *http.Request, role models.Role) *http.Request {
	return req.WithContext(common.WithPrincipal(req.Context(), common.Principal{ID: uuid.New(), Role: role}))
}

func TestRequireRoles(t *testing.T) {
	mw := RequireRoles(models.RoleOwner, models.RoleAdmin)
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	rec, err := serve(mw, withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil), models.RoleOwner), ok)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = serve(mw, withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil), models.RoleCustomer), ok)
	assert.Equal(t, http.StatusForbidden, httpStatus(t, err))

	_, err = serve(mw, httptest.NewRequest(http.MethodPost, "/", nil), ok)
	assert.Equal(t, http.StatusUnauthorized, httpStatus(t, err))
}

type stubLimiter struct {
	limited bool
	err     error
	keys    []string
}

func (s *stubLimiter) IsRateLimited(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.limited, s.err
}

func (s *stubLimiter) Ping(context.Context) error { return s.err }

func TestRateLimit(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	t.Run("under limit", func(t *testing.T) {
		limiter := &stubLimiter{}
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil), models.RoleCustomer)
		rec, err := serve(RateLimit(limiter, "orders", 10, logger.Discard()), req, ok)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		p, _ := common.GetPrincipalFromContext(req.Context())
		assert.Equal(t, []string{"orders:" + p.ID.String()}, limiter.keys)
	})

	t.Run("over limit", func(t *testing.T) {
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil), models.RoleCustomer)
		rec, err := serve(RateLimit(&stubLimiter{limited: true}, "orders", 10, logger.Discard()), req, ok)
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("fails open", func(t *testing.T) {
		req := withPrincipal(httptest.NewRequest(http.MethodPost, "/", nil), models.RoleCustomer)
		rec, err := serve(RateLimit(&stubLimiter{err: errors.New("redis down")}, "orders", 10, logger.Discard()), req, ok)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")

	_, err := serve(RequestID(), req, func(c echo.Context) error {
		assert.Equal(t, "req-123", common.GetRequestIDFromContext(c.Request().Context()))
		return nil
	})
	require.NoError(t, err)
}
