package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dinedash/internal/common"
	"dinedash/internal/models"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Authenticator turns a bearer token into a common.Principal. Tokens are
// issued elsewhere; this only verifies them.
type Authenticator struct {
	keyFunc jwt.Keyfunc
	methods []string
}

// NewHMACAuthenticator verifies HS256 tokens signed with secret.
func NewHMACAuthenticator(secret string) *Authenticator {
	return &Authenticator{
		keyFunc: func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		methods: []string{jwt.SigningMethodHS256.Alg()},
	}
}

// NewJWKSAuthenticator verifies asymmetric tokens against a remote JWKS. The
// returned stop func ends the background key refresh.
func NewJWKSAuthenticator(jwksURL string) (*Authenticator, func(), error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load jwks: %w", err)
	}
	return &Authenticator{
		keyFunc: jwks.Keyfunc,
		methods: []string{"RS256", "ES256", "EdDSA"},
	}, jwks.EndBackground, nil
}

// Parse validates tokenString and extracts the principal from its sub, role
// and owner_restaurant_id claims.
func (a *Authenticator) Parse(tokenString string) (common.Principal, error) {
	token, err := jwt.Parse(tokenString, a.keyFunc, jwt.WithValidMethods(a.methods), jwt.WithExpirationRequired())
	if err != nil {
		return common.Principal{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return common.Principal{}, errors.New("invalid claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return common.Principal{}, errors.New("missing subject")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return common.Principal{}, fmt.Errorf("invalid subject: %w", err)
	}

	rawRole, _ := claims["role"].(string)
	role, err := models.ParseRole(rawRole)
	if err != nil {
		return common.Principal{}, err
	}

	p := common.Principal{ID: id, Role: role}
	if raw, ok := claims["owner_restaurant_id"].(string); ok && raw != "" {
		rid, err := uuid.Parse(raw)
		if err != nil {
			return common.Principal{}, fmt.Errorf("invalid owner_restaurant_id: %w", err)
		}
		p.RestaurantID = &rid
	}
	return p, nil
}

// JWTMiddleware rejects requests without a valid bearer token and stores the
// principal in the request context.
func JWTMiddleware(auth *Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			principal, err := auth.Parse(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			ctx := common.WithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequestID copies the X-Request-ID set by echo's RequestID middleware into
// the request context so loggers can pick it up.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			if id != "" {
				ctx := context.WithValue(c.Request().Context(), common.RequestIDKey, id)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}
