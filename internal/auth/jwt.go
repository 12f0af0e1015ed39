package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ScopeTranscribe is the only scope the API currently checks
const ScopeTranscribe = "transcribe"

// ErrMissingToken is returned when a request carries no bearer token
var ErrMissingToken = errors.New("missing bearer token")

// ClientClaims represents the claims in a service token
type ClientClaims struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// GenerateClientToken issues an HS256 token for a calling service
func GenerateClientToken(secret []byte, clientID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &ClientClaims{
		ClientID: clientID,
		Scope:    ScopeTranscribe,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates a token and returns its claims
func ValidateToken(secret []byte, tokenString string) (*ClientClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ClientClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ClientClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Scope != ScopeTranscribe {
		return nil, fmt.Errorf("%w: scope %q", jwt.ErrTokenInvalidClaims, claims.Scope)
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token.
// The validated claims are stored under the "client" context key.
func Middleware(secret []byte, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c.Request())
			if err == nil {
				var claims *ClientClaims
				if claims, err = ValidateToken(secret, tokenString); err == nil {
					c.Set("client", claims)
					return next(c)
				}
			}

			logger.Warn("Rejected unauthenticated request",
				zap.String("path", c.Path()),
				zap.Error(err))
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"error":   "unauthorized",
				"message": "A valid bearer token is required",
			})
		}
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}
