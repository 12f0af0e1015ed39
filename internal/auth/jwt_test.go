package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap/zaptest"
)

var testSecret = []byte("test-secret")

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateClientToken(testSecret, "trainer-web", time.Hour)
	if err != nil {
		t.Fatalf("GenerateClientToken failed: %v", err)
	}

	claims, err := ValidateToken(testSecret, token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.ClientID != "trainer-web" {
		t.Errorf("Expected client trainer-web, got %s", claims.ClientID)
	}
	if claims.Scope != ScopeTranscribe {
		t.Errorf("Expected scope %s, got %s", ScopeTranscribe, claims.Scope)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	expired, _ := GenerateClientToken(testSecret, "old", -time.Minute)
	foreign, _ := GenerateClientToken([]byte("other-secret"), "foreign", time.Hour)
	wrongScope, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &ClientClaims{
		ClientID: "admin",
		Scope:    "admin",
	}).SignedString(testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "wrong scope", token: wrongScope},
		{name: "garbage", token: "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ValidateToken(testSecret, tt.token); err == nil {
				t.Error("Expected validation to fail")
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		claims := c.Get("client").(*ClientClaims)
		return c.String(http.StatusOK, claims.ClientID)
	}, Middleware(testSecret, zaptest.NewLogger(t)))

	valid, _ := GenerateClientToken(testSecret, "trainer-web", time.Hour)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "valid", header: "Bearer " + valid, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, status: http.StatusOK},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", status: http.StatusUnauthorized},
		{name: "invalid", header: "Bearer abc", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusOK && rec.Body.String() != "trainer-web" {
				t.Errorf("Expected client id in body, got %q", rec.Body.String())
			}
		})
	}
}
