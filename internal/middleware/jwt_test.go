package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shikshaprep/mocktest-backend/internal/config"
	"github.com/shikshaprep/mocktest-backend/internal/model"
	"github.com/shikshaprep/mocktest-backend/internal/service"
)

func authServiceWithExpiry(expiry time.Duration) *service.AuthService {
	return service.NewAuthService(&config.Config{
		JWTSecret: "test-secret",
		JWTExpiry: expiry,
	})
}

func protectedRequest(t *testing.T, auth *service.AuthService, token string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", RequireJWT(auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireJWTAcceptsValidToken(t *testing.T) {
	auth := authServiceWithExpiry(time.Hour)
	token, err := auth.GenerateToken(1, model.RoleUser)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := protectedRequest(t, auth, token)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequireJWTRejectsExpiredToken(t *testing.T) {
	auth := authServiceWithExpiry(-time.Minute)
	token, err := auth.GenerateToken(1, model.RoleUser)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	w := protectedRequest(t, auth, token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TOKEN_EXPIRED") {
		t.Errorf("expected TOKEN_EXPIRED code, got %s", w.Body.String())
	}
}

func TestRequireJWTRejectsGarbageToken(t *testing.T) {
	auth := authServiceWithExpiry(time.Hour)

	w := protectedRequest(t, auth, "not.a.token")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "TOKEN_INVALID") {
		t.Errorf("expected TOKEN_INVALID code, got %s", w.Body.String())
	}
}
