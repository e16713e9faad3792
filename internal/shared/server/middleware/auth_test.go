package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"slidesage-backend/internal/shared/auth"
)

func newAuthRouter(t *testing.T, opts AuthOptions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(opts))
	router.GET("/api/v1/files", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "guest": IsGuest(c)})
	})
	router.GET("/api/v1/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.OPTIONS("/api/v1/files", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router := newAuthRouter(t, AuthOptions{})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/files", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthGuestHeader(t *testing.T) {
	router := newAuthRouter(t, AuthOptions{AllowGuests: true})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"guest":true,"userId":"guest:abc"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAuthGuestsDisabled(t *testing.T) {
	router := newAuthRouter(t, AuthOptions{AllowGuests: false})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthBearerToken(t *testing.T) {
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, err := issuer.Sign(auth.Claims{Sub: "user-7", Email: "u@example.com"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	router := newAuthRouter(t, AuthOptions{Verifier: issuer})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"guest":false,"userId":"user-7"}` {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	issuer, _ := auth.NewIssuer("test-secret", time.Hour)
	router := newAuthRouter(t, AuthOptions{Verifier: issuer, AllowGuests: true})

	for _, header := range []string{"Bearer not-a-jwt", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
		req.Header.Set("Authorization", header)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, resp.Code)
		}
	}
}

func TestAuthPublicPrefix(t *testing.T) {
	router := newAuthRouter(t, AuthOptions{PublicPrefixes: []string{"/api/v1/health"}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
