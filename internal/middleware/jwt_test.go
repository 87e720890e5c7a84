package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("user-123", "alice", testSecret, 3600)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-123" || claims.Username != "alice" {
		t.Errorf("claims: %+v", claims)
	}
}

func TestParseTokenRejectsBadInput(t *testing.T) {
	token, err := GenerateToken("user-123", "alice", testSecret, 3600)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Error("token accepted with wrong secret")
	}
	if _, err := ParseToken("garbage", testSecret); err == nil {
		t.Error("garbage accepted as token")
	}

	expired, err := GenerateToken("user-123", "alice", testSecret, -10)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(expired, testSecret); err == nil {
		t.Error("expired token accepted")
	}
}

func newAuthRouter(handler gin.HandlerFunc, optional bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cfg := &JWTConfig{Secret: testSecret}
	if optional {
		router.Use(NewOptionalJWTAuth(cfg))
	} else {
		router.Use(NewJWTAuth(cfg))
	}
	router.GET("/probe", handler)
	return router
}

func TestJWTAuthRequired(t *testing.T) {
	var gotUserID string
	router := newAuthRouter(func(c *gin.Context) {
		gotUserID = GetUserID(c)
		c.Status(http.StatusOK)
	}, false)

	// No token at all is rejected.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status %d, want 401", rec.Code)
	}

	// A malformed header is rejected.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("malformed header: status %d, want 401", rec.Code)
	}

	token, _ := GenerateToken("user-123", "alice", testSecret, 3600)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status %d, want 200", rec.Code)
	}
	if gotUserID != "user-123" {
		t.Errorf("user ID in context: got %q", gotUserID)
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	var gotUserID string
	router := newAuthRouter(func(c *gin.Context) {
		gotUserID = GetUserID(c)
		c.Status(http.StatusOK)
	}, true)

	// Anonymous requests pass through with no identity.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous: status %d, want 200", rec.Code)
	}
	if gotUserID != "" {
		t.Errorf("anonymous user ID: got %q, want empty", gotUserID)
	}

	// An invalid token degrades to anonymous rather than failing.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("bad token: status %d, want 200", rec.Code)
	}
	if gotUserID != "" {
		t.Errorf("bad-token user ID: got %q, want empty", gotUserID)
	}

	token, _ := GenerateToken("user-123", "alice", testSecret, 3600)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	if gotUserID != "user-123" {
		t.Errorf("valid-token user ID: got %q", gotUserID)
	}
}
