package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"nesttask/backend/config"
	"nesttask/backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubBlacklist struct {
	revoked map[string]bool
	err     error
}

func (s *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return s.revoked[jti], s.err
}

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) CheckRateLimit(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "middleware-test-secret-2026",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func authEngine(mgr *jwt.Manager, bl Blacklist) *gin.Engine {
	r := gin.New()
	r.GET("/me", JWTAuth(mgr, bl), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID)+"|"+c.GetString(ContextRole)+"|"+c.GetString(ContextSectionID))
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth ──

func TestJWTAuth_InjectsIdentity(t *testing.T) {
	mgr := newTestJWT()
	token, _ := mgr.GenerateAccessToken("u-1", "section_admin", "sec-1")

	w := get(authEngine(mgr, nil), "/me", token)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际=%d", w.Code)
	}
	if w.Body.String() != "u-1|section_admin|sec-1" {
		t.Errorf("上下文身份不符: %s", w.Body.String())
	}
}

func TestJWTAuth_Rejects(t *testing.T) {
	mgr := newTestJWT()
	refresh, _ := mgr.GenerateRefreshToken("u-1", "user", "")

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"refresh token", "Bearer " + refresh},
	}
	r := authEngine(mgr, nil)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("期望 401，实际=%d", w.Code)
			}
		})
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	mgr := newTestJWT()
	token, _ := mgr.GenerateAccessToken("u-1", "user", "")
	claims, _ := mgr.ParseToken(token)

	w := get(authEngine(mgr, &stubBlacklist{revoked: map[string]bool{claims.ID: true}}), "/me", token)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望已注销 Token 返回 401，实际=%d", w.Code)
	}
}

func TestJWTAuth_BlacklistErrorDegradesOpen(t *testing.T) {
	mgr := newTestJWT()
	token, _ := mgr.GenerateAccessToken("u-1", "user", "")

	w := get(authEngine(mgr, &stubBlacklist{err: errors.New("redis down")}), "/me", token)

	if w.Code != http.StatusOK {
		t.Errorf("期望黑名单不可用时放行，实际=%d", w.Code)
	}
}

// ── RoleAuth ──

func TestRoleAuth(t *testing.T) {
	cases := []struct {
		role   string
		status int
	}{
		{"", http.StatusUnauthorized},
		{"user", http.StatusForbidden},
		{"section_admin", http.StatusOK},
		{"super-admin", http.StatusOK},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) {
			if tc.role != "" {
				c.Set(ContextRole, tc.role)
			}
			c.Next()
		}, RoleAuth("admin", "super-admin", "section_admin"), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := get(r, "/x", "")
		if w.Code != tc.status {
			t.Errorf("role=%q: 期望 %d，实际=%d", tc.role, tc.status, w.Code)
		}
	}
}

// ── RateLimit ──

func rateEngine(limiter RateLimiter) *gin.Engine {
	r := gin.New()
	r.POST("/login", RateLimit(limiter, 10, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func post(r *gin.Engine, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, body)
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimit_Blocks(t *testing.T) {
	limiter := &stubLimiter{allowed: false}

	w := post(rateEngine(limiter), "/login", nil)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("期望 429，实际=%d", w.Code)
	}
	if len(limiter.keys) != 1 || !strings.HasSuffix(limiter.keys[0], ":/login") {
		t.Errorf("限流键不符: %v", limiter.keys)
	}
}

func TestRateLimit_DegradesOpen(t *testing.T) {
	for name, limiter := range map[string]RateLimiter{
		"nil limiter": nil,
		"redis error": &stubLimiter{err: errors.New("redis down")},
	} {
		if w := post(rateEngine(limiter), "/login", nil); w.Code != http.StatusOK {
			t.Errorf("%s: 期望放行，实际=%d", name, w.Code)
		}
	}
}

// ── BodyLimit ──

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.POST("/upload", BodyLimit(16), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	if w := post(r, "/upload", strings.NewReader("small")); w.Code != http.StatusOK {
		t.Errorf("期望小请求体通过，实际=%d", w.Code)
	}
	if w := post(r, "/upload", strings.NewReader(strings.Repeat("x", 64))); w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
}

// ── CORS ──

func corsRequest(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/x", nil)
	req.Header.Set("Origin", origin)
	r.ServeHTTP(w, req)
	return w
}

func corsEngine(cfg *config.CORSConfig) *gin.Engine {
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_AllowedOrigin(t *testing.T) {
	r := corsEngine(&config.CORSConfig{AllowOrigins: []string{"https://nesttask.app/"}, AllowCredentials: true})

	w := corsRequest(r, "GET", "https://nesttask.app")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://nesttask.app" {
		t.Errorf("期望回显来源，实际=%q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("期望下发 Allow-Credentials")
	}

	pre := corsRequest(r, "OPTIONS", "https://nesttask.app")
	if pre.Code != http.StatusNoContent || pre.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("预检期望 204 且带 Allow-Methods，实际=%d", pre.Code)
	}
}

func TestCORS_UnknownOrigin(t *testing.T) {
	r := corsEngine(&config.CORSConfig{AllowOrigins: []string{"https://nesttask.app"}})

	w := corsRequest(r, "GET", "https://evil.example")
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("未知来源不应下发 Allow-Origin")
	}
	if pre := corsRequest(r, "OPTIONS", "https://evil.example"); pre.Code != http.StatusForbidden {
		t.Errorf("未知来源预检期望 403，实际=%d", pre.Code)
	}
}

func TestCORS_Wildcard(t *testing.T) {
	r := corsEngine(&config.CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true})

	w := corsRequest(r, "GET", "https://any.example")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("期望 *，实际=%q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("通配来源不应下发 Allow-Credentials")
	}
}
