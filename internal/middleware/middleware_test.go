package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/cinebook/internal/config"
	"github.com/iliyamo/cinebook/internal/logging"
	"github.com/iliyamo/cinebook/internal/utils"
)

const secret = "test-secret"

func whoami(c echo.Context) error {
	id, ok := UserID(c)
	if !ok {
		return c.String(http.StatusOK, "guest")
	}
	return c.String(http.StatusOK, strconv.FormatUint(id, 10))
}

func do(e *echo.Echo, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(secret))
	e.GET("/films", whoami, OptionalJWT(secret))
	e.GET("/admin", whoami, JWTAuth(secret), RequireRole("ADMIN"))

	good, _ := utils.NewAccessToken(secret, 42, "CUSTOMER", 5)
	forged, _ := utils.NewAccessToken("other", 42, "CUSTOMER", 5)

	t.Run("Valid", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/me", good.Token)
		if rec.Code != http.StatusOK || rec.Body.String() != "42" {
			t.Fatalf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if rec := do(e, http.MethodGet, "/me", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("Forged", func(t *testing.T) {
		if rec := do(e, http.MethodGet, "/me", forged.Token); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("OptionalGuest", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/films", forged.Token)
		if rec.Code != http.StatusOK || rec.Body.String() != "guest" {
			t.Fatalf("got %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("OptionalUser", func(t *testing.T) {
		if rec := do(e, http.MethodGet, "/films", good.Token); rec.Body.String() != "42" {
			t.Fatalf("got %q", rec.Body.String())
		}
	})

	t.Run("WrongRole", func(t *testing.T) {
		if rec := do(e, http.MethodGet, "/admin", good.Token); rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.New(&buf, "info")))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound) })

	rec := do(e, http.MethodGet, "/ok", "")
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Error("expected a request id header")
	}
	rec = do(e, http.MethodGet, "/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	out := buf.String()
	for _, want := range []string{"path=/ok", "status=204", "path=/missing", "status=404", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q in:\n%s", want, out)
		}
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisCache(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 1 << 20}

	calls := 0
	e := echo.New()
	e.GET("/films/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"id": c.Param("id"), "calls": calls})
	}, NewRedisCache(cfg, rdb))

	first := do(e, http.MethodGet, "/films/1", "")
	second := do(e, http.MethodGet, "/films/1", "")
	other := do(e, http.MethodGet, "/films/2", "")

	if first.Header().Get("X-Cache") != "MISS" || second.Header().Get("X-Cache") != "HIT" {
		t.Fatalf("expected MISS then HIT, got %q %q", first.Header().Get("X-Cache"), second.Header().Get("X-Cache"))
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
	if second.Header().Get(echo.HeaderContentType) == "" {
		t.Error("content type should be restored")
	}
	if other.Header().Get("X-Cache") != "MISS" {
		t.Error("different path parameter must not share a key")
	}

	t.Run("AuthorizedBypass", func(t *testing.T) {
		before := calls
		rec := do(e, http.MethodGet, "/films/1", "token")
		if rec.Header().Get("X-Cache") != "" || calls != before+1 {
			t.Error("authorized requests should bypass the cache")
		}
	})

	t.Run("Purge", func(t *testing.T) {
		n, err := PurgeCache(context.Background(), rdb, "test:cache")
		if err != nil || n != 2 {
			t.Fatalf("purge: %d %v", n, err)
		}
		if rec := do(e, http.MethodGet, "/films/1", ""); rec.Header().Get("X-Cache") != "MISS" {
			t.Error("expected MISS after purge")
		}
	})
}

func TestTokenBucket(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
		TTL: 2 * time.Hour, KeyStrategy: "ip", Prefix: "test:rl",
	}
	e := echo.New()
	e.GET("/films", whoami, NewTokenBucket(cfg, rdb))

	for i := 0; i < 2; i++ {
		if rec := do(e, http.MethodGet, "/films", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := do(e, http.MethodGet, "/films", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" || rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("unexpected headers %v", rec.Header())
	}
}

func TestDisabledMiddlewarePassesThrough(t *testing.T) {
	e := echo.New()
	e.GET("/films", whoami, NewRedisCache(config.CacheConfig{}, nil), NewTokenBucket(config.RateLimitConfig{}, nil))
	if rec := do(e, http.MethodGet, "/films", ""); rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
		t.Fatalf("unexpected response %d %v", rec.Code, rec.Header())
	}
}
