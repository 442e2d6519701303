package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

var noContent = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

func do(h http.Handler, configure func(r *http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/links", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		remote     string
		xff        string
		trustProxy bool
		want       int
	}{
		{"empty list passes", nil, "203.0.113.9:1234", "", false, http.StatusNoContent},
		{"inside cidr", []string{"10.0.0.0/8"}, "10.1.2.3:5555", "", false, http.StatusNoContent},
		{"single ip", []string{"192.168.1.10"}, "192.168.1.10:80", "", false, http.StatusNoContent},
		{"outside cidr", []string{"10.0.0.0/8"}, "203.0.113.9:1234", "", false, http.StatusForbidden},
		{"xff ignored without trust", []string{"10.0.0.0/8"}, "203.0.113.9:1", "10.0.0.1", false, http.StatusForbidden},
		{"xff honored with trust", []string{"10.0.0.0/8"}, "203.0.113.9:1", "10.0.0.1", true, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, tt.trustProxy, logger.Nop())(noContent)
			rec := do(h, func(r *http.Request) {
				r.RemoteAddr = tt.remote
				if tt.xff != "" {
					r.Header.Set("X-Forwarded-For", tt.xff)
				}
			})
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestEnforceHost(t *testing.T) {
	h := EnforceHost([]string{"links.example.com", "*.lan"}, logger.Nop())(noContent)

	tests := []struct {
		host string
		want int
	}{
		{"links.example.com", http.StatusNoContent},
		{"LINKS.example.com:8080", http.StatusNoContent},
		{"box.lan", http.StatusNoContent},
		{".lan", http.StatusForbidden},
		{"evil.com", http.StatusForbidden},
		{"links.example.com.evil.com", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			rec := do(h, func(r *http.Request) { r.Host = tt.host })
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	passthrough := EnforceHost(nil, logger.Nop())(noContent)
	assert.Equal(t, http.StatusNoContent, do(passthrough, func(r *http.Request) { r.Host = "anything" }).Code)
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:             2,
		RefillPerIPPerMin: 60,
		Now:               func() time.Time { return now },
	})(noContent)

	fromA := func(r *http.Request) { r.RemoteAddr = "10.0.0.1:1000" }
	fromB := func(r *http.Request) { r.RemoteAddr = "10.0.0.2:1000" }

	rec := do(h, fromA)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusNoContent, do(h, fromA).Code)

	rec = do(h, fromA)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"Too Many Requests"}`, rec.Body.String())

	// Buckets are per client.
	assert.Equal(t, http.StatusNoContent, do(h, fromB).Code)

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusNoContent, do(h, fromA).Code)
}

func TestLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, IdleTTL: time.Minute, SweepInterval: time.Hour, MaxEntries: 2})

	l.allow("a", now)
	l.allow("b", now)
	assert.Len(t, l.buckets, 2)

	// Full map forces a sweep of idle entries before "c" is added.
	l.allow("c", now.Add(2*time.Minute))
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "c")
}

func TestLogPassesResponseThrough(t *testing.T) {
	h := Log(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	rec := do(h, nil)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}
