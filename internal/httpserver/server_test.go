package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/mw"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/metrics"
	"github.com/MrSnakeDoc/linkbox/internal/service"
	"github.com/MrSnakeDoc/linkbox/internal/store"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func testDeps(t *testing.T) deps.Deps {
	t.Helper()
	m := metrics.New()
	svc := service.New(service.Deps{Store: store.NewMemory(), Metrics: m})
	require.NoError(t, svc.Refresh(context.Background()))
	return deps.Deps{
		Logger:    logger.Nop(),
		StartTime: time.Now(),
		Version:   "test",
		Service:   svc,
		Metrics:   m,
		Backend:   "memory",
		RateLimit: mw.RateLimitConfig{Burst: 1000, RefillPerIPPerMin: 1000},
	}
}

type client struct {
	t *testing.T
	h http.Handler
}

func newClient(t *testing.T, d deps.Deps) *client {
	return &client{t: t, h: NewRouter(5*time.Second, d)}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestLinkAndFolderLifecycle(t *testing.T) {
	c := newClient(t, testDeps(t))

	rec := c.do(http.MethodPost, "/api/folders", `{"name":"Reading","color":"#007AFF"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	reading := decode[domain.Folder](t, rec)

	rec = c.do(http.MethodPost, "/api/folders", `{"name":"Reading"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = c.do(http.MethodPost, "/api/folders", `{"name":"Later"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	later := decode[domain.Folder](t, rec)
	assert.Equal(t, domain.DefaultFolderColor, later.Color)

	rec = c.do(http.MethodPost, "/api/links",
		`{"url":"https://go.dev/blog","title":"Go Blog","tags":["go","blog"],"folder":"`+reading.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	link := decode[domain.Link](t, rec)
	assert.Equal(t, domain.StatusActive, link.Status)

	rec = c.do(http.MethodGet, "/api/folders/"+reading.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{link.ID}, decode[domain.Folder](t, rec).Links)

	// Move the link by changing its folder field.
	link.Folder = later.ID
	body, err := json.Marshal(link)
	require.NoError(t, err)
	rec = c.do(http.MethodPut, "/api/links/"+link.ID, string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/links?folder="+reading.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[struct{ Count int }](t, rec).Count)
	rec = c.do(http.MethodGet, "/api/links?folder="+later.ID, "")
	assert.Equal(t, 1, decode[struct{ Count int }](t, rec).Count)

	rec = c.do(http.MethodDelete, "/api/folders/"+later.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[struct{ Unfiled int }](t, rec).Unfiled)

	rec = c.do(http.MethodGet, "/api/links/"+link.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[domain.Link](t, rec).Folder)

	rec = c.do(http.MethodDelete, "/api/links/"+link.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = c.do(http.MethodGet, "/api/links/"+link.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	c := newClient(t, testDeps(t))

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing link", http.MethodGet, "/api/links/nope", "", http.StatusNotFound},
		{"missing folder", http.MethodGet, "/api/folders/nope", "", http.StatusNotFound},
		{"unknown folder filter", http.MethodGet, "/api/links?folder=nope", "", http.StatusNotFound},
		{"malformed body", http.MethodPost, "/api/links", `{"url":`, http.StatusBadRequest},
		{"blank url", http.MethodPost, "/api/links", `{"url":"  "}`, http.StatusBadRequest},
		{"blank folder name", http.MethodPost, "/api/folders", `{"name":""}`, http.StatusBadRequest},
		{"bad status", http.MethodPost, "/api/links/nope/status", `{"status":"gone"}`, http.StatusBadRequest},
		{"bad filter", http.MethodGet, "/api/search?q=x&filter=url", "", http.StatusBadRequest},
		{"delete missing folder", http.MethodDelete, "/api/folders/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestSoftDeleteHidesFromListAndSearch(t *testing.T) {
	c := newClient(t, testDeps(t))

	rec := c.do(http.MethodPost, "/api/links", `{"url":"https://a","title":"Weekly review","tags":["Work"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	a := decode[domain.Link](t, rec)
	rec = c.do(http.MethodPost, "/api/links", `{"url":"https://b","title":"Weekly groceries"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decode[domain.Link](t, rec)

	rec = c.do(http.MethodPost, "/api/links/"+b.ID+"/status", `{"status":"deleted"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusDeleted, decode[domain.Link](t, rec).Status)

	rec = c.do(http.MethodGet, "/api/links", "")
	assert.Equal(t, 1, decode[struct{ Count int }](t, rec).Count)

	rec = c.do(http.MethodGet, "/api/search?q=weekly", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[searchBody](t, rec)
	assert.Equal(t, "all", res.Filter)
	require.Len(t, res.Results, 1)
	assert.Equal(t, a.ID, res.Results[0].Link.ID)
	assert.Equal(t, []string{"title"}, res.Results[0].MatchedIn)
	require.Len(t, res.Results[0].TitleSpans, 1)
	assert.Equal(t, 0, res.Results[0].TitleSpans[0].Start)
	assert.Equal(t, 6, res.Results[0].TitleSpans[0].End)

	rec = c.do(http.MethodGet, "/api/search?q=%23work", "")
	assert.Len(t, decode[struct{ Results []any }](t, rec).Results, 1)
}

type searchBody struct {
	Filter  string
	Results []struct {
		Link       domain.Link
		MatchedIn  []string
		TitleSpans []struct{ Start, End int }
	}
}

func TestTags(t *testing.T) {
	c := newClient(t, testDeps(t))
	c.do(http.MethodPost, "/api/links", `{"url":"https://a","tags":["go","db"]}`)
	c.do(http.MethodPost, "/api/links", `{"url":"https://b","tags":["go"]}`)

	rec := c.do(http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tags":["db","go"]}`, rec.Body.String())

	rec = c.do(http.MethodGet, "/api/tags?counts=true", "")
	assert.JSONEq(t, `{"tags":["db","go"],"counts":{"db":1,"go":2}}`, rec.Body.String())
}

func TestTitleSpansOnlyForTitleMatches(t *testing.T) {
	c := newClient(t, testDeps(t))
	rec := c.do(http.MethodPost, "/api/links", `{"url":"https://a","title":"Work log","tags":["work"],"memo":"work notes"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name      string
		path      string
		matchedIn []string
		spans     int
	}{
		{"plain query", "/api/search?q=work", []string{"title", "tag", "memo"}, 1},
		{"tag shorthand", "/api/search?q=%23work", []string{"tag"}, 0},
		{"tag filter", "/api/search?q=work&filter=tag", []string{"tag"}, 0},
		{"memo filter", "/api/search?q=work&filter=memo", []string{"memo"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rec.Code)
			res := decode[searchBody](t, rec)
			require.Len(t, res.Results, 1)
			assert.Equal(t, tt.matchedIn, res.Results[0].MatchedIn)
			assert.Len(t, res.Results[0].TitleSpans, tt.spans)
		})
	}
}

func TestTagsOfSoftDeletedLinksAreHidden(t *testing.T) {
	c := newClient(t, testDeps(t))
	rec := c.do(http.MethodPost, "/api/links", `{"url":"https://a","tags":["secret"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	secret := decode[domain.Link](t, rec)
	c.do(http.MethodPost, "/api/links", `{"url":"https://b","tags":["go"]}`)

	rec = c.do(http.MethodPost, "/api/links/"+secret.ID+"/status", `{"status":"deleted"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodGet, "/api/tags", "")
	assert.JSONEq(t, `{"tags":["go"]}`, rec.Body.String())
	rec = c.do(http.MethodGet, "/api/tags?counts=true", "")
	assert.JSONEq(t, `{"tags":["go"],"counts":{"go":1}}`, rec.Body.String())
}

func TestAdminRoutesRespectCIDRs(t *testing.T) {
	d := testDeps(t)
	d.AdminCIDRS = []string{"10.0.0.0/8"}
	c := newClient(t, d)

	// httptest requests come from 192.0.2.1.
	for _, path := range []string{"/api/verify", "/api/infra"} {
		assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, path, "").Code, path)
	}
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/reload", "").Code)

	// Public routes are not affected.
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/links", "").Code)
}

func TestVerifyAndRepair(t *testing.T) {
	c := newClient(t, testDeps(t))

	rec := c.do(http.MethodGet, "/api/verify", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct{ Consistent bool }](t, rec).Consistent)

	rec = c.do(http.MethodPost, "/api/verify", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[struct{ Consistent bool }](t, rec).Consistent)
}

func TestReload(t *testing.T) {
	d := testDeps(t)
	assert.Equal(t, http.StatusNotFound, newClient(t, d).do(http.MethodPost, "/api/reload", "").Code)

	d.ReloadTrigger = make(chan struct{}, 1)
	c := newClient(t, d)
	assert.Equal(t, http.StatusAccepted, c.do(http.MethodPost, "/api/reload", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/api/reload", "").Code)
	<-d.ReloadTrigger
	assert.Equal(t, http.StatusAccepted, c.do(http.MethodPost, "/api/reload", "").Code)
}

func TestProbes(t *testing.T) {
	d := testDeps(t)
	c := newClient(t, d)

	rec := c.do(http.MethodGet, "/api/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/readyz", "").Code)

	rec = c.do(http.MethodGet, "/api/infra", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "normal", decode[struct{ Mode string }](t, rec).Mode)

	d.Store = pingerFunc(func(context.Context) error { return errors.New("connection refused") })
	c = newClient(t, d)
	assert.Equal(t, http.StatusServiceUnavailable, c.do(http.MethodGet, "/api/readyz", "").Code)
	rec = c.do(http.MethodGet, "/api/infra", "")
	assert.Equal(t, "critical", decode[struct{ Mode string }](t, rec).Mode)
}

func TestReadyzBeforeFirstLoad(t *testing.T) {
	d := testDeps(t)
	d.Service = service.New(service.Deps{Store: store.NewMemory()})
	rec := newClient(t, d).do(http.MethodGet, "/api/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	c := newClient(t, testDeps(t))
	c.do(http.MethodPost, "/api/folders", `{"name":"F"}`)

	rec := c.do(http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `linkbox_operations_total{op="folder.create",outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "linkbox_folders 1")
}

func TestWriteRoutesAreRateLimited(t *testing.T) {
	d := testDeps(t)
	d.RateLimit = mw.RateLimitConfig{Burst: 1, RefillPerIPPerMin: 1}
	c := newClient(t, d)

	assert.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/links", `{"url":"https://a"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/api/links", `{"url":"https://b"}`).Code)
	// Reads are not limited.
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/links", "").Code)
}

func TestHostEnforcement(t *testing.T) {
	d := testDeps(t)
	d.AllowedHosts = []string{"links.local"}
	c := newClient(t, d)

	// httptest requests use Host "example.com".
	assert.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/links", "").Code)
}
