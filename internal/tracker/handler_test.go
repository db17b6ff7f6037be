package tracker_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushKhandelwal07/JobhubHq/internal/settings"
	"github.com/ayushKhandelwal07/JobhubHq/internal/tracker"
)

// ─── Fixture ─────────────────────────────────────────────────────────────────

func newAPI(t *testing.T, cfg settings.Settings) (*fixture, *http.ServeMux) {
	t.Helper()
	fx := newFixture(t, cfg)
	mux := http.NewServeMux()
	tracker.NewHandler(fx.svc, fx.cfg, fx.engine).RegisterRoutes(mux)
	return fx, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// ─── POST /track ─────────────────────────────────────────────────────────────

func TestHandleTrack_OK(t *testing.T) {
	_, mux := newAPI(t, settings.Defaults())

	rec := doJSON(t, mux, http.MethodPost, "/track", `{
		"jobUrl": "https://www.linkedin.com/jobs/view/4012345678/",
		"platform": "linkedin",
		"trigger": "manual",
		"fields": {"title": "Backend Engineer", "company": "Initech"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RequestID  string          `json:"requestId"`
		Result     string          `json:"result"`
		BadgeCount int64           `json:"badgeCount"`
		Record     json.RawMessage `json:"record"`
	}
	decode(t, rec, &resp)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "tracked", resp.Result)
	assert.Equal(t, int64(1), resp.BadgeCount)
	assert.NotEmpty(t, resp.Record)
}

func TestHandleTrack_RejectedEnvelope(t *testing.T) {
	_, mux := newAPI(t, settings.Defaults())

	rec := doJSON(t, mux, http.MethodPost, "/track", `{
		"jobUrl": "https://example.com/jobs/9",
		"fields": {"title": "Engineer"}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result string `json:"result"`
		Reason string `json:"reason"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "rejected", resp.Result)
	assert.Equal(t, "incomplete_data", resp.Reason)
}

func TestHandleTrack_BadRequests(t *testing.T) {
	_, mux := newAPI(t, settings.Defaults())

	cases := []struct {
		name string
		body string
	}{
		{"missing jobUrl", `{"fields": {"title": "X", "company": "Y"}}`},
		{"jobUrl not a url", `{"jobUrl": "not a url"}`},
		{"unknown trigger", `{"jobUrl": "https://example.com/jobs/1", "trigger": "click"}`},
		{"invalid json", `{"jobUrl": `},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/track", c.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			decode(t, rec, &resp)
			assert.NotEmpty(t, resp["error"])
		})
	}
}

// ─── POST /track/page ────────────────────────────────────────────────────────

func TestHandleTrackPage_OK(t *testing.T) {
	_, mux := newAPI(t, settings.Defaults())

	body, err := json.Marshal(map[string]string{
		"jobUrl": "https://example.com/careers/platform-engineer",
		"html":   postingHTML,
	})
	require.NoError(t, err)

	rec := doJSON(t, mux, http.MethodPost, "/track/page", string(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Result string `json:"result"`
		Record struct {
			JobTitle string `json:"jobTitle"`
			Company  string `json:"company"`
		} `json:"record"`
	}
	decode(t, rec, &resp)
	assert.Equal(t, "tracked", resp.Result)
	assert.Equal(t, "Platform Engineer", resp.Record.JobTitle)
	assert.Equal(t, "Globex", resp.Record.Company)
}

// ─── GET /jobs ───────────────────────────────────────────────────────────────

func TestHandleJobs_EmptyIsArray(t *testing.T) {
	_, mux := newAPI(t, settings.Defaults())

	rec := doJSON(t, mux, http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHandleJobs_ListsTracked(t *testing.T) {
	fx, mux := newAPI(t, settings.Defaults())
	ctx := context.Background()

	for _, url := range []string{
		"https://www.linkedin.com/jobs/view/1/",
		"https://www.linkedin.com/jobs/view/2/",
	} {
		resp, err := fx.svc.Track(ctx, trackRequest(url))
		require.NoError(t, err)
		require.Equal(t, tracker.ResultTracked, resp.Result)
	}

	rec := doJSON(t, mux, http.MethodGet, "/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var jobs []map[string]any
	decode(t, rec, &jobs)
	require.Len(t, jobs, 2)
	assert.Equal(t, "linkedin", jobs[0]["platform"])
	assert.Equal(t, "unsynced", jobs[0]["syncStatus"])
}

// ─── GET /jobs/stats ─────────────────────────────────────────────────────────

func TestHandleJobStats(t *testing.T) {
	fx, mux := newAPI(t, settings.Defaults())

	resp, err := fx.svc.Track(context.Background(), trackRequest("https://www.linkedin.com/jobs/view/1/"))
	require.NoError(t, err)
	require.Equal(t, tracker.ResultTracked, resp.Result)

	rec := doJSON(t, mux, http.MethodGet, "/jobs/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Total      int   `json:"total"`
		Unsynced   int   `json:"unsynced"`
		Synced     int   `json:"synced"`
		BadgeCount int64 `json:"badgeCount"`
	}
	decode(t, rec, &stats)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Unsynced)
	assert.Equal(t, 0, stats.Synced)
	assert.Equal(t, int64(1), stats.BadgeCount)
}

// ─── Settings ────────────────────────────────────────────────────────────────

func TestHandleSettings_GetAndPatch(t *testing.T) {
	_, mux := newAPI(t, settings.Defaults())

	rec := doJSON(t, mux, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg struct {
		AutoTrackEnabled     bool `json:"autoTrackEnabled"`
		SyncEnabled          bool `json:"syncEnabled"`
		NotificationsEnabled bool `json:"notificationsEnabled"`
	}
	decode(t, rec, &cfg)
	assert.True(t, cfg.AutoTrackEnabled)
	assert.False(t, cfg.SyncEnabled)
	assert.True(t, cfg.NotificationsEnabled)

	rec = doJSON(t, mux, http.MethodPatch, "/settings", `{"syncEnabled": true, "credential": "token-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &cfg)
	assert.True(t, cfg.SyncEnabled)

	// Untouched fields keep their values across the partial update.
	rec = doJSON(t, mux, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &cfg)
	assert.True(t, cfg.SyncEnabled)
	assert.True(t, cfg.AutoTrackEnabled)
}

// ─── POST /resync ────────────────────────────────────────────────────────────

func TestHandleResync(t *testing.T) {
	cfg := settings.Defaults()
	cfg.SyncEnabled = true
	cfg.Credential = "token-1"
	fx, mux := newAPI(t, cfg)

	// Record with sync temporarily broken, then resync against a healthy remote.
	fx.remote.status.Store(http.StatusBadGateway)
	resp, err := fx.svc.Track(context.Background(), trackRequest("https://www.linkedin.com/jobs/view/1/"))
	require.NoError(t, err)
	require.Equal(t, tracker.ResultTracked, resp.Result)
	fx.svc.Drain()
	fx.remote.status.Store(http.StatusOK)

	rec := doJSON(t, mux, http.MethodPost, "/resync", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var report struct {
		Attempted int `json:"attempted"`
		Synced    int `json:"synced"`
	}
	decode(t, rec, &report)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Synced)
}

// ─── GET /export ─────────────────────────────────────────────────────────────

func TestHandleExport(t *testing.T) {
	fx, mux := newAPI(t, settings.Defaults())

	resp, err := fx.svc.Track(context.Background(), trackRequest("https://www.linkedin.com/jobs/view/1/"))
	require.NoError(t, err)
	require.Equal(t, tracker.ResultTracked, resp.Result)

	rec := doJSON(t, mux, http.MethodGet, "/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tracked_jobs.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "tracked_at,platform,job_title"))
	assert.Contains(t, lines[1], "Backend Engineer")
}

// ─── Method discipline ───────────────────────────────────────────────────────

func TestMethodNotAllowed(t *testing.T) {
	_, mux := newAPI(t, settings.Defaults())

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/track"},
		{http.MethodGet, "/track/page"},
		{http.MethodPost, "/jobs"},
		{http.MethodPost, "/jobs/stats"},
		{http.MethodDelete, "/settings"},
		{http.MethodGet, "/resync"},
		{http.MethodPost, "/export"},
	}
	for _, c := range cases {
		rec := doJSON(t, mux, c.method, c.path, "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "%s %s", c.method, c.path)
	}
}
