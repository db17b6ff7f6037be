// Package tracker also implements the local HTTP API the browser extension
// talks to.
//
// Routes:
//
//	POST  /track       → track a job from pre-extracted fields
//	POST  /track/page  → track a job from captured page HTML (or by URL)
//	GET   /jobs        → list tracked jobs, newest first
//	GET   /jobs/stats  → sync-status counts + badge count
//	GET   /settings    → current user settings
//	PATCH /settings    → partial settings update
//	POST  /resync      → push every unsynced record now
//	GET   /export      → CSV projection of the ledger
package tracker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ayushKhandelwal07/JobhubHq/internal/export"
	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
	"github.com/ayushKhandelwal07/JobhubHq/internal/ledger"
	"github.com/ayushKhandelwal07/JobhubHq/internal/settings"
	"github.com/ayushKhandelwal07/JobhubHq/internal/syncer"
)

// ─── Request types ───────────────────────────────────────────────────────────

var validate = validator.New()

type trackBody struct {
	JobURL   string        `json:"jobUrl" validate:"required,url"`
	Platform string        `json:"platform"`
	Trigger  string        `json:"trigger" validate:"omitempty,oneof=manual auto context_menu"`
	Fields   job.RawFields `json:"fields"`
}

func (b *trackBody) Validate() error { return validate.Struct(b) }

type trackPageBody struct {
	JobURL   string `json:"jobUrl" validate:"required,url"`
	Platform string `json:"platform"`
	Trigger  string `json:"trigger" validate:"omitempty,oneof=manual auto context_menu"`
	HTML     string `json:"html"`
}

func (b *trackPageBody) Validate() error { return validate.Struct(b) }

type statsResponse struct {
	ledger.Counts
	BadgeCount int64 `json:"badgeCount"`
}

// ─── Handler ─────────────────────────────────────────────────────────────────

// SettingsStore is the read/write settings surface the API exposes. The
// tracking core itself only ever sees the read side (settings.Source).
type SettingsStore interface {
	settings.Source
	Update(ctx context.Context, p settings.Patch) (settings.Settings, error)
}

// Handler holds shared dependencies.
type Handler struct {
	svc    *Service
	store  SettingsStore
	engine *syncer.Engine
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service, store SettingsStore, engine *syncer.Engine) *Handler {
	return &Handler{svc: svc, store: store, engine: engine}
}

// RegisterRoutes mounts all trackerd routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/track", h.handleTrack)
	mux.HandleFunc("/track/page", h.handleTrackPage)
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/stats", h.handleJobStats)
	mux.HandleFunc("/settings", h.handleSettings)
	mux.HandleFunc("/resync", h.handleResync)
	mux.HandleFunc("/export", h.handleExport)
}

// ─── Individual handlers ─────────────────────────────────────────────────────

func (h *Handler) handleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body trackBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := body.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	trigger, err := ParseTrigger(body.Trigger)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.svc.Track(r.Context(), TrackRequest{
		JobURL:   body.JobURL,
		Platform: body.Platform,
		Trigger:  trigger,
		Fields:   body.Fields,
	})
	if err != nil {
		log.Printf("[trackerd] track error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, resp)
}

func (h *Handler) handleTrackPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body trackPageBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := body.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	trigger, err := ParseTrigger(body.Trigger)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.svc.TrackPage(r.Context(), TrackPageRequest{
		JobURL:   body.JobURL,
		Platform: body.Platform,
		Trigger:  trigger,
		HTML:     []byte(body.HTML),
	})
	if err != nil {
		log.Printf("[trackerd] track page error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, resp)
}

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("[trackerd] list error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []job.Record{}
	}
	jsonOK(w, records)
}

func (h *Handler) handleJobStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, badge, err := h.svc.Stats(r.Context())
	if err != nil {
		log.Printf("[trackerd] stats error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, statsResponse{Counts: counts, BadgeCount: badge})
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := h.store.Reload(r.Context())
		if err != nil {
			log.Printf("[trackerd] settings read error: %v", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
			return
		}
		jsonOK(w, cfg)

	case http.MethodPatch:
		var patch settings.Patch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		cfg, err := h.store.Update(r.Context(), patch)
		if err != nil {
			log.Printf("[trackerd] settings update error: %v", err)
			jsonError(w, "internal error", http.StatusInternalServerError)
			return
		}
		jsonOK(w, cfg)

	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleResync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report, err := h.engine.Resync(r.Context(), true)
	if err != nil {
		log.Printf("[trackerd] resync error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	jsonOK(w, report)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("[trackerd] export error: %v", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tracked_jobs.csv"`)
	if err := export.WriteCSV(w, records); err != nil {
		log.Printf("[trackerd] export write error: %v", err)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
