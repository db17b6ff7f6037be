package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayushKhandelwal07/JobhubHq/internal/extract"
	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
	"github.com/ayushKhandelwal07/JobhubHq/internal/ledger"
	"github.com/ayushKhandelwal07/JobhubHq/internal/notify"
	"github.com/ayushKhandelwal07/JobhubHq/internal/platform"
	"github.com/ayushKhandelwal07/JobhubHq/internal/settings"
	"github.com/ayushKhandelwal07/JobhubHq/internal/syncer"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service routes tracking attempts through the attempt graph. It is
// transport-agnostic: the HTTP handler, the CLI commands and tests all
// drive it the same way.
type Service struct {
	rules    *platform.RuleSet
	norm     *job.Normalizer
	ledger   ledger.Ledger
	settings settings.Source
	engine   *syncer.Engine
	notifier notify.Notifier
	adapter  extract.Adapter
	fetcher  *extract.Fetcher

	syncWG sync.WaitGroup
}

const syncTimeout = 30 * time.Second

// NewService returns a configured Service.
func NewService(
	rules *platform.RuleSet,
	led ledger.Ledger,
	src settings.Source,
	engine *syncer.Engine,
	notifier notify.Notifier,
	adapter extract.Adapter,
	fetcher *extract.Fetcher,
) *Service {
	return &Service{
		rules:    rules,
		norm:     job.NewNormalizer(rules),
		ledger:   led,
		settings: src,
		engine:   engine,
		notifier: notifier,
		adapter:  adapter,
		fetcher:  fetcher,
	}
}

// ─── Request / response contracts ────────────────────────────────────────────

// Result classifies the terminal outcome of one tracking attempt.
type Result string

const (
	ResultTracked        Result = "tracked"
	ResultAlreadyTracked Result = "already_tracked"
	ResultRejected       Result = "rejected"
	ResultAutoTrackOff   Result = "auto_track_disabled"
)

// Rejection reasons carried in TrackResponse.Reason.
const (
	ReasonIncompleteData   = "incomplete_data"
	ReasonExtractionFailed = "extraction_failed"
)

// TrackRequest is one tracking attempt with pre-extracted fields (the
// extension's content script already read the page).
type TrackRequest struct {
	JobURL   string
	Platform string // optional hint, e.g. "linkedin"
	Trigger  Trigger
	Fields   job.RawFields
}

// TrackPageRequest is one tracking attempt from a page: captured HTML when
// the caller has it, otherwise the posting is fetched by URL.
type TrackPageRequest struct {
	JobURL   string
	Platform string
	Trigger  Trigger
	HTML     []byte
}

// TrackResponse correlates back to its request via RequestID and reports
// exactly one Result. Record is set only for ResultTracked.
type TrackResponse struct {
	RequestID  string      `json:"requestId"`
	Result     Result      `json:"result"`
	Reason     string      `json:"reason,omitempty"`
	BadgeCount int64       `json:"badgeCount,omitempty"`
	Record     *job.Record `json:"record,omitempty"`
}

// ─── Tracking ────────────────────────────────────────────────────────────────

// Track runs one attempt end to end: completeness gate, dedup, normalize,
// record, then side effects. The returned error reports internal trouble
// only (ledger unavailable); every user-visible outcome is a Result.
func (s *Service) Track(ctx context.Context, req TrackRequest) (*TrackResponse, error) {
	resp := &TrackResponse{RequestID: uuid.NewString()}
	cfg := s.settings.Current()

	// The auto-track preference gates automatic attempts before the
	// attempt graph starts; explicit user actions always proceed.
	if req.Trigger == TriggerAuto && !cfg.AutoTrackEnabled {
		resp.Result = ResultAutoTrackOff
		return resp, nil
	}

	a := newAttempt(resp.RequestID)

	// Extraction stage: empty or partial results route straight to REJECTED.
	if strings.TrimSpace(req.Fields.Title) == "" || strings.TrimSpace(req.Fields.Company) == "" {
		if err := s.reject(ctx, a, resp, cfg, ReasonIncompleteData,
			"Couldn't read a job title and company from this page."); err != nil {
			return nil, err
		}
		return resp, nil
	}
	if err := a.to(StateExtracted); err != nil {
		return nil, err
	}

	// Dedup stage: the jobUrl lookup short-circuits before any write.
	exists, err := s.ledger.Exists(ctx, req.JobURL)
	if err != nil {
		return nil, fmt.Errorf("ledger exists: %w", err)
	}
	if err := a.to(StateDeduplicated); err != nil {
		return nil, err
	}
	if exists {
		if err := s.alreadyTracked(a, resp, req.JobURL); err != nil {
			return nil, err
		}
		return resp, nil
	}

	p := platform.FromString(req.Platform)
	if p == platform.PlatformUnknown {
		p = s.rules.Detect(req.JobURL)
	}

	rec, err := s.norm.Normalize(req.Fields, p, req.JobURL, time.Now().UTC())
	if errors.Is(err, job.ErrIncompleteData) {
		if err := s.reject(ctx, a, resp, cfg, ReasonIncompleteData,
			"Couldn't read a job title and company from this page."); err != nil {
			return nil, err
		}
		return resp, nil
	}
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	if err := s.ledger.Insert(ctx, rec); err != nil {
		// Another context recorded the same URL between the lookup and the
		// insert. Same outcome as the short-circuit, no duplicate row.
		if errors.Is(err, ledger.ErrDuplicateURL) {
			if aerr := s.alreadyTracked(a, resp, req.JobURL); aerr != nil {
				return nil, aerr
			}
			return resp, nil
		}
		return nil, fmt.Errorf("ledger insert: %w", err)
	}
	if err := a.to(StateRecorded); err != nil {
		return nil, err
	}

	resp.Result = ResultTracked
	resp.Record = rec
	s.recordedSideEffects(ctx, cfg, resp, rec)
	return resp, nil
}

// TrackPage extracts raw fields from a posting page, fetching it first
// when the caller sent no HTML, then runs the regular Track pipeline.
func (s *Service) TrackPage(ctx context.Context, req TrackPageRequest) (*TrackResponse, error) {
	cfg := s.settings.Current()
	if req.Trigger == TriggerAuto && !cfg.AutoTrackEnabled {
		return &TrackResponse{RequestID: uuid.NewString(), Result: ResultAutoTrackOff}, nil
	}

	html := req.HTML
	if len(html) == 0 {
		fetched, err := s.fetcher.Fetch(ctx, req.JobURL)
		if err != nil {
			slog.Warn("posting fetch failed", "url", req.JobURL, "error", err)
			return s.rejectNew(ctx, cfg, ReasonExtractionFailed,
				"Couldn't load the job posting page.")
		}
		html = fetched
	}

	raw, err := s.adapter.Extract(req.JobURL, html)
	if err != nil {
		slog.Warn("posting extraction failed", "url", req.JobURL, "error", err)
		return s.rejectNew(ctx, cfg, ReasonExtractionFailed,
			"Couldn't read this job posting page.")
	}

	return s.Track(ctx, TrackRequest{
		JobURL:   req.JobURL,
		Platform: req.Platform,
		Trigger:  req.Trigger,
		Fields:   raw,
	})
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// List returns every tracked record, newest first.
func (s *Service) List(ctx context.Context) ([]job.Record, error) {
	records, err := s.ledger.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger list: %w", err)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].TrackedAt.Equal(records[j].TrackedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].TrackedAt.After(records[j].TrackedAt)
	})
	return records, nil
}

// Stats reports ledger counts plus the badge count. A broken badge backend
// degrades to zero rather than failing the read.
func (s *Service) Stats(ctx context.Context) (ledger.Counts, int64, error) {
	counts, err := s.ledger.CountBySyncStatus(ctx)
	if err != nil {
		return ledger.Counts{}, 0, fmt.Errorf("ledger counts: %w", err)
	}
	badge, err := s.notifier.TrackedCount(ctx)
	if err != nil {
		slog.Warn("badge count read failed", "error", err)
		badge = 0
	}
	return counts, badge, nil
}

// Drain waits for in-flight background syncs; called on shutdown.
func (s *Service) Drain() {
	s.syncWG.Wait()
}

// ─── Side effects ────────────────────────────────────────────────────────────

// recordedSideEffects runs after a successful insert: badge bump, success
// notification, background sync. All of it is non-fatal; the record is
// already durable.
func (s *Service) recordedSideEffects(ctx context.Context, cfg settings.Settings, resp *TrackResponse, rec *job.Record) {
	badge, err := s.notifier.JobTracked(ctx)
	if err != nil {
		slog.Warn("badge increment failed", "id", rec.ID, "error", err)
	}
	resp.BadgeCount = badge

	if cfg.NotificationsEnabled {
		ev := notify.Event{
			Title:     "Job tracked",
			Body:      fmt.Sprintf("%s at %s", rec.JobTitle, rec.Company),
			Kind:      notify.KindSuccess,
			RequestID: resp.RequestID,
		}
		if err := s.notifier.Publish(ctx, ev); err != nil {
			slog.Warn("publish tracked notification failed", "id", rec.ID, "error", err)
		}
	}

	if cfg.SyncEnabled {
		s.syncWG.Add(1)
		recCopy := *rec
		go func() {
			defer s.syncWG.Done()
			sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), syncTimeout)
			defer cancel()

			outcome, err := s.engine.Sync(sctx, &recCopy)
			if err != nil {
				slog.Warn("sync ledger update failed", "id", recCopy.ID, "error", err)
			}
			log.Printf("[sync] %s → %s", recCopy.ID, outcome)

			switch outcome {
			case syncer.OutcomeAuthFailed, syncer.OutcomeInvalidData, syncer.OutcomeTransientFailure:
				if cfg.NotificationsEnabled {
					ev := notify.Event{
						Title:     "Sync failed",
						Body:      recCopy.SyncError,
						Kind:      notify.KindError,
						RequestID: resp.RequestID,
					}
					if err := s.notifier.Publish(sctx, ev); err != nil {
						slog.Warn("publish sync failure notification failed", "id", recCopy.ID, "error", err)
					}
				}
			}
		}()
	}
}

// reject walks the attempt to REJECTED and tells the user why. Duplicate
// and rejection outcomes never produce a success notification.
func (s *Service) reject(ctx context.Context, a *attempt, resp *TrackResponse, cfg settings.Settings, reason, body string) error {
	if err := a.to(StateRejected); err != nil {
		return err
	}
	resp.Result = ResultRejected
	resp.Reason = reason

	if cfg.NotificationsEnabled {
		ev := notify.Event{
			Title:     "Tracking failed",
			Body:      body,
			Kind:      notify.KindError,
			RequestID: resp.RequestID,
		}
		if err := s.notifier.Publish(ctx, ev); err != nil {
			slog.Warn("publish rejection notification failed", "error", err)
		}
	}
	return nil
}

// rejectNew is reject for attempts that die before reaching Track.
func (s *Service) rejectNew(ctx context.Context, cfg settings.Settings, reason, body string) (*TrackResponse, error) {
	resp := &TrackResponse{RequestID: uuid.NewString()}
	a := newAttempt(resp.RequestID)
	if err := s.reject(ctx, a, resp, cfg, reason, body); err != nil {
		return nil, err
	}
	return resp, nil
}

// alreadyTracked ends the attempt without touching the ledger or the badge:
// re-tracking a known URL is idempotent and quiet.
func (s *Service) alreadyTracked(a *attempt, resp *TrackResponse, jobURL string) error {
	if err := a.to(StateAlreadyTracked); err != nil {
		return err
	}
	resp.Result = ResultAlreadyTracked
	log.Printf("[tracker] already tracked: %s", jobURL)
	return nil
}
