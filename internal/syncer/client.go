// Package syncer pushes tracked job records to the remote JobhubHq account
// over its applications API. Every push is a single attempt; retry policy
// belongs to the callers (the re-sync sweep and the resync command).
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
	"github.com/ayushKhandelwal07/JobhubHq/internal/platform"
)

const (
	upsertPath  = "/api/applications/"
	httpTimeout = 15 * time.Second

	maxErrorBody = 512
)

var (
	// ErrUnauthorized means the remote rejected the credential (401/403).
	// Retrying is pointless until the user pastes a fresh one.
	ErrUnauthorized = errors.New("remote rejected credential")

	// ErrInvalidData means the remote refused the payload itself (400/422).
	// The same record will fail the same way on every retry.
	ErrInvalidData = errors.New("remote rejected job data")
)

// Client talks to the JobhubHq applications API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a Client with a shared HTTP client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// upsertRequest mirrors the applications API payload.
type upsertRequest struct {
	JobTitle       string `json:"job_title"`
	Company        string `json:"company"`
	JobURL         string `json:"job_url"`
	Location       string `json:"location,omitempty"`
	JobDescription string `json:"job_description,omitempty"`
	SalaryRange    string `json:"salary_range,omitempty"`
	Source         string `json:"source"`
	Notes          string `json:"notes,omitempty"`
}

// upsertResponse mirrors the created/updated application row.
type upsertResponse struct {
	ID int64 `json:"id"`
}

// Upsert pushes one record and returns the remote application id. Failures
// are classified: ErrUnauthorized for credential problems, ErrInvalidData
// for payload rejections, and plain errors for anything transient.
func (c *Client) Upsert(ctx context.Context, credential string, rec *job.Record) (int64, error) {
	// The remote folds unknown-board records in with its hand-entered ones;
	// notes preserves the real provenance either way.
	source := string(rec.Platform)
	notes := fmt.Sprintf("Auto-tracked from %s", rec.Platform)
	if rec.Platform == platform.PlatformUnknown {
		source = "manual"
		notes = "Auto-tracked via browser extension"
	}

	payload, err := json.Marshal(upsertRequest{
		JobTitle:       rec.JobTitle,
		Company:        rec.Company,
		JobURL:         rec.JobURL,
		Location:       rec.Location,
		JobDescription: rec.Description,
		SalaryRange:    rec.SalaryRange,
		Source:         source,
		Notes:          notes,
	})
	if err != nil {
		return 0, fmt.Errorf("marshal upsert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+upsertPath, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var out upsertResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return 0, fmt.Errorf("json unmarshal: %w", err)
		}
		return out.ID, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return 0, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return 0, fmt.Errorf("%w: status %d: %s", ErrInvalidData, resp.StatusCode, truncate(body))
	default:
		return 0, fmt.Errorf("remote returned %d: %s", resp.StatusCode, truncate(body))
	}
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return string(body)
}
