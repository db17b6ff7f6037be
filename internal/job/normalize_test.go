package job_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
	"github.com/ayushKhandelwal07/JobhubHq/internal/platform"
)

var trackedAt = time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)

func newNormalizer() *job.Normalizer {
	return job.NewNormalizer(platform.Default())
}

// Whitespace is trimmed from every string field before anything else.
func TestNormalize_TrimsFields(t *testing.T) {
	raw := job.RawFields{
		Title:       "  Software Engineer\n",
		Company:     "\tTech Corp ",
		Location:    " Remote ",
		Description: "  build things  ",
		SalaryRange: " $120k-$150k ",
	}
	rec, err := newNormalizer().Normalize(raw, platform.PlatformLinkedIn, "https://www.linkedin.com/jobs/view/123/", trackedAt)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if rec.JobTitle != "Software Engineer" {
		t.Errorf("JobTitle = %q", rec.JobTitle)
	}
	if rec.Company != "Tech Corp" {
		t.Errorf("Company = %q", rec.Company)
	}
	if rec.Location != "Remote" {
		t.Errorf("Location = %q", rec.Location)
	}
	if rec.Description != "build things" {
		t.Errorf("Description = %q", rec.Description)
	}
	if rec.SalaryRange != "$120k-$150k" {
		t.Errorf("SalaryRange = %q", rec.SalaryRange)
	}
}

// A record missing title or company (after trimming) is rejected, never
// partially stored.
func TestNormalize_IncompleteData(t *testing.T) {
	cases := []job.RawFields{
		{Title: "", Company: "Tech Corp"},
		{Title: "Engineer", Company: ""},
		{Title: "   ", Company: "Tech Corp"},
		{Title: "Engineer", Company: "\n\t"},
		{},
	}
	n := newNormalizer()
	for i, raw := range cases {
		_, err := n.Normalize(raw, platform.PlatformLinkedIn, "https://example.com/x", trackedAt)
		if !errors.Is(err, job.ErrIncompleteData) {
			t.Errorf("case %d: err = %v, want ErrIncompleteData", i, err)
		}
	}
}

// Descriptions are truncated to MaxDescriptionLen; shorter ones pass through.
func TestNormalize_TruncatesDescription(t *testing.T) {
	n := newNormalizer()
	long := strings.Repeat("x", job.MaxDescriptionLen+500)

	rec, err := n.Normalize(job.RawFields{Title: "T", Company: "C", Description: long}, platform.PlatformUnknown, "https://example.com/j", trackedAt)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if len(rec.Description) != job.MaxDescriptionLen {
		t.Errorf("len(Description) = %d, want %d", len(rec.Description), job.MaxDescriptionLen)
	}

	exact := strings.Repeat("y", job.MaxDescriptionLen)
	rec, err = n.Normalize(job.RawFields{Title: "T", Company: "C", Description: exact}, platform.PlatformUnknown, "https://example.com/j", trackedAt)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if rec.Description != exact {
		t.Error("description at exactly the cap must not be altered")
	}
}

// A new record always starts tracked/unsynced with no remote id and no
// sync error.
func TestNormalize_InitialState(t *testing.T) {
	rec, err := newNormalizer().Normalize(job.RawFields{Title: "T", Company: "C"}, platform.PlatformIndeed, "https://www.indeed.com/viewjob?jk=ab12", trackedAt)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if rec.Status != job.StatusTracked {
		t.Errorf("Status = %q, want %q", rec.Status, job.StatusTracked)
	}
	if rec.SyncStatus != job.SyncUnsynced {
		t.Errorf("SyncStatus = %q, want %q", rec.SyncStatus, job.SyncUnsynced)
	}
	if rec.RemoteID != nil {
		t.Errorf("RemoteID = %v, want nil", *rec.RemoteID)
	}
	if rec.SyncError != "" {
		t.Errorf("SyncError = %q, want empty", rec.SyncError)
	}
	if !rec.TrackedAt.Equal(trackedAt) {
		t.Errorf("TrackedAt = %v, want %v", rec.TrackedAt, trackedAt)
	}
}

// The record id embeds platform, a per-posting key and the epoch millis of
// the tracking instant. The platform-native id wins when present.
func TestNormalize_RecordID(t *testing.T) {
	n := newNormalizer()
	millis := trackedAt.UnixMilli()

	tests := []struct {
		name     string
		raw      job.RawFields
		platform platform.Platform
		url      string
		wantID   string
	}{
		{
			name:     "explicit platform job id",
			raw:      job.RawFields{Title: "T", Company: "C", PlatformJobID: "4011223344"},
			platform: platform.PlatformLinkedIn,
			url:      "https://www.linkedin.com/jobs/view/4011223344/",
			wantID:   fmt.Sprintf("linkedin-4011223344-%d", millis),
		},
		{
			name:     "id recovered from url",
			raw:      job.RawFields{Title: "T", Company: "C"},
			platform: platform.PlatformIndeed,
			url:      "https://www.indeed.com/viewjob?jk=1a2b3c",
			wantID:   fmt.Sprintf("indeed-1a2b3c-%d", millis),
		},
		{
			name:     "url tail fallback",
			raw:      job.RawFields{Title: "T", Company: "C"},
			platform: platform.PlatformUnknown,
			url:      "https://jobs.example.com/openings/Senior-Go-Developer/",
			wantID:   fmt.Sprintf("unknown-senior-go-developer-%d", millis),
		},
	}

	for _, tt := range tests {
		rec, err := n.Normalize(tt.raw, tt.platform, tt.url, trackedAt)
		if err != nil {
			t.Fatalf("%s: Normalize returned error: %v", tt.name, err)
		}
		if rec.ID != tt.wantID {
			t.Errorf("%s: ID = %q, want %q", tt.name, rec.ID, tt.wantID)
		}
	}
}

// URLs with no usable path segment still produce a non-empty, stable key.
func TestNormalize_RecordIDDigestFallback(t *testing.T) {
	n := newNormalizer()
	raw := job.RawFields{Title: "T", Company: "C"}

	a, err := n.Normalize(raw, platform.PlatformUnknown, "https://例え.jp/", trackedAt)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	b, err := n.Normalize(raw, platform.PlatformUnknown, "https://例え.jp/", trackedAt)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if a.ID != b.ID {
		t.Errorf("same input must yield the same id: %q vs %q", a.ID, b.ID)
	}
	prefix := fmt.Sprintf("unknown--%d", trackedAt.UnixMilli())
	if a.ID == prefix {
		t.Errorf("ID %q has an empty per-posting key", a.ID)
	}
}

// An unrecognized platform is a valid value, not a rejection.
func TestNormalize_UnknownPlatformAllowed(t *testing.T) {
	rec, err := newNormalizer().Normalize(job.RawFields{Title: "T", Company: "C"}, platform.PlatformUnknown, "https://smallco.example/careers/42", trackedAt)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if rec.Platform != platform.PlatformUnknown {
		t.Errorf("Platform = %q, want %q", rec.Platform, platform.PlatformUnknown)
	}
}
