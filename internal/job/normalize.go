package job

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ayushKhandelwal07/JobhubHq/internal/platform"
)

// MaxDescriptionLen caps stored descriptions; job postings routinely carry
// tens of KB of boilerplate that no projection ever displays in full.
const MaxDescriptionLen = 2000

const maxTailLen = 40

// ErrIncompleteData rejects extractions that yielded no usable title or
// company. Every other field may be empty.
var ErrIncompleteData = errors.New("incomplete job data: title and company are required")

// RawFields is the untrusted output of an extraction adapter. Any field may
// be empty or padded with whitespace.
type RawFields struct {
	Title         string `json:"title"`
	Company       string `json:"company"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	SalaryRange   string `json:"salaryRange"`
	PlatformJobID string `json:"platformJobId"`
}

// Normalizer turns raw extracted fields into canonical Records.
type Normalizer struct {
	rules *platform.RuleSet
}

func NewNormalizer(rules *platform.RuleSet) *Normalizer {
	return &Normalizer{rules: rules}
}

// Normalize validates and canonicalizes raw fields into a Record ready for
// ledger insertion. Normalizing the same input at the same instant yields
// the same record. It returns ErrIncompleteData when the trimmed title or
// company is empty.
func (n *Normalizer) Normalize(raw RawFields, p platform.Platform, jobURL string, trackedAt time.Time) (*Record, error) {
	title := strings.TrimSpace(raw.Title)
	company := strings.TrimSpace(raw.Company)
	if title == "" || company == "" {
		return nil, ErrIncompleteData
	}

	desc := strings.TrimSpace(raw.Description)
	if len(desc) > MaxDescriptionLen {
		desc = desc[:MaxDescriptionLen]
	}

	if p == "" {
		p = platform.PlatformUnknown
	}

	rec := &Record{
		ID:          n.recordID(p, strings.TrimSpace(raw.PlatformJobID), jobURL, trackedAt),
		Platform:    p,
		JobTitle:    title,
		Company:     company,
		Location:    strings.TrimSpace(raw.Location),
		Description: desc,
		SalaryRange: strings.TrimSpace(raw.SalaryRange),
		JobURL:      strings.TrimSpace(jobURL),
		TrackedAt:   trackedAt,
		Status:      StatusTracked,
		SyncStatus:  SyncUnsynced,
	}
	return rec, nil
}

// recordID builds the ledger key: platform, a stable per-posting key, and
// the tracking instant in epoch millis. The per-posting key prefers the
// platform-native job id, then a cleaned final URL path segment, then a
// short digest of the whole URL.
func (n *Normalizer) recordID(p platform.Platform, nativeID, jobURL string, trackedAt time.Time) string {
	key := nativeID
	if key == "" {
		_, key = n.rules.JobID(jobURL)
	}
	if key == "" {
		key = urlTail(jobURL)
	}
	return fmt.Sprintf("%s-%s-%d", p, key, trackedAt.UnixMilli())
}

// urlTail derives a readable key from the last non-empty path segment,
// keeping only [a-z0-9_-]. URLs with no usable segment fall back to a short
// sha256 digest so distinct URLs stay distinct.
func urlTail(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		segs := strings.Split(u.Path, "/")
		for i := len(segs) - 1; i >= 0; i-- {
			if tail := sanitizeSegment(segs[i]); tail != "" {
				return tail
			}
		}
	}
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:4])
}

func sanitizeSegment(seg string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(seg) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	s := strings.Trim(b.String(), "-_")
	if len(s) > maxTailLen {
		s = s[:maxTailLen]
	}
	return s
}
