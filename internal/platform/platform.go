// Package platform identifies job boards from posting URLs and extracts
// their native job identifiers.
package platform

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

const (
	// PlatformLinkedIn is the LinkedIn job board
	PlatformLinkedIn Platform = "linkedin"
	// PlatformIndeed is the Indeed job board
	PlatformIndeed Platform = "indeed"
	// PlatformAngelList is the AngelList / Wellfound job board
	PlatformAngelList Platform = "angellist"
	// PlatformUnknown is an unrecognized platform
	PlatformUnknown Platform = "unknown"
)

// FromString maps a caller-supplied platform hint to a known Platform.
// Unrecognized or empty hints map to PlatformUnknown; an unknown platform
// is a valid value, never a rejection.
func FromString(s string) Platform {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PlatformLinkedIn):
		return PlatformLinkedIn
	case string(PlatformIndeed):
		return PlatformIndeed
	case string(PlatformAngelList), "wellfound":
		return PlatformAngelList
	default:
		return PlatformUnknown
	}
}

// Detect identifies the job board platform from a posting URL.
func (rs *RuleSet) Detect(rawURL string) Platform {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return PlatformUnknown
	}

	for _, r := range rs.rules {
		for _, h := range r.hosts {
			if strings.Contains(host, h) {
				return r.platform
			}
		}
	}
	return PlatformUnknown
}

// JobID extracts the platform-native job identifier from a posting URL,
// e.g. the numeric id in linkedin.com/jobs/view/4011223344. It returns
// the detected platform and the identifier, or an empty identifier when
// no pattern matches.
func (rs *RuleSet) JobID(rawURL string) (Platform, string) {
	p := rs.Detect(rawURL)
	if p == PlatformUnknown {
		return p, ""
	}

	for _, r := range rs.rules {
		if r.platform != p {
			continue
		}
		for _, re := range r.idPatterns {
			if m := re.FindStringSubmatch(rawURL); len(m) > 1 {
				return p, m[1]
			}
		}
	}
	return p, ""
}
