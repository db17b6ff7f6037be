package platform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushKhandelwal07/JobhubHq/internal/platform"
)

func TestDetect_LinkedIn(t *testing.T) {
	rs := platform.Default()
	tests := []struct {
		url      string
		expected platform.Platform
	}{
		{"https://www.linkedin.com/jobs/view/4011223344/", platform.PlatformLinkedIn},
		{"https://linkedin.com/jobs/collections/recommended/?currentJobId=4011223344", platform.PlatformLinkedIn},
		{"https://www.linkedin.com:443/jobs/view/99", platform.PlatformLinkedIn},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, rs.Detect(tt.url))
		})
	}
}

func TestDetect_Indeed(t *testing.T) {
	rs := platform.Default()
	tests := []struct {
		url      string
		expected platform.Platform
	}{
		{"https://www.indeed.com/viewjob?jk=abc123def456", platform.PlatformIndeed},
		{"https://uk.indeed.com/viewjob?jk=00fe11aa22bb33cc", platform.PlatformIndeed},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, rs.Detect(tt.url))
		})
	}
}

func TestDetect_AngelList(t *testing.T) {
	rs := platform.Default()
	tests := []struct {
		url      string
		expected platform.Platform
	}{
		{"https://angel.co/company/acme/jobs/123456-engineer", platform.PlatformAngelList},
		{"https://wellfound.com/jobs/2891001-backend-engineer", platform.PlatformAngelList},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, rs.Detect(tt.url))
		})
	}
}

func TestDetect_Unknown(t *testing.T) {
	rs := platform.Default()
	tests := []struct {
		url      string
		expected platform.Platform
	}{
		{"https://example.com/jobs/123", platform.PlatformUnknown},
		{"https://jobs.lever.co/company/role", platform.PlatformUnknown},
		{"not a url at all", platform.PlatformUnknown},
		{"", platform.PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.expected, rs.Detect(tt.url))
		})
	}
}

func TestJobID(t *testing.T) {
	rs := platform.Default()
	tests := []struct {
		name     string
		url      string
		platform platform.Platform
		id       string
	}{
		{"linkedin view path", "https://www.linkedin.com/jobs/view/4011223344/", platform.PlatformLinkedIn, "4011223344"},
		{"linkedin query param", "https://www.linkedin.com/jobs/search/?currentJobId=987654&keywords=go", platform.PlatformLinkedIn, "987654"},
		{"indeed jk param", "https://www.indeed.com/viewjob?jk=1a2b3c4d5e6f", platform.PlatformIndeed, "1a2b3c4d5e6f"},
		{"wellfound path", "https://wellfound.com/jobs/2891001-backend-engineer", platform.PlatformAngelList, "2891001"},
		{"linkedin without id", "https://www.linkedin.com/feed/", platform.PlatformLinkedIn, ""},
		{"unknown host", "https://example.com/jobs/view/123", platform.PlatformUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, id := rs.JobID(tt.url)
			assert.Equal(t, tt.platform, p)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		hint     string
		expected platform.Platform
	}{
		{"linkedin", platform.PlatformLinkedIn},
		{"LinkedIn", platform.PlatformLinkedIn},
		{" indeed ", platform.PlatformIndeed},
		{"wellfound", platform.PlatformAngelList},
		{"angellist", platform.PlatformAngelList},
		{"monster", platform.PlatformUnknown},
		{"", platform.PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run("hint "+tt.hint, func(t *testing.T) {
			assert.Equal(t, tt.expected, platform.FromString(tt.hint))
		})
	}
}

func TestParseRules(t *testing.T) {
	data := []byte(`
- name: linkedin
  hosts: [linkedin.com]
  job_id_patterns:
    - '/jobs/view/(\d+)'
- name: remoteok
  hosts: [remoteok.com]
  job_id_patterns:
    - '/remote-jobs/(\d+)'
`)
	rs, err := platform.Parse(data)
	require.NoError(t, err)

	assert.Equal(t, platform.PlatformLinkedIn, rs.Detect("https://www.linkedin.com/jobs/view/1"))

	p, id := rs.JobID("https://remoteok.com/remote-jobs/112233-go-dev")
	assert.Equal(t, platform.Platform("remoteok"), p)
	assert.Equal(t, "112233", id)

	// The custom set replaces the built-ins entirely.
	assert.Equal(t, platform.PlatformUnknown, rs.Detect("https://www.indeed.com/viewjob?jk=aa"))
}

func TestParseRules_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing name", "- hosts: [x.com]"},
		{"no hosts", "- name: x"},
		{"bad regex", "- name: x\n  hosts: [x.com]\n  job_id_patterns: ['(']"},
		{"not yaml", ": ["},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := platform.Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}
