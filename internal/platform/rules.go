package platform

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule describes how to recognize one platform: host fragments matched
// against the URL host, and regex patterns whose first capture group is
// the platform-native job id.
type Rule struct {
	Name         string   `yaml:"name"`
	Hosts        []string `yaml:"hosts"`
	JobIDPattern []string `yaml:"job_id_patterns"`
}

type compiledRule struct {
	platform   Platform
	hosts      []string
	idPatterns []*regexp.Regexp
}

// RuleSet holds compiled detection rules, first match wins.
type RuleSet struct {
	rules []compiledRule
}

// defaultRules covers the boards the browser extension injects into.
var defaultRules = []Rule{
	{
		Name:  "linkedin",
		Hosts: []string{"linkedin.com"},
		JobIDPattern: []string{
			`/jobs/view/(\d+)`,
			`[?&]currentJobId=(\d+)`,
		},
	},
	{
		Name:  "indeed",
		Hosts: []string{"indeed.com"},
		JobIDPattern: []string{
			`[?&]jk=([0-9a-fA-F]+)`,
			`/viewjob/([0-9a-fA-F]+)`,
		},
	},
	{
		Name:  "angellist",
		Hosts: []string{"angel.co", "wellfound.com"},
		JobIDPattern: []string{
			`/jobs/(\d+)`,
		},
	},
}

// Default returns the built-in rule set.
func Default() *RuleSet {
	rs, err := compile(defaultRules)
	if err != nil {
		// The built-in table is covered by tests; a bad pattern here is a
		// programming error.
		panic(err)
	}
	return rs
}

// Parse parses YAML rule content into a RuleSet.
func Parse(data []byte) (*RuleSet, error) {
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse platform rules: %w", err)
	}
	return compile(rules)
}

// Load reads a YAML rule file and returns a RuleSet.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func compile(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{}
	for _, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("platform rule missing name")
		}
		if len(r.Hosts) == 0 {
			return nil, fmt.Errorf("platform rule %q has no hosts", r.Name)
		}
		cr := compiledRule{platform: Platform(r.Name)}
		for _, h := range r.Hosts {
			cr.hosts = append(cr.hosts, strings.ToLower(h))
		}
		for _, p := range r.JobIDPattern {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("platform rule %q: bad job id pattern %q: %w", r.Name, p, err)
			}
			cr.idPatterns = append(cr.idPatterns, re)
		}
		rs.rules = append(rs.rules, cr)
	}
	return rs, nil
}
