// Package extract pulls raw job fields out of posting pages. It is the
// generic fallback the browser extension relies on when its per-board
// content script yielded nothing: best effort, never authoritative, any
// field may come back empty.
package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
)

// Adapter turns a posting page into raw job fields.
type Adapter interface {
	Extract(pageURL string, html []byte) (job.RawFields, error)
}

// Page is the generic HTML adapter. Sources, in order of trust: JSON-LD
// JobPosting blocks, OpenGraph meta tags, then the <title> tag.
type Page struct{}

func NewPage() Page { return Page{} }

// descriptionSelectors locate the posting body on boards without JSON-LD.
var descriptionSelectors = []string{
	".job-description",
	".jobs-description__content",
	"#jobDescriptionText",
	"[data-testid='job-description']",
	".posting-content",
	"main",
	"article",
}

func (Page) Extract(pageURL string, html []byte) (job.RawFields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return job.RawFields{}, fmt.Errorf("parse posting html: %w", err)
	}

	raw := extractJSONLD(doc)

	// og:title and the <title> tag usually embed "role - company"; split
	// whichever yields the missing halves. og:site_name is deliberately not
	// a company fallback: it names the job board, not the employer.
	if raw.Title == "" || raw.Company == "" {
		for _, candidate := range []string{
			metaContent(doc, `meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		} {
			title, company := splitTitleTag(candidate)
			if raw.Title == "" && title != "" {
				raw.Title = title
			}
			if raw.Company == "" && company != "" {
				raw.Company = company
			}
			if raw.Title != "" && raw.Company != "" {
				break
			}
		}
	}
	if raw.Description == "" {
		raw.Description = metaContent(doc, `meta[property="og:description"]`)
	}
	if raw.Description == "" {
		raw.Description = findDescription(doc)
	}

	return raw, nil
}

// extractJSONLD scans every ld+json script for a JobPosting node, including
// nodes nested in arrays and @graph containers.
func extractJSONLD(doc *goquery.Document) job.RawFields {
	var raw job.RawFields
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var node any
		if err := json.Unmarshal([]byte(s.Text()), &node); err != nil {
			return true // malformed block, keep scanning
		}
		if posting := findJobPosting(node); posting != nil {
			raw = fieldsFromPosting(posting)
			return false
		}
		return true
	})
	return raw
}

func findJobPosting(node any) map[string]any {
	switch v := node.(type) {
	case map[string]any:
		if isJobPosting(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findJobPosting(graph)
		}
	case []any:
		for _, item := range v {
			if posting := findJobPosting(item); posting != nil {
				return posting
			}
		}
	}
	return nil
}

// isJobPosting handles @type as either a string or a list of strings.
func isJobPosting(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func fieldsFromPosting(posting map[string]any) job.RawFields {
	raw := job.RawFields{
		Title:       str(posting["title"]),
		Company:     orgName(posting["hiringOrganization"]),
		Location:    locationName(posting["jobLocation"]),
		SalaryRange: salaryRange(posting["baseSalary"]),
	}
	if desc := str(posting["description"]); desc != "" {
		raw.Description = stripTags(desc)
	}
	return raw
}

func orgName(v any) string {
	switch org := v.(type) {
	case string:
		return org
	case map[string]any:
		return str(org["name"])
	}
	return ""
}

func locationName(v any) string {
	switch loc := v.(type) {
	case []any:
		if len(loc) > 0 {
			return locationName(loc[0])
		}
	case map[string]any:
		if addr, ok := loc["address"].(map[string]any); ok {
			parts := []string{}
			for _, k := range []string{"addressLocality", "addressRegion", "addressCountry"} {
				if p := str(addr[k]); p != "" {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				return strings.Join(parts, ", ")
			}
		}
		return str(loc["name"])
	case string:
		return loc
	}
	return ""
}

func salaryRange(v any) string {
	sal, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	currency := str(sal["currency"])
	value, ok := sal["value"].(map[string]any)
	if !ok {
		return ""
	}

	min, max := num(value["minValue"]), num(value["maxValue"])
	var rng string
	switch {
	case min != "" && max != "":
		rng = min + "-" + max
	case min != "":
		rng = min
	case max != "":
		rng = max
	default:
		rng = num(value["value"])
	}
	if rng == "" {
		return ""
	}
	if currency != "" {
		rng += " " + currency
	}
	if unit := str(value["unitText"]); unit != "" {
		rng += "/" + strings.ToLower(unit)
	}
	return rng
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func num(v any) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// splitTitleTag breaks a document title like
// "Software Engineer - Tech Corp | LinkedIn" into role and company.
func splitTitleTag(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ""
	}

	// Drop the trailing site name segment.
	if i := strings.LastIndex(title, " | "); i > 0 {
		title = strings.TrimSpace(title[:i])
	}

	for _, sep := range []string{" - ", " – ", " at "} {
		if i := strings.Index(title, sep); i > 0 {
			return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+len(sep):])
		}
	}
	return title, ""
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func findDescription(doc *goquery.Document) string {
	doc.Find("nav, footer, header, script, style, noscript, form").Remove()
	for _, selector := range descriptionSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			if text := cleanWhitespace(sel.First().Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// stripTags flattens an HTML fragment (JSON-LD descriptions are usually
// HTML) into plain text.
func stripTags(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return cleanWhitespace(fragment)
	}
	return cleanWhitespace(doc.Text())
}

func cleanWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
