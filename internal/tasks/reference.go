package tasks

import (
	"fmt"
	"regexp"
	"sort"
)

// DefaultHost is the site that hosts task pages.
const DefaultHost = "codein.withgoogle.com"

// Shape identifies which URL form a reference was found in.
type Shape int

const (
	// ShapeCanonical is a /tasks/{id}/ link carrying the durable task ID.
	ShapeCanonical Shape = iota
	// ShapeLegacy is a /dashboard/task-instances/{id}/ link carrying a
	// per-claim instance ID that must be redirected to find the task.
	ShapeLegacy
)

func (s Shape) String() string {
	switch s {
	case ShapeCanonical:
		return "canonical"
	case ShapeLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("shape(%d)", int(s))
	}
}

// Reference is a task reference found in message text.
type Reference struct {
	Shape Shape
	ID    string
}

func (r Reference) String() string {
	return r.Shape.String() + ":" + r.ID
}

// Extractor finds task references in free text.
type Extractor struct {
	canonical *regexp.Regexp
	legacy    *regexp.Regexp
}

// NewExtractor builds an extractor for links on the given host.
// An empty host means DefaultHost.
func NewExtractor(host string) *Extractor {
	if host == "" {
		host = DefaultHost
	}
	h := regexp.QuoteMeta(host)
	return &Extractor{
		canonical: regexp.MustCompile(`https?://` + h + `/tasks/([0-9]+)/`),
		legacy:    regexp.MustCompile(`https?://` + h + `/dashboard/task-instances/([0-9]+)/?`),
	}
}

// Extract returns every reference in text, in the order the links appear.
// A repeated ID is dropped within one shape but kept across shapes.
func (e *Extractor) Extract(text string) []Reference {
	var found []match
	found = appendMatches(found, e.canonical, ShapeCanonical, text)
	found = appendMatches(found, e.legacy, ShapeLegacy, text)
	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	var refs []Reference
	for _, m := range found {
		refs = append(refs, m.ref)
	}
	return refs
}

// CanonicalID returns the task ID if rawURL contains a canonical task link.
func (e *Extractor) CanonicalID(rawURL string) (string, bool) {
	m := e.canonical.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

type match struct {
	pos int
	ref Reference
}

func appendMatches(found []match, re *regexp.Regexp, shape Shape, text string) []match {
	seen := make(map[string]bool)
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		id := text[loc[2]:loc[3]]
		if seen[id] {
			continue
		}
		seen[id] = true
		found = append(found, match{pos: loc[0], ref: Reference{Shape: shape, ID: id}})
	}
	return found
}
