package cdpsrc

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
)

// Criteria is the match predicate configuration of spec.md §4.3.
type Criteria struct {
	URL        string
	Title      string
	URLRegex   string
	TitleRegex string
	Type       string
	Origin     string
	TargetID   string
	Parent     string

	urlRe   *regexp.Regexp
	titleRe *regexp.Regexp
}

// Compile validates and pre-compiles the regex fields. Invalid regexes fail
// fatally with a configuration error, per the ignore-list discipline of
// spec.md §4.4 applied symmetrically here.
func (c *Criteria) Compile() error {
	if c.URLRegex != "" {
		re, err := regexp.Compile(c.URLRegex)
		if err != nil {
			return err
		}
		c.urlRe = re
	}
	if c.TitleRegex != "" {
		re, err := regexp.Compile(c.TitleRegex)
		if err != nil {
			return err
		}
		c.titleRe = re
	}
	return nil
}

// Matches reports whether t satisfies every configured constraint in c.
// all is the full target list, needed to resolve Parent by id.
func Matches(c Criteria, t Target, all []Target) bool {
	if c.URL != "" && !strings.Contains(t.URL, c.URL) {
		return false
	}
	if c.Title != "" && !strings.Contains(t.Title, c.Title) {
		return false
	}
	if c.urlRe != nil && !c.urlRe.MatchString(t.URL) {
		return false
	}
	if c.titleRe != nil && !c.titleRe.MatchString(t.Title) {
		return false
	}
	if c.Type != "" && t.Type != c.Type {
		return false
	}
	if c.TargetID != "" && t.ID != c.TargetID {
		return false
	}
	if c.Origin != "" && origin(t.URL) != c.Origin {
		return false
	}
	if c.Parent != "" {
		parentURL := findParentURL(t, all)
		if !strings.Contains(parentURL, c.Parent) {
			return false
		}
	}
	return true
}

// Select returns the first matching target in a stable ordering (by id),
// per spec.md §4.3's "when multiple targets match, choose the first stable
// ordering (by id)".
func Select(c Criteria, all []Target) (Target, bool) {
	var candidates []Target
	for _, t := range all {
		if Matches(c, t, all) {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return Target{}, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	return candidates[0], true
}

// Describe renders a short human-readable summary of c's constraints, used
// as the "match description" field of the file logger's header (spec.md
// §4.6).
func (c Criteria) Describe() string {
	var parts []string
	if c.URL != "" {
		parts = append(parts, "url~="+c.URL)
	}
	if c.Title != "" {
		parts = append(parts, "title~="+c.Title)
	}
	if c.URLRegex != "" {
		parts = append(parts, "url=/"+c.URLRegex+"/")
	}
	if c.TitleRegex != "" {
		parts = append(parts, "title=/"+c.TitleRegex+"/")
	}
	if c.Type != "" {
		parts = append(parts, "type="+c.Type)
	}
	if c.Origin != "" {
		parts = append(parts, "origin="+c.Origin)
	}
	if c.TargetID != "" {
		parts = append(parts, "targetId="+c.TargetID)
	}
	if c.Parent != "" {
		parts = append(parts, "parent~="+c.Parent)
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, " ")
}

func origin(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	scheme := u.Scheme
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		return scheme + "://" + host
	}
	return scheme + "://" + host + ":" + port
}

func findParentURL(t Target, all []Target) string {
	if t.ParentID == "" {
		return ""
	}
	for _, o := range all {
		if o.ID == t.ParentID {
			return o.URL
		}
	}
	return ""
}
