package events

import "regexp"

// IgnoreList is a set of compiled regexes; a location whose file matches
// any of them is skipped during frame selection (spec.md §4.4.1).
type IgnoreList struct {
	patterns []*regexp.Regexp
}

// NewIgnoreList compiles patterns, failing fatally (a configuration error,
// not a runtime one) on the first invalid regex, per spec.md §4.4.1.
func NewIgnoreList(patterns []string) (*IgnoreList, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return &IgnoreList{patterns: compiled}, nil
}

// Ignored reports whether file matches any configured pattern.
func (l *IgnoreList) Ignored(file string) bool {
	if l == nil {
		return false
	}
	for _, re := range l.patterns {
		if re.MatchString(file) {
			return true
		}
	}
	return false
}
