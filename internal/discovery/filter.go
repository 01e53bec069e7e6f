package discovery

import (
	"path"
	"strings"

	"uirunner/internal/domain"
)

// Filter selects test cases by Test Case ID pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterCases keeps the cases whose ID matches pattern, in their original order.
// Supports wildcard patterns like "TC*" or "*login*"; a pattern without
// wildcards matches any ID containing it.
func (f *Filter) FilterCases(cases []domain.TestCase, pattern string) []domain.TestCase {
	if pattern == "" {
		return cases
	}

	filtered := make([]domain.TestCase, 0, len(cases))
	for _, tc := range cases {
		if f.Match(tc.ID, pattern) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// Match reports whether id matches pattern
func (f *Filter) Match(id, pattern string) bool {
	if pattern == "" {
		return true
	}

	// path.Match handles * and ? but also treats "/" specially,
	// which never matters for a case ID unless the ID contains one
	if matched, err := path.Match(pattern, id); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(id, pattern)
	}

	// Fall back to matching the literal parts in order, so "*User*Test"
	// still matches IDs with slashes or other separators in them
	parts := strings.Split(pattern, "*")
	rest := id
	nonEmpty := false
	for i, part := range parts {
		if part == "" {
			continue
		}
		if strings.Contains(part, "?") {
			return false
		}
		nonEmpty = true
		idx := strings.Index(rest, part)
		if idx < 0 || (i == 0 && idx != 0) {
			return false
		}
		rest = rest[idx+len(part):]
	}
	if !nonEmpty {
		return true
	}
	if last := parts[len(parts)-1]; last != "" && !strings.HasSuffix(id, last) {
		return false
	}
	return true
}
