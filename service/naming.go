package service

import (
	"fmt"
	"regexp"

	"github.com/ortelius/griffon/model"
)

// rhNamingConventions are the known ways a first-party package renames an upstream project.
// Each %s is replaced by the quoted component name. Order matters: the first match wins.
var rhNamingConventions = []string{
	// collection and toolchain prefixes
	`^(?:devtoolset-\d+-|gcc-toolset-\d+-|mingw(?:32|64)?-|rh-[a-z0-9]+-)?%s$`,
	// compatibility packages
	`^compat-%s[\d.]*(?:-\d[\w.]*)?$`,
	// realtime kernel builds
	`^%s-rt$`,
	// virtualization builds
	`^%s-kvm(?:-rhev|-ma)?$`,
	// versioned or toolkit suffixed names
	`^%s(?:\d+(?:\.\d+)*|\d*gtk\d*)$`,
}

// NamingFilter matches candidate names against the naming conventions for one component name
type NamingFilter struct {
	name     string
	patterns []*regexp.Regexp
}

// NewNamingFilter compiles the conventions for name. Matching is case-insensitive.
func NewNamingFilter(name string) *NamingFilter {
	quoted := regexp.QuoteMeta(name)
	patterns := make([]*regexp.Regexp, 0, len(rhNamingConventions))
	for _, conv := range rhNamingConventions {
		patterns = append(patterns, regexp.MustCompile("(?i)"+fmt.Sprintf(conv, quoted)))
	}
	return &NamingFilter{name: name, patterns: patterns}
}

// Match returns the index of the first convention the candidate satisfies
func (f *NamingFilter) Match(candidate string) (int, bool) {
	for i, re := range f.patterns {
		if re.MatchString(candidate) {
			return i, true
		}
	}
	return -1, false
}

// MatchRHNaming reports which naming convention, if any, relates candidate to name
func MatchRHNaming(name, candidate string) (int, bool) {
	return NewNamingFilter(name).Match(candidate)
}

// FilterRHNaming keeps the components whose name follows one of the naming conventions for name
func FilterRHNaming(name string, comps []model.Component) []model.Component {
	return filterNamed(name, comps, func(c model.Component) string { return c.Name })
}

func filterNamed[T any](name string, items []T, nameOf func(T) string) []T {
	f := NewNamingFilter(name)
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := f.Match(nameOf(item)); ok {
			kept = append(kept, item)
		}
	}
	return kept
}
