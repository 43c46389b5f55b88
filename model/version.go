package model

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	version "github.com/hashicorp/go-version"
)

var (
	digitGroups = regexp.MustCompile(`\d+`)
	archSuffix  = regexp.MustCompile(`[-_](x86_64|amd64|i686)$`)
)

// ToolVersion extracts a comparable version from a tag or directory name
// such as "GE-Proton9-1" (9.1) or "lutris-GE-Proton8-26-x86_64" (8.26).
func ToolVersion(name string) (*version.Version, error) {
	trimmed := archSuffix.ReplaceAllString(strings.TrimSpace(name), "")
	groups := digitGroups.FindAllString(trimmed, -1)
	if len(groups) == 0 {
		return nil, fmt.Errorf("no version number in %q", name)
	}
	v, err := version.NewVersion(strings.Join(groups, "."))
	if err != nil {
		return nil, fmt.Errorf("invalid version in %q: %w", name, err)
	}
	return v, nil
}

// SortNewestFirst orders names by descending tool version. Names without a
// version number go last, alphabetically.
func SortNewestFirst(names []string) {
	parsed := make(map[string]*version.Version, len(names))
	for _, n := range names {
		if v, err := ToolVersion(n); err == nil {
			parsed[n] = v
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		vi, okI := parsed[names[i]]
		vj, okJ := parsed[names[j]]
		switch {
		case okI && okJ:
			if !vi.Equal(vj) {
				return vi.GreaterThan(vj)
			}
			return names[i] < names[j]
		case okI != okJ:
			return okI
		default:
			return names[i] < names[j]
		}
	})
}
