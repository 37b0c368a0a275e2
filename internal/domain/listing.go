package domain

import (
	"sort"
	"strings"
)

// SortOrder orders a character listing by name.
type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" / "desc" (any case). Anything else means
// "keep upstream order".
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc":
		return SortAsc
	case "desc":
		return SortDesc
	default:
		return SortNone
	}
}

// SortByName sorts characters case-insensitively by name, in place.
// Ties keep their upstream order.
func SortByName(chars []Character, order SortOrder) {
	if order == SortNone {
		return
	}
	sort.SliceStable(chars, func(i, j int) bool {
		a := strings.ToLower(chars[i].Name)
		b := strings.ToLower(chars[j].Name)
		if order == SortDesc {
			return a > b
		}
		return a < b
	})
}

// StarredFilter selects characters by favorite state.
type StarredFilter string

const (
	StarredAll    StarredFilter = "all"
	StarredOnly   StarredFilter = "starred"
	StarredOthers StarredFilter = "others"
)

// ParseStarredFilter defaults to StarredAll for unknown input.
func ParseStarredFilter(s string) StarredFilter {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "starred":
		return StarredOnly
	case "others":
		return StarredOthers
	default:
		return StarredAll
	}
}

// FilterStarred keeps the characters matching the starred filter. The input
// slice is not modified.
func FilterStarred(chars []Character, f StarredFilter, isFavorite func(id string) bool) []Character {
	if f == StarredAll || isFavorite == nil {
		return chars
	}
	out := make([]Character, 0, len(chars))
	for _, c := range chars {
		fav := isFavorite(c.ID)
		if (f == StarredOnly && fav) || (f == StarredOthers && !fav) {
			out = append(out, c)
		}
	}
	return out
}
