package domain

import "strings"

// CharacterFilter narrows a character listing. Every dimension is optional;
// a nil field is simply not sent upstream.
type CharacterFilter struct {
	Name    *string
	Status  *string // alive | dead | unknown
	Species *string
	Type    *string
	Gender  *string // female | male | genderless | unknown
}

// Valid enum values accepted by the upstream filter.
var (
	Statuses = []string{"alive", "dead", "unknown"}
	Genders  = []string{"female", "male", "genderless", "unknown"}
)

// Opt returns a pointer to the trimmed value, or nil when it is blank or the
// catch-all "All" used by filter widgets.
func Opt(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "all") {
		return nil
	}
	return &value
}

// IsEmpty reports whether no dimension is set.
func (f CharacterFilter) IsEmpty() bool {
	return f.Name == nil && f.Status == nil && f.Species == nil && f.Type == nil && f.Gender == nil
}

// Normalize lowercases the enum dimensions and drops values the upstream
// schema does not know about.
func (f CharacterFilter) Normalize() CharacterFilter {
	f.Status = normalizeEnum(f.Status, Statuses)
	f.Gender = normalizeEnum(f.Gender, Genders)
	return f
}

// Variables renders the filter as GraphQL input, skipping nil dimensions.
func (f CharacterFilter) Variables() map[string]string {
	vars := make(map[string]string, 5)
	set := func(key string, v *string) {
		if v != nil {
			vars[key] = *v
		}
	}
	set("name", f.Name)
	set("status", f.Status)
	set("species", f.Species)
	set("type", f.Type)
	set("gender", f.Gender)
	return vars
}

func normalizeEnum(v *string, allowed []string) *string {
	if v == nil {
		return nil
	}
	lower := strings.ToLower(*v)
	for _, a := range allowed {
		if a == lower {
			return &lower
		}
	}
	return nil
}
