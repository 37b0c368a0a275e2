package domain

// Character is a read-only record from the Rick and Morty API.
//
// It is NOT owned by this service: the persisted-state layer either stores a
// verbatim snapshot (records mode) or only the ID.
type Character struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is unique per source API. Example: "1"
	ID string `json:"id" yaml:"id"`

	Name string `json:"name" yaml:"name"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	// Status is one of Alive, Dead, unknown.
	Status  string `json:"status" yaml:"status"`
	Species string `json:"species" yaml:"species"`

	// Type is free text and often empty.
	Type string `json:"type" yaml:"type"`

	// Gender is one of Female, Male, Genderless, unknown.
	Gender string `json:"gender" yaml:"gender"`

	Origin   Place  `json:"origin" yaml:"origin"`
	Location Place  `json:"location" yaml:"location"`
	Image    string `json:"image" yaml:"image"`

	Episode []Episode `json:"episode,omitempty" yaml:"episode,omitempty"`

	// Created is the API's ISO-8601 creation timestamp, kept as text.
	Created string `json:"created" yaml:"created"`
}

// Place is the origin or last known location of a character.
type Place struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Dimension string `json:"dimension" yaml:"dimension"`
}

// Episode is an episode reference. Characters is only populated by the
// episodes listing.
type Episode struct {
	ID         string      `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	AirDate    string      `json:"air_date,omitempty" yaml:"air_date,omitempty"`
	Code       string      `json:"episode,omitempty" yaml:"episode,omitempty"`
	Characters []Character `json:"characters,omitempty" yaml:"characters,omitempty"`
	Created    string      `json:"created,omitempty" yaml:"created,omitempty"`
}

// Location is a full location record from the locations listing.
type Location struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Dimension string      `json:"dimension"`
	Residents []Character `json:"residents,omitempty"`
	Created   string      `json:"created"`
}

// Info is the pagination block returned with every list query.
type Info struct {
	Count int  `json:"count"`
	Pages int  `json:"pages"`
	Next  *int `json:"next"`
	Prev  *int `json:"prev"`
}
