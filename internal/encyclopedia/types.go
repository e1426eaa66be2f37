// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package encyclopedia indexes the biblical reference dataset for fast
// name, alias and id lookups, and caches AI deep-dive answers.
package encyclopedia

import "fmt"

// =============================================================================
// DATASET SCHEMA
// =============================================================================

// Dataset mirrors the bundled reference JSON.
type Dataset struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Entry is one encyclopedia article.
type Entry struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Aliases        []string         `json:"aliases"`
	Category       Category         `json:"category"`
	Subcategory    string           `json:"subcategory,omitempty"`
	Description    string           `json:"description"`
	Significance   string           `json:"significance"`
	RelatedVerses  []VerseReference `json:"relatedVerses"`
	RelatedEntries []string         `json:"relatedEntries"`
	Coordinates    *Coordinates     `json:"coordinates,omitempty"`
	Timeline       string           `json:"timeline,omitempty"`
}

// Category classifies an entry.
type Category string

const (
	CategoryPerson  Category = "person"
	CategoryPlace   Category = "place"
	CategoryEvent   Category = "event"
	CategoryConcept Category = "concept"
	CategoryObject  Category = "object"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{CategoryPerson, CategoryPlace, CategoryEvent, CategoryConcept, CategoryObject}
}

// DisplayName returns the Romanian section title for the category.
func (c Category) DisplayName() string {
	switch c {
	case CategoryPerson:
		return "Persoane"
	case CategoryPlace:
		return "Locuri"
	case CategoryEvent:
		return "Evenimente"
	case CategoryConcept:
		return "Concepte"
	case CategoryObject:
		return "Obiecte"
	default:
		return string(c)
	}
}

// VerseReference points at one verse in the scripture dataset.
type VerseReference struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
}

// Display renders the "Book chapter:verse" citation.
func (r VerseReference) Display() string {
	return fmt.Sprintf("%s %d:%d", r.Book, r.Chapter, r.Verse)
}

// Coordinates is a geographic point.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// =============================================================================
// LOCATIONS SCHEMA
// =============================================================================

// LocationsData mirrors the bundled locations JSON.
type LocationsData struct {
	Locations []Location `json:"locations"`
}

// Location is one mappable biblical site. EncyclopediaID may reference a
// missing entry; unresolved references are skipped, not rejected.
type Location struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	KeyEvents      []string `json:"keyEvents"`
	EncyclopediaID string   `json:"encyclopediaId,omitempty"`
}
