// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package encyclopedia

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrDatasetUnavailable indicates the reference dataset could not be read.
var ErrDatasetUnavailable = errors.New("encyclopedia: dataset unavailable")

// =============================================================================
// REFERENCE INDEX
// =============================================================================

// snapshot is one immutable generation of the index. Reloads build a fresh
// snapshot and swap the pointer; an existing snapshot is never mutated.
type snapshot struct {
	version   int
	entries   []Entry
	locations []Location
	byID      map[string]Entry
	byName    map[string]Entry
	byAlias   map[string]Entry
}

// ReferenceIndex serves lookups over the reference and locations datasets.
// All read methods operate on the snapshot current at call time.
type ReferenceIndex struct {
	entriesPath   string
	locationsPath string
	log           *logrus.Logger

	mu   sync.RWMutex
	snap *snapshot

	watcher *datasetWatcher
}

// NewReferenceIndex builds the index from the dataset files. A missing or
// undecodable entries file yields an empty but usable index plus
// ErrDatasetUnavailable; a bad locations file is logged and skipped.
func NewReferenceIndex(entriesPath, locationsPath string, log *logrus.Logger) (*ReferenceIndex, error) {
	idx := &ReferenceIndex{
		entriesPath:   entriesPath,
		locationsPath: locationsPath,
		log:           log,
		snap:          buildSnapshot(nil, nil, 0),
	}

	snap, err := idx.loadSnapshot()
	if err != nil {
		return idx, err
	}
	idx.snap = snap
	return idx, nil
}

// loadSnapshot reads both dataset files and builds a fresh snapshot.
func (idx *ReferenceIndex) loadSnapshot() (*snapshot, error) {
	raw, err := os.ReadFile(idx.entriesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	var data Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	locations := idx.loadLocations()
	return buildSnapshot(data.Entries, locations, data.Version), nil
}

// loadLocations reads the locations dataset. Failures are non-fatal: the
// map feature degrades, the rest of the index stays functional.
func (idx *ReferenceIndex) loadLocations() []Location {
	raw, err := os.ReadFile(idx.locationsPath)
	if err != nil {
		idx.log.WithError(err).Warn("locations dataset unavailable")
		return nil
	}

	var data LocationsData
	if err := json.Unmarshal(raw, &data); err != nil {
		idx.log.WithError(err).Warn("locations dataset undecodable")
		return nil
	}
	return data.Locations
}

// buildSnapshot derives the lookup maps. On a lowercased name or alias
// collision the last entry wins.
func buildSnapshot(entries []Entry, locations []Location, version int) *snapshot {
	s := &snapshot{
		version:   version,
		entries:   entries,
		locations: locations,
		byID:      make(map[string]Entry, len(entries)),
		byName:    make(map[string]Entry, len(entries)),
		byAlias:   make(map[string]Entry),
	}
	for _, e := range entries {
		s.byID[e.ID] = e
		s.byName[strings.ToLower(e.Name)] = e
		for _, alias := range e.Aliases {
			s.byAlias[strings.ToLower(alias)] = e
		}
	}
	return s
}

// current returns the live snapshot.
func (idx *ReferenceIndex) current() *snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.snap
}

// Reload rebuilds the index from disk and swaps it in. On failure the
// previous snapshot stays live.
func (idx *ReferenceIndex) Reload() error {
	snap, err := idx.loadSnapshot()
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.snap = snap
	idx.mu.Unlock()

	idx.log.WithField("entries", len(snap.entries)).Info("reference index reloaded")
	return nil
}

// Version returns the dataset version of the live snapshot.
func (idx *ReferenceIndex) Version() int {
	return idx.current().version
}

// Entries returns every entry in dataset order.
func (idx *ReferenceIndex) Entries() []Entry {
	snap := idx.current()
	out := make([]Entry, len(snap.entries))
	copy(out, snap.entries)
	return out
}

// Locations returns every location in dataset order.
func (idx *ReferenceIndex) Locations() []Location {
	snap := idx.current()
	out := make([]Location, len(snap.locations))
	copy(out, snap.locations)
	return out
}

// EntryByID returns the entry with the given id.
func (idx *ReferenceIndex) EntryByID(id string) (Entry, bool) {
	e, ok := idx.current().byID[id]
	return e, ok
}

// Lookup resolves a word to an entry, case-insensitively: primary name
// first, then aliases.
func (idx *ReferenceIndex) Lookup(word string) (Entry, bool) {
	snap := idx.current()
	lowered := strings.ToLower(word)
	if e, ok := snap.byName[lowered]; ok {
		return e, true
	}
	e, ok := snap.byAlias[lowered]
	return e, ok
}

// Search returns the entries whose name, aliases or description contain the
// query, ignoring case and diacritics. An empty query returns the full
// collection.
func (idx *ReferenceIndex) Search(query string) []Entry {
	snap := idx.current()

	q := foldDiacritics(strings.TrimSpace(query))
	if q == "" {
		out := make([]Entry, len(snap.entries))
		copy(out, snap.entries)
		return out
	}

	var out []Entry
	for _, e := range snap.entries {
		if entryMatches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

// entryMatches reports whether the folded query occurs in the entry's name,
// aliases or description.
func entryMatches(e Entry, folded string) bool {
	if strings.Contains(foldDiacritics(e.Name), folded) {
		return true
	}
	for _, alias := range e.Aliases {
		if strings.Contains(foldDiacritics(alias), folded) {
			return true
		}
	}
	return strings.Contains(foldDiacritics(e.Description), folded)
}

// Filter returns the entries of one category, preserving dataset order.
func (idx *ReferenceIndex) Filter(category Category) []Entry {
	snap := idx.current()
	var out []Entry
	for _, e := range snap.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

// EntriesWithCoordinates returns the entries that can be placed on a map.
func (idx *ReferenceIndex) EntriesWithCoordinates() []Entry {
	snap := idx.current()
	var out []Entry
	for _, e := range snap.entries {
		if e.Coordinates != nil {
			out = append(out, e)
		}
	}
	return out
}

// LocationEntry resolves a location's encyclopediaId cross-reference.
// Dangling references report false, never an error.
func (idx *ReferenceIndex) LocationEntry(loc Location) (Entry, bool) {
	if loc.EncyclopediaID == "" {
		return Entry{}, false
	}
	return idx.EntryByID(loc.EncyclopediaID)
}

// =============================================================================
// DIACRITIC FOLDING
// =============================================================================

// foldDiacritics lowercases s and strips combining marks, so "Ierusalim"
// matches "ierusalim" and "sabat" matches "Șabat". The chain transformer
// keeps internal state, so it is built per call.
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return folded
}
