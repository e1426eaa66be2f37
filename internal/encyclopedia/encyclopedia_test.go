// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package encyclopedia

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexubible/bibliacore/internal/kvstore"
	"github.com/nexubible/bibliacore/internal/logging"
)

func testEntries() []Entry {
	return []Entry{
		{
			ID:          "e1",
			Name:        "Ierusalim",
			Aliases:     []string{"Sion", "Cetatea lui David"},
			Category:    CategoryPlace,
			Description: "Cetatea sfântă a poporului ales.",
			Coordinates: &Coordinates{Latitude: 31.7683, Longitude: 35.2137},
		},
		{
			ID:          "e2",
			Name:        "Moise",
			Aliases:     []string{},
			Category:    CategoryPerson,
			Description: "Profetul care a scos poporul din Egipt.",
			RelatedVerses: []VerseReference{
				{Book: "Ieșirea", Chapter: 3, Verse: 1},
			},
		},
		{
			ID:          "e3",
			Name:        "Paștile",
			Aliases:     []string{"Pesah"},
			Category:    CategoryEvent,
			Description: "Sărbătoarea izbăvirii din robie.",
		},
	}
}

func writeDatasets(t *testing.T, entries []Entry, locations []Location) (string, string) {
	t.Helper()
	dir := t.TempDir()

	entriesPath := filepath.Join(dir, "encyclopedia_ro.json")
	raw, err := json.Marshal(Dataset{Version: 3, Entries: entries})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(entriesPath, raw, 0o600))

	locationsPath := filepath.Join(dir, "biblical_locations.json")
	raw, err = json.Marshal(LocationsData{Locations: locations})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(locationsPath, raw, 0o600))

	return entriesPath, locationsPath
}

func newTestIndex(t *testing.T, entries []Entry, locations []Location) *ReferenceIndex {
	t.Helper()
	entriesPath, locationsPath := writeDatasets(t, entries, locations)
	idx, err := NewReferenceIndex(entriesPath, locationsPath, logging.Discard())
	require.NoError(t, err)
	return idx
}

func TestLookupNameThenAlias(t *testing.T) {
	idx := newTestIndex(t, testEntries(), nil)

	e, ok := idx.Lookup("sion")
	require.True(t, ok)
	assert.Equal(t, "e1", e.ID)

	e, ok = idx.Lookup("IERUSALIM")
	require.True(t, ok)
	assert.Equal(t, "e1", e.ID)

	_, ok = idx.Lookup("necunoscut")
	assert.False(t, ok)
}

func TestLookupPrefersNameOverAlias(t *testing.T) {
	entries := testEntries()
	// Alias on one entry shadows another entry's name.
	entries[1].Aliases = []string{"Ierusalim"}
	idx := newTestIndex(t, entries, nil)

	e, ok := idx.Lookup("ierusalim")
	require.True(t, ok)
	assert.Equal(t, "e1", e.ID)
}

func TestNameCollisionLastWins(t *testing.T) {
	entries := append(testEntries(), Entry{
		ID:       "e4",
		Name:     "ierusalim",
		Category: CategoryPlace,
	})
	idx := newTestIndex(t, entries, nil)

	e, ok := idx.Lookup("Ierusalim")
	require.True(t, ok)
	assert.Equal(t, "e4", e.ID)
}

func TestSearchEmptyReturnsAll(t *testing.T) {
	idx := newTestIndex(t, testEntries(), nil)

	all := idx.Search("")
	assert.Len(t, all, 3)
	assert.Len(t, idx.Search("   "), 3)
}

func TestSearchMatchesNameAliasDescription(t *testing.T) {
	idx := newTestIndex(t, testEntries(), nil)

	byName := idx.Search("moise")
	require.Len(t, byName, 1)
	assert.Equal(t, "e2", byName[0].ID)

	byAlias := idx.Search("pesah")
	require.Len(t, byAlias, 1)
	assert.Equal(t, "e3", byAlias[0].ID)

	byDescription := idx.Search("egipt")
	require.Len(t, byDescription, 1)
	assert.Equal(t, "e2", byDescription[0].ID)
}

func TestSearchIgnoresDiacritics(t *testing.T) {
	idx := newTestIndex(t, testEntries(), nil)

	// "sfanta" matches "sfântă" in the description once folded.
	results := idx.Search("sfanta")
	require.Len(t, results, 1)
	assert.Equal(t, "e1", results[0].ID)

	results = idx.Search("Pastile")
	require.Len(t, results, 1)
	assert.Equal(t, "e3", results[0].ID)
}

func TestFilterPreservesOrder(t *testing.T) {
	entries := append(testEntries(), Entry{ID: "e5", Name: "Sinai", Category: CategoryPlace})
	idx := newTestIndex(t, entries, nil)

	places := idx.Filter(CategoryPlace)
	require.Len(t, places, 2)
	assert.Equal(t, "e1", places[0].ID)
	assert.Equal(t, "e5", places[1].ID)

	assert.Empty(t, idx.Filter(CategoryObject))
}

func TestEntriesWithCoordinates(t *testing.T) {
	idx := newTestIndex(t, testEntries(), nil)

	mapped := idx.EntriesWithCoordinates()
	require.Len(t, mapped, 1)
	assert.Equal(t, "e1", mapped[0].ID)
}

func TestLocationCrossReference(t *testing.T) {
	locations := []Location{
		{ID: "l1", Name: "Ierusalim", Latitude: 31.7, Longitude: 35.2, EncyclopediaID: "e1"},
		{ID: "l2", Name: "Loc uitat", EncyclopediaID: "no-such-entry"},
		{ID: "l3", Name: "Fără referință"},
	}
	idx := newTestIndex(t, testEntries(), locations)

	require.Len(t, idx.Locations(), 3)

	e, ok := idx.LocationEntry(locations[0])
	require.True(t, ok)
	assert.Equal(t, "Ierusalim", e.Name)

	// Dangling and absent references are tolerated silently.
	_, ok = idx.LocationEntry(locations[1])
	assert.False(t, ok)
	_, ok = idx.LocationEntry(locations[2])
	assert.False(t, ok)
}

func TestMissingEntriesDatasetYieldsEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	idx, err := NewReferenceIndex(
		filepath.Join(dir, "absent.json"),
		filepath.Join(dir, "absent_locations.json"),
		logging.Discard(),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)

	require.NotNil(t, idx)
	assert.Empty(t, idx.Entries())
	assert.Empty(t, idx.Search(""))
	_, ok := idx.Lookup("ierusalim")
	assert.False(t, ok)
}

func TestReloadSwapsSnapshot(t *testing.T) {
	entriesPath, locationsPath := writeDatasets(t, testEntries(), nil)
	idx, err := NewReferenceIndex(entriesPath, locationsPath, logging.Discard())
	require.NoError(t, err)
	require.Len(t, idx.Entries(), 3)
	assert.Equal(t, 3, idx.Version())

	updated := append(testEntries(), Entry{ID: "e9", Name: "Nazaret", Category: CategoryPlace})
	raw, err := json.Marshal(Dataset{Version: 4, Entries: updated})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(entriesPath, raw, 0o600))

	require.NoError(t, idx.Reload())
	assert.Len(t, idx.Entries(), 4)
	assert.Equal(t, 4, idx.Version())

	_, ok := idx.Lookup("nazaret")
	assert.True(t, ok)
}

func TestReloadFailureKeepsPreviousSnapshot(t *testing.T) {
	entriesPath, locationsPath := writeDatasets(t, testEntries(), nil)
	idx, err := NewReferenceIndex(entriesPath, locationsPath, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(entriesPath, []byte("{broken"), 0o600))
	require.Error(t, idx.Reload())

	assert.Len(t, idx.Entries(), 3)
	_, ok := idx.Lookup("moise")
	assert.True(t, ok)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	entriesPath, locationsPath := writeDatasets(t, testEntries(), nil)
	idx, err := NewReferenceIndex(entriesPath, locationsPath, logging.Discard())
	require.NoError(t, err)

	require.NoError(t, idx.Watch(50*time.Millisecond))
	defer idx.StopWatching()

	updated := append(testEntries(), Entry{ID: "e9", Name: "Nazaret", Category: CategoryPlace})
	raw, err := json.Marshal(Dataset{Version: 5, Entries: updated})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(entriesPath, raw, 0o600))

	assert.Eventually(t, func() bool {
		_, ok := idx.Lookup("nazaret")
		return ok
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCategoryDisplayNames(t *testing.T) {
	assert.Equal(t, "Persoane", CategoryPerson.DisplayName())
	assert.Equal(t, "Locuri", CategoryPlace.DisplayName())
	assert.Equal(t, "Evenimente", CategoryEvent.DisplayName())
	assert.Equal(t, "Concepte", CategoryConcept.DisplayName())
	assert.Equal(t, "Obiecte", CategoryObject.DisplayName())
	assert.Len(t, Categories(), 5)
}

func TestVerseReferenceDisplay(t *testing.T) {
	ref := VerseReference{Book: "Ieșirea", Chapter: 3, Verse: 1}
	assert.Equal(t, "Ieșirea 3:1", ref.Display())
}

// =============================================================================
// AI CACHE
// =============================================================================

func newTestCache(t *testing.T) *AICache {
	t.Helper()
	kv, err := kvstore.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return NewAICache(kv)
}

func TestAICacheMissThenHit(t *testing.T) {
	cache := newTestCache(t)

	_, ok := cache.Get("e1")
	assert.False(t, ok)

	require.NoError(t, cache.Save("e1", "explicație detaliată"))

	text, ok := cache.Get("e1")
	require.True(t, ok)
	assert.Equal(t, "explicație detaliată", text)
}

func TestAICacheLastWriteWins(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Save("e1", "prima versiune"))
	require.NoError(t, cache.Save("e1", "a doua versiune"))

	text, ok := cache.Get("e1")
	require.True(t, ok)
	assert.Equal(t, "a doua versiune", text)
}

func TestAICacheIsPerEntry(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Save("e1", "despre Ierusalim"))
	require.NoError(t, cache.Save("e2", "despre Moise"))

	text, ok := cache.Get("e2")
	require.True(t, ok)
	assert.Equal(t, "despre Moise", text)

	text, ok = cache.Get("e1")
	require.True(t, ok)
	assert.Equal(t, "despre Ierusalim", text)
}

func TestAICacheSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	kv, err := kvstore.Open(dir)
	require.NoError(t, err)
	cache := NewAICache(kv)
	require.NoError(t, cache.Save("e1", "persistat"))
	require.NoError(t, kv.Close())

	kv, err = kvstore.Open(dir)
	require.NoError(t, err)
	defer kv.Close()

	text, ok := NewAICache(kv).Get("e1")
	require.True(t, ok)
	assert.Equal(t, "persistat", text)
}
