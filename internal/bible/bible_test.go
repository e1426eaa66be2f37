// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package bible

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset() *Dataset {
	return &Dataset{
		Name:     "Biblia Ortodoxă",
		Edition:  "Sinodală",
		Year:     1914,
		Language: "ro",
		Books: []DatasetBook{
			{
				Name:         "Facerea",
				FullName:     "Cartea Facerii",
				Testament:    "old",
				ChapterCount: 2,
				Chapters: map[string][]DatasetVerse{
					"1": {
						{Verse: 1, Text: "La început a făcut Dumnezeu cerul și pământul."},
						{Verse: 2, Text: "Și pământul era netocmit și gol."},
					},
					"2": {
						{Verse: 1, Text: "Așa s-au săvârșit cerul și pământul."},
					},
				},
			},
			{
				Name:         "Matei",
				FullName:     "Sfânta Evanghelie după Matei",
				Testament:    "new",
				ChapterCount: 1,
				Chapters: map[string][]DatasetVerse{
					"1": {
						{Verse: 1, Text: "Cartea neamului lui Iisus Hristos."},
					},
				},
			},
			{
				Name:         "Tobit",
				FullName:     "Cartea lui Tobit",
				Testament:    "deuterocanonical",
				ChapterCount: 1,
				Chapters: map[string][]DatasetVerse{
					"1": {
						{Verse: 1, Text: "Cartea faptelor lui Tobit."},
					},
				},
			},
		},
	}
}

func TestBooksOrderAndTestaments(t *testing.T) {
	svc := New(testDataset())

	books := svc.Books()
	require.Len(t, books, 3)
	assert.Equal(t, "Facerea", books[0].ID)
	assert.Equal(t, TestamentOld, books[0].Testament)
	assert.Equal(t, TestamentNew, books[1].Testament)
	assert.Equal(t, TestamentDeuterocanonical, books[2].Testament)
	assert.Equal(t, 2, books[0].Chapters)
}

func TestVerses(t *testing.T) {
	svc := New(testDataset())

	verses, err := svc.Verses("Facerea", 1)
	require.NoError(t, err)
	require.Len(t, verses, 2)
	assert.Equal(t, "Facerea", verses[0].BookID)
	assert.Equal(t, 1, verses[0].Chapter)
	assert.Equal(t, 1, verses[0].Verse)
	assert.Contains(t, verses[0].Text, "La început")
}

func TestVersesNotFound(t *testing.T) {
	svc := New(testDataset())

	_, err := svc.Verses("Apocalipsa", 1)
	assert.ErrorIs(t, err, ErrBookNotFound)

	_, err = svc.Verses("Facerea", 99)
	assert.ErrorIs(t, err, ErrChapterNotFound)
}

func TestSearchCaseInsensitiveInOrder(t *testing.T) {
	svc := New(testDataset())

	results := svc.Search("PĂMÂNTUL")
	require.Len(t, results, 3)
	// Chapter order within the book, books in dataset order.
	assert.Equal(t, 1, results[0].Chapter)
	assert.Equal(t, 1, results[0].Verse)
	assert.Equal(t, 1, results[1].Chapter)
	assert.Equal(t, 2, results[1].Verse)
	assert.Equal(t, 2, results[2].Chapter)
	assert.Equal(t, "Facerea 2:1", results[2].Reference())
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := New(testDataset())
	assert.Empty(t, svc.Search(""))
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	svc, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)

	// Fallback keeps a usable book list but no verse content.
	require.NotNil(t, svc)
	assert.NotEmpty(t, svc.Books())
	_, verr := svc.Verses("Facerea", 1)
	assert.ErrorIs(t, verr, ErrDatasetUnavailable)
}

func TestLoadMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bible.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	svc, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatasetUnavailable)
	assert.NotEmpty(t, svc.Books())
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bible.json")
	raw, err := json.Marshal(testDataset())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	svc, err := Load(path)
	require.NoError(t, err)

	verses, err := svc.Verses("Matei", 1)
	require.NoError(t, err)
	require.Len(t, verses, 1)
	assert.Contains(t, verses[0].Text, "Iisus Hristos")
}

func TestTestamentDisplayNames(t *testing.T) {
	assert.Equal(t, "Vechiul Testament", TestamentOld.DisplayName())
	assert.Equal(t, "Noul Testament", TestamentNew.DisplayName())
	assert.Equal(t, "Cărți Deuterocanonice", TestamentDeuterocanonical.DisplayName())
}

func TestBookLookup(t *testing.T) {
	svc := New(testDataset())

	b, err := svc.Book("Tobit")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Chapters)

	_, err = svc.Book("Inexistent")
	assert.True(t, errors.Is(err, ErrBookNotFound))
}
