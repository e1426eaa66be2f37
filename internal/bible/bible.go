// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bible loads the bundled scripture dataset and serves verses.
//
// The dataset is read-only and loaded once at startup; the service never
// mutates it. Book and chapter lookups return NotFound errors the caller
// can test with errors.Is.
package bible

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Source attribution for the bundled text.
const (
	SourceAttribution = "Biblia Ortodoxă Sinodală, Ediția Sfântului Sinod, 1914"
	SourceURL         = "https://archive.org/details/biblia-1914-v123"
	SourceLicense     = "Domeniu Public"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrDatasetUnavailable indicates the scripture file could not be read.
	ErrDatasetUnavailable = errors.New("bible: dataset unavailable")
	// ErrBookNotFound indicates an unknown book name.
	ErrBookNotFound = errors.New("bible: book not found")
	// ErrChapterNotFound indicates a chapter outside the book.
	ErrChapterNotFound = errors.New("bible: chapter not found")
)

// =============================================================================
// DATASET SCHEMA
// =============================================================================

// Dataset mirrors the bundled scripture JSON.
type Dataset struct {
	Name     string        `json:"name"`
	Edition  string        `json:"edition"`
	Year     int           `json:"year"`
	Language string        `json:"language"`
	Source   string        `json:"source"`
	License  string        `json:"license"`
	Books    []DatasetBook `json:"books"`
}

// DatasetBook is one book with its chapters keyed by chapter number as a
// string (a JSON object, not an array).
type DatasetBook struct {
	Name         string                    `json:"name"`
	FullName     string                    `json:"fullName"`
	Testament    string                    `json:"testament"`
	Chapters     map[string][]DatasetVerse `json:"chapters"`
	ChapterCount int                       `json:"chapterCount"`
}

// DatasetVerse is one verse line.
type DatasetVerse struct {
	Verse int    `json:"verse"`
	Text  string `json:"text"`
}

// =============================================================================
// SERVICE TYPES
// =============================================================================

// Testament buckets the canon.
type Testament string

const (
	TestamentOld              Testament = "old"
	TestamentNew              Testament = "new"
	TestamentDeuterocanonical Testament = "deuterocanonical"
)

// DisplayName returns the Romanian section title.
func (t Testament) DisplayName() string {
	switch t {
	case TestamentNew:
		return "Noul Testament"
	case TestamentDeuterocanonical:
		return "Cărți Deuterocanonice"
	default:
		return "Vechiul Testament"
	}
}

// Book is the reader-facing book summary.
type Book struct {
	ID        string
	Name      string
	Chapters  int
	Testament Testament
}

// Verse is one displayable verse with its identity components.
type Verse struct {
	BookID   string
	BookName string
	Chapter  int
	Verse    int
	Text     string
}

// SearchResult is one hit from a full-text word search.
type SearchResult struct {
	BookName string
	Chapter  int
	Verse    int
	Text     string
}

// Reference renders the "Book chapter:verse" citation.
func (r SearchResult) Reference() string {
	return fmt.Sprintf("%s %d:%d", r.BookName, r.Chapter, r.Verse)
}

// =============================================================================
// SERVICE
// =============================================================================

// Service serves the loaded scripture dataset.
type Service struct {
	data  *Dataset
	books []Book
}

// Load reads the dataset from path. A missing or undecodable file yields a
// service with a minimal fallback book list and ErrDatasetUnavailable, so
// the caller can keep the rest of the app functional.
func Load(path string) (*Service, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fallbackService(), fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	var data Dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return fallbackService(), fmt.Errorf("%w: %v", ErrDatasetUnavailable, err)
	}

	return New(&data), nil
}

// New builds a service over an already-decoded dataset.
func New(data *Dataset) *Service {
	books := make([]Book, 0, len(data.Books))
	for _, b := range data.Books {
		var testament Testament
		switch b.Testament {
		case "new":
			testament = TestamentNew
		case "deuterocanonical":
			testament = TestamentDeuterocanonical
		default:
			testament = TestamentOld
		}
		books = append(books, Book{
			ID:        b.Name,
			Name:      b.Name,
			Chapters:  b.ChapterCount,
			Testament: testament,
		})
	}
	return &Service{data: data, books: books}
}

// fallbackService returns a minimal book list when the dataset is missing.
func fallbackService() *Service {
	return &Service{
		books: []Book{
			{ID: "Facerea", Name: "Facerea", Chapters: 50, Testament: TestamentOld},
			{ID: "Psalmii", Name: "Psalmii", Chapters: 150, Testament: TestamentOld},
			{ID: "Matei", Name: "Matei", Chapters: 28, Testament: TestamentNew},
		},
	}
}

// Books returns the book list in dataset order.
func (s *Service) Books() []Book {
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

// Book returns the book summary by id.
func (s *Service) Book(bookID string) (Book, error) {
	for _, b := range s.books {
		if b.ID == bookID {
			return b, nil
		}
	}
	return Book{}, fmt.Errorf("%w: %q", ErrBookNotFound, bookID)
}

// Verses returns the verses of one chapter.
func (s *Service) Verses(bookID string, chapter int) ([]Verse, error) {
	if s.data == nil {
		return nil, ErrDatasetUnavailable
	}

	var book *DatasetBook
	for i := range s.data.Books {
		if s.data.Books[i].Name == bookID {
			book = &s.data.Books[i]
			break
		}
	}
	if book == nil {
		return nil, fmt.Errorf("%w: %q", ErrBookNotFound, bookID)
	}

	verses, ok := book.Chapters[strconv.Itoa(chapter)]
	if !ok {
		return nil, fmt.Errorf("%w: %s %d", ErrChapterNotFound, bookID, chapter)
	}

	out := make([]Verse, 0, len(verses))
	for _, v := range verses {
		out = append(out, Verse{
			BookID:   bookID,
			BookName: book.Name,
			Chapter:  chapter,
			Verse:    v.Verse,
			Text:     v.Text,
		})
	}
	return out, nil
}

// Search scans every verse for a case-insensitive substring match, in book
// order and ascending chapter order.
func (s *Service) Search(word string) []SearchResult {
	if s.data == nil || word == "" {
		return nil
	}
	lowered := strings.ToLower(word)

	var results []SearchResult
	for _, book := range s.data.Books {
		chapterKeys := make([]int, 0, len(book.Chapters))
		for key := range book.Chapters {
			if n, err := strconv.Atoi(key); err == nil {
				chapterKeys = append(chapterKeys, n)
			}
		}
		sort.Ints(chapterKeys)

		for _, ch := range chapterKeys {
			for _, v := range book.Chapters[strconv.Itoa(ch)] {
				if strings.Contains(strings.ToLower(v.Text), lowered) {
					results = append(results, SearchResult{
						BookName: book.Name,
						Chapter:  ch,
						Verse:    v.Verse,
						Text:     v.Text,
					})
				}
			}
		}
	}
	return results
}
