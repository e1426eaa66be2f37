// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress tracks reading position and the visited-chapter set.
//
// Visiting a chapter is monotonic: once marked it is never unmarked short
// of a full data reset. The last reading position is a simple overwrite.
package progress

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nexubible/bibliacore/internal/annotations"
	"github.com/nexubible/bibliacore/internal/kvstore"
)

// Persisted kv keys.
const (
	visitedKey     = "visited_chapters"
	lastBookKey    = "last_book"
	lastChapterKey = "last_chapter"
)

// Position is the last reading location.
type Position struct {
	BookID  string `json:"book_id"`
	Chapter int    `json:"chapter"`
}

// Store owns the visited-chapter set and last position.
type Store struct {
	mu      sync.RWMutex
	visited map[string]struct{}

	kv  *kvstore.Store
	log *logrus.Logger
}

// NewStore loads persisted progress. Unreadable state starts empty.
func NewStore(kv *kvstore.Store, log *logrus.Logger) *Store {
	s := &Store{
		visited: make(map[string]struct{}),
		kv:      kv,
		log:     log,
	}

	var tokens []string
	if ok, err := kv.GetJSON(visitedKey, &tokens); err != nil {
		log.WithError(err).Warn("visited chapters unreadable, starting empty")
	} else if ok {
		for _, tok := range tokens {
			s.visited[tok] = struct{}{}
		}
	}
	return s
}

// MarkVisited records that the chapter has been opened. Idempotent; only a
// first visit triggers a persist.
func (s *Store) MarkVisited(bookID string, chapter int) {
	key := annotations.ChapterID(bookID, chapter)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visited[key]; ok {
		return
	}
	s.visited[key] = struct{}{}
	s.persistVisitedLocked()
}

// IsVisited reports whether the chapter has ever been opened.
func (s *Store) IsVisited(bookID string, chapter int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.visited[annotations.ChapterID(bookID, chapter)]
	return ok
}

// VisitedCount counts visited chapters of the book within [1, totalChapters].
// Out-of-range entries (from a dataset change) are never counted, so the
// result can never exceed totalChapters.
func (s *Store) VisitedCount(bookID string, totalChapters int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for ch := 1; ch <= totalChapters; ch++ {
		if _, ok := s.visited[annotations.ChapterID(bookID, ch)]; ok {
			count++
		}
	}
	return count
}

// SaveLastPosition overwrites the reading position.
func (s *Store) SaveLastPosition(bookID string, chapter int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Put(lastBookKey, []byte(bookID)); err != nil {
		s.log.WithError(err).Warn("failed to persist last book")
	}
	if err := s.kv.PutJSON(lastChapterKey, chapter); err != nil {
		s.log.WithError(err).Warn("failed to persist last chapter")
	}
}

// LastPosition returns the stored reading position. The bool is false when
// no position was ever saved. A stored chapter below 1 is clamped to 1.
func (s *Store) LastPosition() (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok, err := s.kv.Get(lastBookKey)
	if err != nil || !ok || len(book) == 0 {
		return Position{}, false
	}

	chapter := 0
	if _, err := s.kv.GetJSON(lastChapterKey, &chapter); err != nil {
		chapter = 0
	}
	if chapter < 1 {
		chapter = 1
	}
	return Position{BookID: string(book), Chapter: chapter}, true
}

// persistVisitedLocked serializes the set as a sorted-insensitive token
// list. Failures are absorbed with a warning; the set stays authoritative.
func (s *Store) persistVisitedLocked() {
	tokens := make([]string, 0, len(s.visited))
	for tok := range s.visited {
		tokens = append(tokens, tok)
	}
	if err := s.kv.PutJSON(visitedKey, tokens); err != nil {
		s.log.WithError(err).Warn("failed to persist visited chapters")
	}
}
