// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package annotations owns the highlight and note collection.
//
// The store is the single owner of annotation state: every mutation goes
// through it, under one mutex, as remove-then-append plus an index update
// plus a persist — one logical step, so readers never observe a
// half-updated index. Reads are O(1) against the derived maps, never a
// scan of the collection.
package annotations

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nexubible/bibliacore/internal/kvstore"
)

// annotationsKey is the kv blob key for the serialized collection.
const annotationsKey = "bible_annotations"

// =============================================================================
// TYPES
// =============================================================================

// Kind distinguishes the two annotation flavors.
type Kind string

const (
	KindHighlight Kind = "highlight"
	KindNote      Kind = "note"
)

// HighlightColor is one of the five marker colors.
type HighlightColor string

const (
	ColorYellow HighlightColor = "yellow"
	ColorLime   HighlightColor = "lime"
	ColorPink   HighlightColor = "pink"
	ColorBlue   HighlightColor = "blue"
	ColorOrange HighlightColor = "orange"
)

// InkColor is the display color of a note's text.
type InkColor string

const (
	InkBlue InkColor = "blue"
	InkRed  InkColor = "red"
	InkGray InkColor = "gray"
)

// Annotation is one highlight or note attached to a verse.
//
// Color is present iff Kind is highlight; Content iff Kind is note.
// InkColor is only meaningful on notes.
type Annotation struct {
	ID        string         `json:"id"`
	VerseID   string         `json:"verse_id"`
	Kind      Kind           `json:"kind"`
	Color     HighlightColor `json:"color,omitempty"`
	Content   string         `json:"content,omitempty"`
	InkColor  InkColor       `json:"ink_color,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the annotation collection and its derived indices.
//
// Invariant: at most one highlight and at most one note exist per verse id.
// Mutations upsert by replacing, never append duplicates.
type Store struct {
	mu  sync.RWMutex
	all []Annotation

	// Derived indices, kept in sync incrementally on every mutation.
	highlightIndex map[string]HighlightColor
	noteIndex      map[string]string

	kv  *kvstore.Store
	log *logrus.Logger

	// dirty marks a failed persist; the next mutation retries the save.
	dirty bool
}

// NewStore loads the persisted collection and builds the indices. An
// unreadable blob yields an empty collection: in-memory state is
// authoritative from then on.
func NewStore(kv *kvstore.Store, log *logrus.Logger) *Store {
	s := &Store{
		kv:             kv,
		log:            log,
		highlightIndex: make(map[string]HighlightColor),
		noteIndex:      make(map[string]string),
	}

	var loaded []Annotation
	if ok, err := kv.GetJSON(annotationsKey, &loaded); err != nil {
		log.WithError(err).Warn("annotation blob unreadable, starting empty")
	} else if ok {
		s.all = loaded
	}
	s.rebuildIndexLocked()
	return s
}

// rebuildIndexLocked recomputes both indices from the collection. Only used
// at load time; mutations maintain the indices incrementally.
func (s *Store) rebuildIndexLocked() {
	s.highlightIndex = make(map[string]HighlightColor, len(s.all))
	s.noteIndex = make(map[string]string, len(s.all))
	for _, a := range s.all {
		switch a.Kind {
		case KindHighlight:
			if a.Color != "" {
				s.highlightIndex[a.VerseID] = a.Color
			}
		case KindNote:
			if a.Content != "" {
				s.noteIndex[a.VerseID] = a.Content
			}
		}
	}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// SetHighlight replaces any existing highlight on the verse with a fresh
// one in the given color.
func (s *Store) SetHighlight(verseID string, color HighlightColor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(verseID, KindHighlight)
	s.all = append(s.all, Annotation{
		ID:        uuid.New().String(),
		VerseID:   verseID,
		Kind:      KindHighlight,
		Color:     color,
		Timestamp: time.Now(),
	})
	s.highlightIndex[verseID] = color
	s.persistLocked()
}

// SetNote replaces any existing note on the verse. When ink is empty and a
// prior note exists, its ink color is preserved.
func (s *Store) SetNote(verseID, content string, ink InkColor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ink == "" {
		for _, a := range s.all {
			if a.VerseID == verseID && a.Kind == KindNote {
				ink = a.InkColor
				break
			}
		}
	}

	s.removeLocked(verseID, KindNote)
	s.all = append(s.all, Annotation{
		ID:        uuid.New().String(),
		VerseID:   verseID,
		Kind:      KindNote,
		Content:   content,
		InkColor:  ink,
		Timestamp: time.Now(),
	})
	s.noteIndex[verseID] = content
	s.persistLocked()
}

// SetNoteInkColor changes the ink of an existing note in place. A verse
// without a note is left untouched.
func (s *Store) SetNoteInkColor(verseID string, ink InkColor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.all {
		if s.all[i].VerseID == verseID && s.all[i].Kind == KindNote {
			s.all[i].InkColor = ink
			s.persistLocked()
			return
		}
	}
}

// Remove deletes the annotation of the given kind from the verse, if any.
func (s *Store) Remove(verseID string, kind Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(verseID, kind)
	switch kind {
	case KindHighlight:
		delete(s.highlightIndex, verseID)
	case KindNote:
		delete(s.noteIndex, verseID)
	}
	s.persistLocked()
}

// removeLocked drops matching annotations from the collection without
// touching the indices.
func (s *Store) removeLocked(verseID string, kind Kind) {
	kept := s.all[:0]
	for _, a := range s.all {
		if a.VerseID == verseID && a.Kind == kind {
			continue
		}
		kept = append(kept, a)
	}
	s.all = kept
}

// persistLocked serializes the whole collection. A failure is absorbed:
// in-memory state stays authoritative, a warning is logged, and the dirty
// flag makes the next mutation retry.
func (s *Store) persistLocked() {
	if err := s.kv.PutJSON(annotationsKey, s.all); err != nil {
		s.log.WithError(err).Warn("failed to persist annotations, will retry on next mutation")
		s.dirty = true
		return
	}
	s.dirty = false
}

// =============================================================================
// LOOKUPS
// =============================================================================

// HighlightColorFor returns the highlight color on a verse, if any. O(1).
func (s *Store) HighlightColorFor(verseID string) (HighlightColor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.highlightIndex[verseID]
	return c, ok
}

// Note returns the note text on a verse, if any. O(1).
func (s *Store) Note(verseID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.noteIndex[verseID]
	return n, ok
}

// NoteInkColor returns the ink color of the note on a verse, if any.
func (s *Store) NoteInkColor(verseID string) (InkColor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.all {
		if a.VerseID == verseID && a.Kind == KindNote {
			return a.InkColor, a.InkColor != ""
		}
	}
	return "", false
}

// HasAnnotation reports whether the verse carries a highlight or a note.
func (s *Store) HasAnnotation(verseID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.highlightIndex[verseID]; ok {
		return true
	}
	_, ok := s.noteIndex[verseID]
	return ok
}

// All returns a copy of the collection, newest last.
func (s *Store) All() []Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Annotation, len(s.all))
	copy(out, s.all)
	return out
}

// Dirty reports whether the last persist failed and a retry is pending.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}
