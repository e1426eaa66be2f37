// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package annotations

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVerseID indicates a verse identity string that cannot be parsed.
var ErrInvalidVerseID = errors.New("annotations: invalid verse id")

// VerseID builds the canonical "{book}_{chapter}_{verse}" identity. It is
// the primary key for every annotation lookup.
func VerseID(bookID string, chapter, verse int) string {
	return fmt.Sprintf("%s_%d_%d", bookID, chapter, verse)
}

// ChapterID builds the "{book}_{chapter}" token used by the reading
// progress store.
func ChapterID(bookID string, chapter int) string {
	return fmt.Sprintf("%s_%d", bookID, chapter)
}

// ParseVerseID splits a verse identity back into its components. Book
// identifiers must not contain the separator, so exactly three fields are
// required and the last two must be positive integers.
func ParseVerseID(id string) (bookID string, chapter, verse int, err error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] == "" {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidVerseID, id)
	}
	chapter, err = strconv.Atoi(parts[1])
	if err != nil || chapter < 1 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidVerseID, id)
	}
	verse, err = strconv.Atoi(parts[2])
	if err != nil || verse < 1 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidVerseID, id)
	}
	return parts[0], chapter, verse, nil
}
