// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nexubible/bibliacore/internal/util"
)

// Input bounds for interpolated free text.
const (
	// maxVerseRunes bounds verse text in summary/explanation prompts.
	maxVerseRunes = 500

	// maxContextRunes bounds verse/description text in context prompts.
	maxContextRunes = 300
)

// =============================================================================
// PAYLOAD TYPES
// =============================================================================

// DictionaryEntry is the answer to WordDefinition.
type DictionaryEntry struct {
	Word            string `json:"word"`
	Definition      string `json:"definition"`
	BiblicalContext string `json:"biblicalContext"`
}

// WordExplanation is the answer to WordInContext.
type WordExplanation struct {
	Word             string `json:"word"`
	Meaning          string `json:"meaning"`
	OriginalLanguage string `json:"originalLanguage"`
	Explanation      string `json:"explanation"`
}

// Perspective is one character's view in EventPerspectives.
type Perspective struct {
	Character string `json:"character"`
	Insight   string `json:"insight"`
}

// =============================================================================
// OPERATIONS
// =============================================================================

// WordDefinition explains a biblical word in Romanian.
func (c *Client) WordDefinition(ctx context.Context, word string) (DictionaryEntry, error) {
	safeWord := sanitize(word)
	prompt := fmt.Sprintf(`Explică cuvântul biblic "%s" în limba română. Răspunde doar cu JSON valid în formatul:
{"word": "%s", "definition": "definiția aici", "biblicalContext": "context biblic aici"}`, safeWord, safeWord)

	var entry DictionaryEntry
	if err := c.generateJSON(ctx, prompt, &entry); err != nil {
		return DictionaryEntry{}, err
	}
	return entry, nil
}

// WordInContext explains a word as used in one specific verse.
func (c *Client) WordInContext(ctx context.Context, word, verseText, verseRef string) (WordExplanation, error) {
	safeWord := sanitize(word)
	safeVerse := sanitize(util.PrefixRunes(verseText, maxContextRunes))
	safeRef := sanitize(verseRef)

	prompt := fmt.Sprintf(`Explică cuvântul "%s" așa cum apare în versetul biblic: "%s" (%s).
Răspunde în limba română doar cu JSON valid:
{"word": "%s", "meaning": "sensul cuvântului în context", "originalLanguage": "cuvântul original în greacă/ebraică dacă se cunoaște, altfel gol", "explanation": "explicație mai detaliată a cuvântului în contextul biblic"}`,
		safeWord, safeVerse, safeRef, safeWord)

	var explanation WordExplanation
	if err := c.generateJSON(ctx, prompt, &explanation); err != nil {
		return WordExplanation{}, err
	}
	return explanation, nil
}

// VerseExplanation returns a short plain-text explanation of a verse.
func (c *Client) VerseExplanation(ctx context.Context, verseText, verseRef string) (string, error) {
	safeText := sanitize(util.PrefixRunes(verseText, maxVerseRunes))
	safeRef := sanitize(verseRef)

	prompt := fmt.Sprintf(`Explică pe scurt versetul biblic %s: "%s".
Scrie în limba română, maxim 3-4 propoziții. Include contextul biblic și semnificația spirituală. Nu folosi format JSON, scrie doar text simplu.`,
		safeRef, safeText)

	return c.generate(ctx, prompt)
}

// EntryDeepDive returns detailed plain text about an encyclopedia entry.
func (c *Client) EntryDeepDive(ctx context.Context, name, category, description string) (string, error) {
	safeName := sanitize(name)
	safeDesc := sanitize(util.PrefixRunes(description, maxContextRunes))

	prompt := fmt.Sprintf(`Oferă informații detaliate despre "%s" din perspectivă biblică.
Categorie: %s. Context: %s.
Scrie în limba română, 4-6 propoziții. Include detalii istorice, teologice și semnificația spirituală.
Nu folosi format JSON, scrie doar text simplu.`,
		safeName, category, safeDesc)

	return c.generate(ctx, prompt)
}

// VerseSummary returns a two-sentence plain-text summary of a verse.
func (c *Client) VerseSummary(ctx context.Context, verseText string) (string, error) {
	safeText := sanitize(util.PrefixRunes(verseText, maxVerseRunes))
	prompt := fmt.Sprintf(`Fă un rezumat scurt (max 2 propoziții) în limba română pentru acest verset biblic: "%s"`, safeText)
	return c.generate(ctx, prompt)
}

// EventPerspectives returns three character perspectives on a verse or event.
func (c *Client) EventPerspectives(ctx context.Context, verseRef string) ([]Perspective, error) {
	safeRef := sanitize(verseRef)
	prompt := fmt.Sprintf(`Pentru versetul sau evenimentul biblic "%s", oferă 3 perspective diferite de la personaje implicate. Scrie totul în limba română. Răspunde doar cu JSON valid:
[{"character": "nume personaj", "insight": "perspectiva aici"}, ...]`, safeRef)

	var perspectives []Perspective
	if err := c.generateJSON(ctx, prompt, &perspectives); err != nil {
		return nil, err
	}
	return perspectives, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// generateJSON runs a prompt and decodes the fence-stripped answer into out.
func (c *Client) generateJSON(ctx context.Context, prompt string, out any) error {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		return err
	}
	cleaned := extractJSON(text)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &Error{Kind: KindUnexpectedFormat, Message: "Nu s-a putut procesa răspunsul AI.", cause: err}
	}
	return nil
}

// extractJSON strips markdown code-fence wrappers the model sometimes adds.
func extractJSON(text string) string {
	cleaned := strings.ReplaceAll(text, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// sanitize keeps free text safe inside a JSON-producing prompt: backslashes
// stripped, double quotes softened to single, surrounding space trimmed.
func sanitize(input string) string {
	s := strings.ReplaceAll(input, `\`, "")
	s = strings.ReplaceAll(s, `"`, "'")
	return strings.TrimSpace(s)
}
