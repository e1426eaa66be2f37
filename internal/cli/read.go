// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nexubible/bibliacore/internal/annotations"
	"github.com/nexubible/bibliacore/internal/bible"
)

// highlightPainters maps annotation colors to terminal colors.
var highlightPainters = map[annotations.HighlightColor]*color.Color{
	annotations.ColorYellow: color.New(color.FgBlack, color.BgYellow),
	annotations.ColorLime:   color.New(color.FgBlack, color.BgGreen),
	annotations.ColorPink:   color.New(color.FgBlack, color.BgMagenta),
	annotations.ColorBlue:   color.New(color.FgBlack, color.BgBlue),
	annotations.ColorOrange: color.New(color.FgBlack, color.BgRed),
}

// readCmd shows one chapter, marks it visited and records the position.
// Without arguments it resumes from the last saved position.
func readCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "read [carte] [capitol]",
		Short: "Citește un capitol din Biblie",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			var bookID string
			chapter := 1
			switch len(args) {
			case 0:
				pos, ok := app.Progress.LastPosition()
				if !ok {
					return fmt.Errorf("nicio poziție salvată; folosiți: bibliacore read <carte> [capitol]")
				}
				bookID, chapter = pos.BookID, pos.Chapter
			case 1:
				bookID = args[0]
			case 2:
				bookID = args[0]
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return fmt.Errorf("capitol invalid: %q", args[1])
				}
				chapter = n
			}

			verses, err := app.Bible.Verses(bookID, chapter)
			if err != nil {
				return err
			}

			title := color.New(color.Bold)
			title.Printf("%s %d\n\n", bookID, chapter)

			for _, v := range verses {
				printVerse(app, v)
			}

			app.Progress.MarkVisited(bookID, chapter)
			app.Progress.SaveLastPosition(bookID, chapter)
			return nil
		},
	}
}

// printVerse renders one verse with its highlight and note markers.
func printVerse(app *App, v bible.Verse) {
	verseID := annotations.VerseID(v.BookID, v.Chapter, v.Verse)

	text := v.Text
	if hl, ok := app.Annotations.HighlightColorFor(verseID); ok {
		if painter, ok := highlightPainters[hl]; ok {
			text = painter.Sprint(text)
		}
	}
	fmt.Printf("%3d  %s\n", v.Verse, text)

	if note, ok := app.Annotations.Note(verseID); ok {
		color.New(color.Faint).Printf("     ✎ %s\n", note)
	}
}

// searchCmd scans every verse for a word.
func searchCmd(appOf func() *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [cuvânt]",
		Short: "Caută un cuvânt în tot textul biblic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			results := app.Bible.Search(args[0])
			if len(results) == 0 {
				fmt.Println("Niciun rezultat.")
				return nil
			}

			shown := results
			if limit > 0 && len(shown) > limit {
				shown = shown[:limit]
			}
			for _, r := range shown {
				color.New(color.Bold).Printf("%s  ", r.Reference())
				fmt.Println(r.Text)
			}
			if len(shown) < len(results) {
				fmt.Printf("... și încă %d rezultate\n", len(results)-len(shown))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 25, "numărul maxim de rezultate")
	return cmd
}

// progressCmd reports visited chapters per book.
func progressCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "progress [carte]",
		Short: "Arată progresul de citire",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			books := app.Bible.Books()
			if len(args) == 1 {
				b, err := app.Bible.Book(args[0])
				if err != nil {
					return err
				}
				books = []bible.Book{b}
			}

			for _, b := range books {
				visited := app.Progress.VisitedCount(b.ID, b.Chapters)
				if visited == 0 && len(args) == 0 {
					continue
				}
				fmt.Printf("%-30s %d/%d capitole\n", b.Name, visited, b.Chapters)
			}

			if pos, ok := app.Progress.LastPosition(); ok {
				fmt.Printf("\nUltima poziție: %s %d\n", pos.BookID, pos.Chapter)
			}
			return nil
		},
	}
}
