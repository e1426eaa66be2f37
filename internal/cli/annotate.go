// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nexubible/bibliacore/internal/annotations"
)

// validHighlightColors are the accepted values for "annotate highlight".
var validHighlightColors = map[string]annotations.HighlightColor{
	"yellow": annotations.ColorYellow,
	"lime":   annotations.ColorLime,
	"pink":   annotations.ColorPink,
	"blue":   annotations.ColorBlue,
	"orange": annotations.ColorOrange,
}

// validInkColors are the accepted values for a note's ink.
var validInkColors = map[string]annotations.InkColor{
	"blue": annotations.InkBlue,
	"red":  annotations.InkRed,
	"gray": annotations.InkGray,
}

func annotateCmd(appOf func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Gestionează sublinierile și notițele",
	}
	cmd.AddCommand(annotateHighlightCmd(appOf))
	cmd.AddCommand(annotateNoteCmd(appOf))
	cmd.AddCommand(annotateRemoveCmd(appOf))
	cmd.AddCommand(annotateListCmd(appOf))
	return cmd
}

// parseVerseArgs converts carte/capitol/verset arguments into a verse id.
func parseVerseArgs(args []string) (string, error) {
	chapter, err := strconv.Atoi(args[1])
	if err != nil || chapter < 1 {
		return "", fmt.Errorf("capitol invalid: %q", args[1])
	}
	verse, err := strconv.Atoi(args[2])
	if err != nil || verse < 1 {
		return "", fmt.Errorf("verset invalid: %q", args[2])
	}
	return annotations.VerseID(args[0], chapter, verse), nil
}

func annotateHighlightCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "highlight [carte] [capitol] [verset] [culoare]",
		Short: "Subliniază un verset (yellow, lime, pink, blue, orange)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			verseID, err := parseVerseArgs(args)
			if err != nil {
				return err
			}
			hl, ok := validHighlightColors[strings.ToLower(args[3])]
			if !ok {
				return fmt.Errorf("culoare necunoscută: %q", args[3])
			}

			app.Annotations.SetHighlight(verseID, hl)
			fmt.Printf("Subliniat %s %s %s cu %s.\n", args[0], args[1], args[2], args[3])
			return nil
		},
	}
}

func annotateNoteCmd(appOf func() *App) *cobra.Command {
	var ink string

	cmd := &cobra.Command{
		Use:   "note [carte] [capitol] [verset] [text...]",
		Short: "Adaugă sau înlocuiește notița unui verset",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			verseID, err := parseVerseArgs(args)
			if err != nil {
				return err
			}

			var inkColor annotations.InkColor
			if ink != "" {
				parsed, ok := validInkColors[strings.ToLower(ink)]
				if !ok {
					return fmt.Errorf("cerneală necunoscută: %q", ink)
				}
				inkColor = parsed
			}

			content := strings.Join(args[3:], " ")
			app.Annotations.SetNote(verseID, content, inkColor)
			fmt.Printf("Notiță salvată pentru %s %s:%s.\n", args[0], args[1], args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&ink, "ink", "", "culoarea cernelii (blue, red, gray)")
	return cmd
}

func annotateRemoveCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [carte] [capitol] [verset] [highlight|note]",
		Short: "Șterge o subliniere sau o notiță",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			verseID, err := parseVerseArgs(args)
			if err != nil {
				return err
			}

			var kind annotations.Kind
			switch strings.ToLower(args[3]) {
			case "highlight":
				kind = annotations.KindHighlight
			case "note":
				kind = annotations.KindNote
			default:
				return fmt.Errorf("tip necunoscut: %q (highlight sau note)", args[3])
			}

			app.Annotations.Remove(verseID, kind)
			fmt.Printf("Șters %s pentru %s %s:%s.\n", args[3], args[0], args[1], args[2])
			return nil
		},
	}
}

func annotateListCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Listează toate adnotările",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			all := app.Annotations.All()
			if len(all) == 0 {
				fmt.Println("Nicio adnotare.")
				return nil
			}

			for _, a := range all {
				book, chapter, verse, err := annotations.ParseVerseID(a.VerseID)
				if err != nil {
					continue
				}
				ref := fmt.Sprintf("%s %d:%d", book, chapter, verse)

				switch a.Kind {
				case annotations.KindHighlight:
					painter, ok := highlightPainters[a.Color]
					if !ok {
						painter = color.New(color.Bold)
					}
					fmt.Printf("%s  %s\n", ref, painter.Sprintf("subliniere %s", a.Color))
				case annotations.KindNote:
					fmt.Printf("%s  ✎ %s\n", ref, a.Content)
				}
			}
			return nil
		},
	}
}
