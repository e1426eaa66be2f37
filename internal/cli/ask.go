// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nexubible/bibliacore/internal/bible"
	"github.com/nexubible/bibliacore/internal/gemini"
)

func askCmd(appOf func() *App) *cobra.Command {
	var withRetry bool

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Explicații AI pentru cuvinte, versete și articole",
	}
	cmd.PersistentFlags().BoolVar(&withRetry, "retry", false, "reîncearcă automat erorile temporare")

	retryOf := func() *gemini.RetryPolicy {
		if !withRetry {
			return nil
		}
		return gemini.NewRetryPolicy(gemini.DefaultMaxAttempts, nil)
	}

	cmd.AddCommand(askDefineCmd(appOf, retryOf))
	cmd.AddCommand(askContextCmd(appOf, retryOf))
	cmd.AddCommand(askExplainCmd(appOf, retryOf))
	cmd.AddCommand(askDeepDiveCmd(appOf, retryOf))
	cmd.AddCommand(askSummaryCmd(appOf, retryOf))
	cmd.AddCommand(askPerspectivesCmd(appOf, retryOf))
	return cmd
}

type retryFunc func() *gemini.RetryPolicy

// runAI executes fn, optionally under the retry policy.
func runAI(policy *gemini.RetryPolicy, fn func(context.Context) error) error {
	ctx := context.Background()
	if policy == nil {
		return fn(ctx)
	}
	return policy.Do(ctx, fn)
}

// fetchVerse loads one verse for the AI verse operations.
func fetchVerse(app *App, args []string) (bible.Verse, string, error) {
	chapter, err := strconv.Atoi(args[1])
	if err != nil || chapter < 1 {
		return bible.Verse{}, "", fmt.Errorf("capitol invalid: %q", args[1])
	}
	verseNum, err := strconv.Atoi(args[2])
	if err != nil || verseNum < 1 {
		return bible.Verse{}, "", fmt.Errorf("verset invalid: %q", args[2])
	}

	verses, err := app.Bible.Verses(args[0], chapter)
	if err != nil {
		return bible.Verse{}, "", err
	}
	for _, v := range verses {
		if v.Verse == verseNum {
			ref := fmt.Sprintf("%s %d:%d", v.BookName, v.Chapter, v.Verse)
			return v, ref, nil
		}
	}
	return bible.Verse{}, "", fmt.Errorf("versetul %s %d:%d nu există", args[0], chapter, verseNum)
}

func askDefineCmd(appOf func() *App, retryOf retryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "define [cuvânt]",
		Short: "Definește un cuvânt biblic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			var entry gemini.DictionaryEntry
			err := runAI(retryOf(), func(ctx context.Context) error {
				var err error
				entry, err = app.AI.WordDefinition(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}

			color.New(color.Bold).Println(entry.Word)
			fmt.Printf("\n%s\n", entry.Definition)
			if entry.BiblicalContext != "" {
				fmt.Printf("\nContext biblic: %s\n", entry.BiblicalContext)
			}
			return nil
		},
	}
}

func askContextCmd(appOf func() *App, retryOf retryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "context [cuvânt] [carte] [capitol] [verset]",
		Short: "Explică un cuvânt în contextul unui verset",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			v, ref, err := fetchVerse(app, args[1:])
			if err != nil {
				return err
			}

			var explanation gemini.WordExplanation
			err = runAI(retryOf(), func(ctx context.Context) error {
				var err error
				explanation, err = app.AI.WordInContext(ctx, args[0], v.Text, ref)
				return err
			})
			if err != nil {
				return err
			}

			color.New(color.Bold).Printf("%s în %s\n", explanation.Word, ref)
			fmt.Printf("\nSens: %s\n", explanation.Meaning)
			if explanation.OriginalLanguage != "" {
				fmt.Printf("Limba originală: %s\n", explanation.OriginalLanguage)
			}
			fmt.Printf("\n%s\n", explanation.Explanation)
			return nil
		},
	}
}

func askExplainCmd(appOf func() *App, retryOf retryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [carte] [capitol] [verset]",
		Short: "Explică un verset",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			v, ref, err := fetchVerse(app, args)
			if err != nil {
				return err
			}

			var text string
			err = runAI(retryOf(), func(ctx context.Context) error {
				var err error
				text, err = app.AI.VerseExplanation(ctx, v.Text, ref)
				return err
			})
			if err != nil {
				return err
			}

			color.New(color.Bold).Println(ref)
			fmt.Printf("\n%s\n", text)
			return nil
		},
	}
}

func askSummaryCmd(appOf func() *App, retryOf retryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [carte] [capitol] [verset]",
		Short: "Rezumat scurt al unui verset",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			v, ref, err := fetchVerse(app, args)
			if err != nil {
				return err
			}

			var text string
			err = runAI(retryOf(), func(ctx context.Context) error {
				var err error
				text, err = app.AI.VerseSummary(ctx, v.Text)
				return err
			})
			if err != nil {
				return err
			}

			color.New(color.Bold).Println(ref)
			fmt.Printf("\n%s\n", text)
			return nil
		},
	}
}

func askDeepDiveCmd(appOf func() *App, retryOf retryFunc) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "deepdive [id-articol]",
		Short: "Detalii AI despre un articol din enciclopedie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			entry, ok := app.Reference.EntryByID(args[0])
			if !ok {
				return fmt.Errorf("articol inexistent: %q", args[0])
			}

			// The deep dive is the only cached AI operation.
			if !refresh {
				if cached, ok := app.AICache.Get(entry.ID); ok {
					color.New(color.Bold).Println(entry.Name)
					fmt.Printf("\n%s\n", cached)
					return nil
				}
			}

			var text string
			err := runAI(retryOf(), func(ctx context.Context) error {
				var err error
				text, err = app.AI.EntryDeepDive(ctx, entry.Name, entry.Category.DisplayName(), entry.Description)
				return err
			})
			if err != nil {
				return err
			}

			if err := app.AICache.Save(entry.ID, text); err != nil {
				app.Log.WithError(err).Warn("failed to cache deep dive answer")
			}

			color.New(color.Bold).Println(entry.Name)
			fmt.Printf("\n%s\n", text)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignoră răspunsul din cache")
	return cmd
}

func askPerspectivesCmd(appOf func() *App, retryOf retryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "perspectives [referință]",
		Short: "Trei perspective ale personajelor asupra unui verset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			var perspectives []gemini.Perspective
			err := runAI(retryOf(), func(ctx context.Context) error {
				var err error
				perspectives, err = app.AI.EventPerspectives(ctx, args[0])
				return err
			})
			if err != nil {
				return err
			}

			for _, p := range perspectives {
				color.New(color.Bold).Println(p.Character)
				fmt.Printf("%s\n\n", p.Insight)
			}
			return nil
		},
	}
}
