// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nexubible/bibliacore/internal/encyclopedia"
)

func encCmd(appOf func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enc",
		Short: "Enciclopedia biblică",
	}
	cmd.AddCommand(encSearchCmd(appOf))
	cmd.AddCommand(encShowCmd(appOf))
	cmd.AddCommand(encLookupCmd(appOf))
	cmd.AddCommand(encMapCmd(appOf))
	return cmd
}

func encSearchCmd(appOf func() *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "search [interogare]",
		Short: "Caută în enciclopedie",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			var entries []encyclopedia.Entry
			if category != "" {
				entries = app.Reference.Filter(encyclopedia.Category(strings.ToLower(category)))
			} else {
				query := ""
				if len(args) == 1 {
					query = args[0]
				}
				entries = app.Reference.Search(query)
			}

			if len(entries) == 0 {
				fmt.Println("Niciun rezultat.")
				return nil
			}
			for _, e := range entries {
				printEntrySummary(e)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "filtrează după categorie (person, place, event, concept, object)")
	return cmd
}

func printEntrySummary(e encyclopedia.Entry) {
	color.New(color.Bold).Printf("%-24s", e.Name)
	fmt.Printf(" [%s]  %s\n", e.Category.DisplayName(), e.ID)
}

func encShowCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Afișează un articol din enciclopedie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			e, ok := app.Reference.EntryByID(args[0])
			if !ok {
				return fmt.Errorf("articol inexistent: %q", args[0])
			}
			printEntry(app, e)
			return nil
		},
	}
}

func encLookupCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup [cuvânt]",
		Short: "Rezolvă un nume sau alias la articolul său",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			e, ok := app.Reference.Lookup(args[0])
			if !ok {
				fmt.Printf("Niciun articol pentru %q.\n", args[0])
				return nil
			}
			printEntry(app, e)
			return nil
		},
	}
}

func printEntry(app *App, e encyclopedia.Entry) {
	color.New(color.Bold).Println(e.Name)
	if len(e.Aliases) > 0 {
		fmt.Printf("Cunoscut și ca: %s\n", strings.Join(e.Aliases, ", "))
	}
	fmt.Printf("Categorie: %s\n\n", e.Category.DisplayName())
	fmt.Println(e.Description)
	if e.Significance != "" {
		fmt.Printf("\nSemnificație: %s\n", e.Significance)
	}
	if e.Coordinates != nil {
		fmt.Printf("\nCoordonate: %.4f, %.4f\n", e.Coordinates.Latitude, e.Coordinates.Longitude)
	}

	if len(e.RelatedVerses) > 0 {
		refs := make([]string, 0, len(e.RelatedVerses))
		for _, r := range e.RelatedVerses {
			refs = append(refs, r.Display())
		}
		fmt.Printf("\nVersete: %s\n", strings.Join(refs, "; "))
	}

	// Dangling related ids are skipped silently.
	var related []string
	for _, id := range e.RelatedEntries {
		if rel, ok := app.Reference.EntryByID(id); ok {
			related = append(related, rel.Name)
		}
	}
	if len(related) > 0 {
		fmt.Printf("Vezi și: %s\n", strings.Join(related, ", "))
	}
}

func encMapCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "map",
		Short: "Listează locurile biblice cu coordonate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()

			locations := app.Reference.Locations()
			if len(locations) == 0 {
				fmt.Println("Niciun loc disponibil.")
				return nil
			}

			for _, loc := range locations {
				color.New(color.Bold).Printf("%-24s", loc.Name)
				fmt.Printf(" %9.4f, %9.4f  %s", loc.Latitude, loc.Longitude, loc.Category)
				if _, ok := app.Reference.LocationEntry(loc); ok {
					fmt.Printf("  → enc show %s", loc.EncyclopediaID)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
