// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nexubible/bibliacore/internal/settings"
)

func settingsCmd(appOf func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Vizualizează și modifică setările",
	}
	cmd.AddCommand(settingsGetCmd(appOf))
	cmd.AddCommand(settingsSetCmd(appOf))
	return cmd
}

func settingsGetCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Afișează setările curente",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()
			s := app.Settings.Current()

			fmt.Printf("theme        %s (%s)\n", s.Theme, s.Theme.DisplayName())
			fmt.Printf("font-size    %s (%dpt)\n", s.FontSize, s.FontSize.Points())
			fmt.Printf("font-family  %s\n", s.FontFamily)
			fmt.Printf("static-map   %v\n", s.PreferStaticMap)
			fmt.Printf("two-column   %v\n", s.TwoColumnLayout)
			if s.GeminiAPIKey != "" {
				fmt.Println("api-key      configurată")
			} else {
				fmt.Println("api-key      neconfigurată")
			}
			return nil
		},
	}
}

func settingsSetCmd(appOf func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set [nume] [valoare]",
		Short: "Modifică o setare (theme, font-size, font-family, static-map, two-column, api-key)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := appOf()
			name, value := strings.ToLower(args[0]), args[1]

			apply, err := settingMutation(name, value)
			if err != nil {
				return err
			}
			return app.Settings.Update(apply)
		},
	}
}

// settingMutation validates a name/value pair and returns the mutation to
// apply. The credential passes through unvalidated; the vault stores it as
// given and the gateway reports KindAuth if it is wrong.
func settingMutation(name, value string) (func(*settings.Settings), error) {
	switch name {
	case "theme":
		theme := settings.Theme(strings.ToLower(value))
		switch theme {
		case settings.ThemeLight, settings.ThemeDark, settings.ThemeSystem:
			return func(s *settings.Settings) { s.Theme = theme }, nil
		}
		return nil, fmt.Errorf("temă necunoscută: %q (light, dark, system)", value)

	case "font-size":
		size := settings.FontSize(strings.ToLower(value))
		switch size {
		case settings.FontSizeSM, settings.FontSizeBase, settings.FontSizeLG, settings.FontSizeXL, settings.FontSizeXXL:
			return func(s *settings.Settings) { s.FontSize = size }, nil
		}
		return nil, fmt.Errorf("mărime necunoscută: %q (sm, base, lg, xl, xxl)", value)

	case "font-family":
		family := settings.FontFamily(strings.ToLower(value))
		switch family {
		case settings.FontSans, settings.FontSerif, settings.FontMono:
			return func(s *settings.Settings) { s.FontFamily = family }, nil
		}
		return nil, fmt.Errorf("familie necunoscută: %q (sans, serif, mono)", value)

	case "static-map":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("valoare booleană invalidă: %q", value)
		}
		return func(s *settings.Settings) { s.PreferStaticMap = b }, nil

	case "two-column":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("valoare booleană invalidă: %q", value)
		}
		return func(s *settings.Settings) { s.TwoColumnLayout = b }, nil

	case "api-key":
		return func(s *settings.Settings) { s.GeminiAPIKey = value }, nil
	}
	return nil, fmt.Errorf("setare necunoscută: %q", name)
}

func resetCmd(appOf func() *App) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Șterge toate datele locale (adnotări, progres, setări, cache)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("resetarea șterge definitiv toate datele; confirmați cu --yes")
			}
			app := appOf()

			if err := app.KV.Reset(); err != nil {
				return err
			}
			// Clear the settings credential too, then drop the vault copy.
			if err := app.Settings.Update(func(s *settings.Settings) {
				*s = settings.Defaults()
			}); err != nil {
				return err
			}

			fmt.Println("Toate datele locale au fost șterse.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirmă ștergerea")
	return cmd
}
