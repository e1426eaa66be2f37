// bibliacore - Romanian Bible reader with encyclopedia and AI explanations.
//
// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"os"

	"github.com/nexubible/bibliacore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
