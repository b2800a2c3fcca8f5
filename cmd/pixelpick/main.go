// pixelpick - A screen colour picker with history
//
// pixelpick samples a colour from the screen, shows it as HEX, RGB and HSL,
// copies it to the clipboard and remembers recent colours.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/pixelpick/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
