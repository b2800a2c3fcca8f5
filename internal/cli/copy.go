package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/picker"
)

// errNoColour is returned when a command needs a colour and the history is
// empty.
var errNoColour = errors.New("no colour picked yet")

func newCopyCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "copy [hex|rgb|hsl]",
		Short: "Copy the most recent colour in a format",
		Long: `Copy the most recently picked colour to the clipboard.

Without a format the default format from the settings is used.

Examples:
  pixelpick copy
  pixelpick copy rgb`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(colour.FormatHex), string(colour.FormatRGB), string(colour.FormatHSL)},
		RunE: func(cmd *cobra.Command, args []string) error {
			var f colour.Format
			if len(args) == 1 {
				if err := f.Set(args[0]); err != nil {
					return err
				}
			}
			return runCopy(cmd, global, f)
		},
	}
}

func runCopy(cmd *cobra.Command, global *globalOptions, f colour.Format) error {
	ctx := cmd.Context()
	s, err := global.open(ctx, cmd)
	if err != nil {
		return err
	}

	current, ok := s.history.Front()
	if !ok {
		return errNoColour
	}

	app := s.app(nil)
	app.SetCurrent(current)
	out, err := app.Dispatch(ctx, picker.CopyFormat{Format: f})
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	s.logger.Debug("copied", "text", out.Copied)
	return nil
}
