package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpick/internal/colour"
)

type convertOptions struct {
	format colour.Format
	json   bool
	record bool
}

func newConvertCmd(global *globalOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <hex>",
		Short: "Show a hex colour as HEX, RGB and HSL",
		Long: `Convert a hex colour to every supported format.

The leading # is optional. The history is left alone unless --record is given.

Examples:
  pixelpick convert ff8800
  pixelpick convert '#3366cc' --format hsl
  pixelpick convert 3366cc --json
  pixelpick convert 3366cc --record`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().VarP(&opts.format, "format", "f", "print only this format (hex, rgb, hsl)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print every format as JSON")
	cmd.Flags().BoolVar(&opts.record, "record", false, "add the colour to the history")
	cmd.MarkFlagsMutuallyExclusive("format", "json")

	return cmd
}

func runConvert(cmd *cobra.Command, global *globalOptions, opts *convertOptions, arg string) error {
	c, err := colour.ParseHex(arg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := global.open(ctx, cmd)
	if err != nil {
		return err
	}

	switch {
	case opts.json:
		if err := writeJSON(cmd.OutOrStdout(), colour.ValuesOf(c)); err != nil {
			return fmt.Errorf("failed to write JSON: %w", err)
		}
	case cmd.Flags().Changed("format"):
		printColour(s.out, c, opts.format)
	default:
		fmt.Fprint(s.out, colourTable(s.out, []colour.Hex{c}))
	}

	if opts.record {
		s.history.Add(ctx, c)
		s.logger.Debug("recorded colour", "colour", c)
	}
	return nil
}
