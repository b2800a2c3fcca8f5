package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/picker"
	"github.com/jmylchreest/pixelpick/internal/sampler"
)

type pickOptions struct {
	sampler string
	image   string
	x, y    int
	format  colour.Format
	noCopy  bool
}

func newPickCmd(global *globalOptions) *cobra.Command {
	opts := &pickOptions{}

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a colour from the screen",
		Long: `Pick a colour and record it in the history.

By default the first available screen picker is started; press escape in the
picker to cancel. The picked colour is printed and, unless disabled in the
settings or with --no-copy, copied to the clipboard in the default format.

Samplers: ` + strings.Join(sampler.Names(), ", ") + `

Examples:
  # Pick from the screen with whichever picker is installed
  pixelpick pick

  # Pick and copy as RGB
  pixelpick pick --format rgb

  # Type a colour instead of sampling the screen
  pixelpick pick --sampler prompt

  # Read the pixel at (10, 20) from an image
  pixelpick pick --image wallpaper.png --x 10 --y 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPick(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sampler, "sampler", "s", "", "sampler to use (default: $PIXELPICK_SAMPLER or auto)")
	cmd.Flags().StringVarP(&opts.image, "image", "i", "", "sample a pixel from this image instead of the screen")
	cmd.Flags().IntVar(&opts.x, "x", 0, "pixel column when sampling an image")
	cmd.Flags().IntVar(&opts.y, "y", 0, "pixel row when sampling an image")
	cmd.Flags().VarP(&opts.format, "format", "f", "format to print and copy (hex, rgb, hsl)")
	cmd.Flags().BoolVar(&opts.noCopy, "no-copy", false, "do not copy the colour to the clipboard")
	cmd.MarkFlagsMutuallyExclusive("sampler", "image")

	return cmd
}

func runPick(cmd *cobra.Command, global *globalOptions, opts *pickOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s, err := global.open(ctx, cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("format") {
		s.settings.DefaultFormat = opts.format
	}
	if opts.noCopy {
		s.settings.AutoClipboard = false
	}

	var smp sampler.Sampler
	if opts.image != "" {
		smp = sampler.NewImageSampler(opts.image, opts.x, opts.y)
	} else {
		smp, err = detectSampler(opts.sampler, s.logger)
		if err != nil {
			return err
		}
	}
	s.logger.Debug("picking", "sampler", smp.Name())

	out, err := s.app(smp).Dispatch(ctx, picker.Pick{})
	if out.Colour != "" {
		printColour(s.out, out.Colour, s.settings.DefaultFormat)
	}
	if err != nil {
		return fmt.Errorf("pick: %w", err)
	}
	if out.Aborted {
		s.logger.Debug("pick cancelled")
	}
	return nil
}
