// Package cli provides the command-line interface for pixelpick.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpick/internal/config"
	"github.com/jmylchreest/pixelpick/internal/history"
	"github.com/jmylchreest/pixelpick/internal/notify"
	"github.com/jmylchreest/pixelpick/internal/picker"
	"github.com/jmylchreest/pixelpick/internal/sampler"
	"github.com/jmylchreest/pixelpick/internal/store"
	"github.com/jmylchreest/pixelpick/internal/version"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	verbose       bool
	quiet         bool
	dataDir       string
	desktopNotify bool
}

// session is the state a command works against: the store, the settings
// read from it and the sinks built from the global flags.
type session struct {
	logger   hclog.Logger
	store    *store.FileStore
	settings config.Settings
	history  *history.History
	notifier notify.Notifier
	out      *termenv.Output
}

// NewRootCmd builds the pixelpick command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "pixelpick",
		Short: "Pick colours from the screen and keep a history",
		Long: `pixelpick samples a colour from anywhere on screen, shows it as HEX, RGB
and HSL, copies it to the clipboard and remembers the last 20 colours.

Screen sampling uses an installed picker (hyprpicker, xcolor or gpick). When
none is available the colour can be typed in, or read from an image file.`,
		Version:      version.String(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "directory for history and settings (default: $"+config.EnvDataDir+" or the user config dir)")
	rootCmd.PersistentFlags().BoolVar(&opts.desktopNotify, "desktop-notify", false, "also send desktop notifications")

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(
		newPickCmd(opts),
		newConvertCmd(opts),
		newCopyCmd(opts),
		newHistoryCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func (o *globalOptions) logLevel() hclog.Level {
	switch {
	case o.verbose:
		return hclog.Debug
	case o.quiet:
		return hclog.Error
	default:
		return hclog.Info
	}
}

func (o *globalOptions) newLogger(w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "pixelpick",
		Output: w,
		Level:  o.logLevel(),
	})
}

func (o *globalOptions) resolveDataDir() (string, error) {
	if o.dataDir != "" {
		return o.dataDir, nil
	}
	return config.DataDir()
}

// open prepares a session for cmd: it seeds the store on first run and
// loads settings and history.
func (o *globalOptions) open(ctx context.Context, cmd *cobra.Command) (*session, error) {
	logger := o.newLogger(cmd.ErrOrStderr())

	dir, err := o.resolveDataDir()
	if err != nil {
		return nil, err
	}
	logger.Debug("using data directory", "dir", dir)

	st := store.NewFileStore(dir, logger)
	if _, err := config.Install(ctx, st, logger); err != nil {
		// Later writes log their own failures.
		logger.Error("failed to initialise storage", "error", err)
	}

	h := history.New(st, logger)
	h.Load(ctx)

	return &session{
		logger:   logger,
		store:    st,
		settings: config.LoadSettings(ctx, st, logger),
		history:  h,
		notifier: o.notifier(cmd.ErrOrStderr(), logger),
		out:      termenv.NewOutput(cmd.OutOrStdout()),
	}, nil
}

func (o *globalOptions) notifier(w io.Writer, logger hclog.Logger) notify.Notifier {
	var n notify.Multi
	if !o.quiet {
		n = append(n, notify.NewTerminal(w))
	}
	if o.desktopNotify {
		n = append(n, notify.NewDesktop("pixelpick", logger))
	}
	return n
}

// app builds the picker around the session with smp as the sampler.
func (s *session) app(smp sampler.Sampler) *picker.App {
	return picker.New(picker.Options{
		History:  s.history,
		Settings: s.settings,
		Sampler:  smp,
		Notifier: s.notifier,
		Logger:   s.logger,
	})
}

// detectSampler resolves a sampler name. An environment without a usable
// sampler still yields one, so the picker reports it like any other
// unsupported pick.
func detectSampler(name string, logger hclog.Logger) (sampler.Sampler, error) {
	if name == "" {
		name = os.Getenv(config.EnvSampler)
	}
	smp, err := sampler.Detect(name, logger)
	if errors.Is(err, sampler.ErrUnsupported) {
		return sampler.Unavailable{Err: err}, nil
	}
	if err != nil {
		return nil, err
	}
	return smp, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
