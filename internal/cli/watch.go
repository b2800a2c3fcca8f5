package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpick/internal/store"
)

// changePrinter writes one line per store change.
type changePrinter struct {
	out io.Writer
}

func (p changePrinter) OnStoreChange(c store.Change) {
	fmt.Fprintf(p.out, "%s %s\n", c.Key, c.Op)
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print changes to the stored history and settings",
		Long: `Watch the data directory and print a line whenever the history or the
settings change, including changes made by other pixelpick processes. Old and
new values are logged with --verbose.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := global.open(ctx, cmd)
			if err != nil {
				return err
			}

			w, err := store.NewWatcher(s.store.Dir(), s.logger)
			if err != nil {
				return err
			}
			w.Subscribe(changePrinter{out: cmd.OutOrStdout()})
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Stop()

			s.logger.Info("watching for changes", "dir", s.store.Dir())
			<-ctx.Done()
			return nil
		},
	}
}
