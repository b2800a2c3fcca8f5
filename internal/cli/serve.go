package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpick/internal/server"
	"github.com/jmylchreest/pixelpick/internal/store"
)

type serveOptions struct {
	host    string
	port    int
	sampler string
}

func newServeCmd(global *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the picker over local HTTP",
		Long: `Serve the picker on a local HTTP port.

Endpoints:
  GET    /api/history              history with every format
  POST   /api/pick                 pick a colour
  POST   /api/copy?format=rgb      copy the current colour
  POST   /api/history/{n}/copy     copy a history entry (0 is the newest)
  DELETE /api/history              clear the history
  GET    /api/ws                   websocket with live history updates

History changes made by other pixelpick processes are pushed to websocket
clients as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", "127.0.0.1", "address to listen on")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 7878, "port to listen on")
	cmd.Flags().StringVarP(&opts.sampler, "sampler", "s", "", "sampler to use (default: $PIXELPICK_SAMPLER or auto)")

	return cmd
}

func runServe(cmd *cobra.Command, global *globalOptions, opts *serveOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := global.open(ctx, cmd)
	if err != nil {
		return err
	}

	smp, err := detectSampler(opts.sampler, s.logger)
	if err != nil {
		return err
	}

	srv := server.New(s.app(smp), fmt.Sprintf("%s:%d", opts.host, opts.port), s.logger)

	w, err := store.NewWatcher(s.store.Dir(), s.logger)
	if err != nil {
		return err
	}
	w.Subscribe(srv)
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	return srv.ListenAndServe(ctx)
}
