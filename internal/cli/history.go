package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/history"
	"github.com/jmylchreest/pixelpick/internal/picker"
	"github.com/jmylchreest/pixelpick/internal/server"
)

func newHistoryCmd(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show and manage recent colours",
		Long: fmt.Sprintf(`Show and manage the colour history.

The history keeps the %d most recently picked colours, newest first. Picking a
colour that is already in the history moves it to the front.`, history.MaxSize),
	}

	cmd.AddCommand(
		newHistoryListCmd(global),
		newHistoryClearCmd(global),
		newHistoryCopyCmd(global),
	)
	return cmd
}

func newHistoryListCmd(global *globalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent colours, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := global.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			entries := s.history.Entries()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), server.NewHistoryPayload(entries))
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No colors picked yet")
				return nil
			}
			fmt.Fprint(s.out, colourTable(s.out, entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the history as JSON")
	return cmd
}

func newHistoryClearCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every colour from the history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := global.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			_, err = s.app(nil).Dispatch(cmd.Context(), picker.Clear{})
			return err
		},
	}
}

func newHistoryCopyCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <n>",
		Short: "Copy the nth most recent colour (1 is the newest)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid history position: %s", args[0])
			}

			s, err := global.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			out, err := s.app(nil).Dispatch(cmd.Context(), picker.CopyHistory{Index: n - 1})
			if err != nil {
				return fmt.Errorf("copy: %w", err)
			}
			printColour(s.out, out.Colour, colour.FormatHex)
			return nil
		},
	}
}
