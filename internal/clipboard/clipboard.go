// Package clipboard copies text to the system clipboard, falling back to an
// OSC 52 terminal escape when no clipboard utility is usable.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"
)

// ErrClipboard is returned when neither the clipboard nor the fallback
// accepted the text.
var ErrClipboard = errors.New("failed to copy to clipboard")

// Sink receives text destined for the clipboard.
type Sink interface {
	Write(ctx context.Context, text string) error
}

// Clipboard is the default Sink.
type Clipboard struct {
	logger hclog.Logger

	primary     func(string) error
	unsupported bool

	fallback   io.Writer
	isTerminal func() bool
	getenv     func(string) string
}

// New creates a Clipboard that falls back to writing OSC 52 sequences to
// stderr when it is a terminal.
func New(logger hclog.Logger) *Clipboard {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Clipboard{
		logger:      logger.Named("clipboard"),
		primary:     clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
		fallback:    os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stderr.Fd()))
		},
		getenv: os.Getenv,
	}
}

// Write copies text using the system clipboard, or the terminal fallback.
func (c *Clipboard) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var primaryErr error
	if c.unsupported {
		primaryErr = errors.New("no clipboard utility found")
	} else if primaryErr = c.primary(text); primaryErr == nil {
		c.logger.Debug("copied to clipboard", "text", text)
		return nil
	}
	c.logger.Debug("clipboard write failed, trying terminal fallback", "error", primaryErr)

	if err := c.writeOSC52(text); err != nil {
		return fmt.Errorf("%w: %w", ErrClipboard, errors.Join(primaryErr, err))
	}
	c.logger.Debug("copied via terminal escape", "text", text)
	return nil
}

func (c *Clipboard) writeOSC52(text string) error {
	if !c.isTerminal() {
		return errors.New("terminal fallback needs a terminal")
	}

	seq := osc52.New(text)
	switch {
	case c.getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(c.getenv("TERM"), "screen"):
		seq = seq.Screen()
	}

	if _, err := seq.WriteTo(c.fallback); err != nil {
		return fmt.Errorf("terminal fallback: %w", err)
	}
	return nil
}
