// Package picker ties sampling, history, clipboard and notifications
// together behind a small set of commands.
package picker

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pixelpick/internal/clipboard"
	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/config"
	"github.com/jmylchreest/pixelpick/internal/history"
	"github.com/jmylchreest/pixelpick/internal/notify"
	"github.com/jmylchreest/pixelpick/internal/sampler"
	"github.com/jmylchreest/pixelpick/internal/store"
)

// Errors returned by Dispatch. A user abort is not an error.
var (
	ErrUnsupportedCapability = errors.New("color sampling unsupported")
	ErrSamplingFailure       = errors.New("color sampling failed")
	ErrClipboardFailure      = errors.New("clipboard write failed")
	ErrNoSuchEntry           = errors.New("no such history entry")

	// ErrPersistenceFailure matches store errors. History logs these
	// instead of returning them.
	ErrPersistenceFailure = store.ErrPersistence
)

// Status messages shown to the user.
const (
	msgUnsupported  = "Color picking is not supported here"
	msgPickFailed   = "Failed to pick color. Please try again."
	msgCopyFailed   = "Failed to copy to clipboard"
	msgHistoryClear = "Color history cleared"
	msgPickedCopied = "Color %s copied to clipboard!"
	msgPicked       = "Color %s picked"
	msgFormatCopied = "%s value copied!"
	msgEntryCopied  = "%s copied to clipboard!"
)

// Command is one of Pick, CopyFormat, CopyHistory or Clear.
type Command interface {
	commandName() string
}

// Pick samples a colour, records it and copies it when AutoClipboard is on.
type Pick struct{}

// CopyFormat copies the current colour in Format. Without a current colour
// it does nothing.
type CopyFormat struct {
	Format colour.Format
}

// CopyHistory copies the history entry at Index (0 is the most recent).
type CopyHistory struct {
	Index int
}

// Clear empties the history.
type Clear struct{}

func (Pick) commandName() string        { return "pick" }
func (CopyFormat) commandName() string  { return "copy-format" }
func (CopyHistory) commandName() string { return "copy-history" }
func (Clear) commandName() string       { return "clear" }

// Outcome describes what a command did.
type Outcome struct {
	// Colour is the colour the command acted on, if any.
	Colour colour.Hex
	// Copied is the text written to the clipboard, if any.
	Copied string
	// Aborted is set when the user cancelled a pick.
	Aborted bool
}

// Options configure an App.
type Options struct {
	History   *history.History
	Settings  config.Settings
	Sampler   sampler.Sampler
	Clipboard clipboard.Sink
	Notifier  notify.Notifier
	Logger    hclog.Logger
}

// App owns the picker state: the history and the current colour. Commands
// are expected to run one at a time.
type App struct {
	history   *history.History
	settings  config.Settings
	sampler   sampler.Sampler
	clipboard clipboard.Sink
	notifier  notify.Notifier
	logger    hclog.Logger

	current colour.Hex
}

// New creates an App. Missing collaborators are replaced with inert ones.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}
	if opts.History == nil {
		opts.History = history.New(store.NewMemoryStore(), opts.Logger)
	}
	if opts.Sampler == nil {
		opts.Sampler = sampler.Unavailable{}
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.New(opts.Logger)
	}

	return &App{
		history:   opts.History,
		settings:  opts.Settings,
		sampler:   opts.Sampler,
		clipboard: opts.Clipboard,
		notifier:  opts.Notifier,
		logger:    opts.Logger.Named("picker"),
	}
}

// History returns the history owned by the app.
func (a *App) History() *history.History {
	return a.history
}

// Current returns the most recently picked colour.
func (a *App) Current() (colour.Hex, bool) {
	return a.current, a.current != ""
}

// SetCurrent makes c the current colour without recording it.
func (a *App) SetCurrent(c colour.Hex) {
	a.current = c
}

// CanPick reports whether the sampler can run, for disabling pick actions.
func (a *App) CanPick() error {
	return a.sampler.Available()
}

// Dispatch runs cmd.
func (a *App) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	a.logger.Debug("dispatch", "command", cmd.commandName())

	switch c := cmd.(type) {
	case Pick:
		return a.pick(ctx)
	case CopyFormat:
		return a.copyFormat(ctx, c.Format)
	case CopyHistory:
		return a.copyHistory(ctx, c.Index)
	case Clear:
		return a.clear(ctx)
	default:
		return Outcome{}, fmt.Errorf("unknown command %T", cmd)
	}
}

func (a *App) pick(ctx context.Context) (Outcome, error) {
	if err := a.sampler.Available(); err != nil {
		a.logger.Warn("sampler unavailable", "sampler", a.sampler.Name(), "error", err)
		a.notifier.Notify(ctx, notify.Error(msgUnsupported))
		return Outcome{}, fmt.Errorf("%w: %w", ErrUnsupportedCapability, err)
	}

	r := a.sampler.Open(ctx)
	switch r.Kind {
	case sampler.KindAborted:
		a.logger.Debug("pick aborted")
		return Outcome{Aborted: true}, nil
	case sampler.KindFailed:
		a.logger.Error("color picking failed", "sampler", a.sampler.Name(), "error", r.Err)
		a.notifier.Notify(ctx, notify.Error(msgPickFailed))
		return Outcome{}, fmt.Errorf("%w: %w", ErrSamplingFailure, r.Err)
	}

	c := r.Colour
	a.current = c
	a.history.Add(ctx, c)
	out := Outcome{Colour: c}

	if !a.settings.AutoClipboard {
		a.notifier.Notify(ctx, notify.Success(msgPicked, c.Upper()))
		return out, nil
	}

	text := c.Format(a.settings.DefaultFormat)
	if err := a.clipboard.Write(ctx, text); err != nil {
		a.logger.Error("failed to copy picked color", "error", err)
		a.notifier.Notify(ctx, notify.Error(msgCopyFailed))
		return out, fmt.Errorf("%w: %w", ErrClipboardFailure, err)
	}
	out.Copied = text
	a.notifier.Notify(ctx, notify.Success(msgPickedCopied, c.Upper()))
	return out, nil
}

func (a *App) copyFormat(ctx context.Context, f colour.Format) (Outcome, error) {
	if a.current == "" {
		return Outcome{}, nil
	}
	if f == "" {
		f = a.settings.DefaultFormat
	}

	text := a.current.Format(f)
	if err := a.clipboard.Write(ctx, text); err != nil {
		a.logger.Error("failed to copy color value", "format", f, "error", err)
		a.notifier.Notify(ctx, notify.Error(msgCopyFailed))
		return Outcome{Colour: a.current}, fmt.Errorf("%w: %w", ErrClipboardFailure, err)
	}

	a.notifier.Notify(ctx, notify.Success(msgFormatCopied, f.Label()))
	return Outcome{Colour: a.current, Copied: text}, nil
}

func (a *App) copyHistory(ctx context.Context, index int) (Outcome, error) {
	c, ok := a.history.At(index)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %d (history has %d entries)", ErrNoSuchEntry, index, a.history.Len())
	}

	if err := a.clipboard.Write(ctx, string(c)); err != nil {
		a.logger.Error("failed to copy history entry", "colour", c, "error", err)
		a.notifier.Notify(ctx, notify.Error(msgCopyFailed))
		return Outcome{Colour: c}, fmt.Errorf("%w: %w", ErrClipboardFailure, err)
	}

	a.notifier.Notify(ctx, notify.Success(msgEntryCopied, c))
	return Outcome{Colour: c, Copied: string(c)}, nil
}

func (a *App) clear(ctx context.Context) (Outcome, error) {
	a.history.Clear(ctx)
	a.notifier.Notify(ctx, notify.Info(msgHistoryClear))
	return Outcome{}, nil
}
