// Package notify shows short status messages to the user.
package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-hclog"
)

// Level classifies a status message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Status is a transient message for the user.
type Status struct {
	Message string
	Level   Level
}

// Success returns a success status.
func Success(format string, args ...any) Status {
	return Status{Message: fmt.Sprintf(format, args...), Level: LevelSuccess}
}

// Info returns an informational status.
func Info(format string, args ...any) Status {
	return Status{Message: fmt.Sprintf(format, args...), Level: LevelInfo}
}

// Error returns an error status.
func Error(format string, args ...any) Status {
	return Status{Message: fmt.Sprintf(format, args...), Level: LevelError}
}

// Notifier displays statuses. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, s Status)
}

// Adaptive colours that work in both light and dark terminals.
var (
	colorSuccess = lipgloss.AdaptiveColor{Dark: "#22c55e", Light: "#16a34a"}
	colorError   = lipgloss.AdaptiveColor{Dark: "#ef4444", Light: "#dc2626"}
	colorInfo    = lipgloss.AdaptiveColor{Dark: "#3b82f6", Light: "#2563eb"}
)

// Icons for status messages
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "→"
)

// Terminal writes styled status lines to a writer.
type Terminal struct {
	out    io.Writer
	styles map[Level]lipgloss.Style
	icons  map[Level]string
}

// NewTerminal creates a notifier writing to out.
func NewTerminal(out io.Writer) *Terminal {
	r := lipgloss.NewRenderer(out)
	return &Terminal{
		out: out,
		styles: map[Level]lipgloss.Style{
			LevelSuccess: r.NewStyle().Foreground(colorSuccess),
			LevelError:   r.NewStyle().Foreground(colorError),
			LevelInfo:    r.NewStyle().Foreground(colorInfo),
		},
		icons: map[Level]string{
			LevelSuccess: iconSuccess,
			LevelError:   iconError,
			LevelInfo:    iconInfo,
		},
	}
}

// Notify writes the status on its own line.
func (t *Terminal) Notify(_ context.Context, s Status) {
	style, ok := t.styles[s.Level]
	if !ok {
		style = t.styles[LevelInfo]
	}
	icon := t.icons[s.Level]
	if icon == "" {
		icon = iconInfo
	}
	fmt.Fprintln(t.out, style.Render(icon+" "+s.Message))
}

// Desktop sends statuses as desktop notifications through dunstify or
// notify-send, whichever is found first. Without either it does nothing.
type Desktop struct {
	appName  string
	logger   hclog.Logger
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewDesktop creates a desktop notifier.
func NewDesktop(appName string, logger hclog.Logger) *Desktop {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Desktop{
		appName:  appName,
		logger:   logger.Named("notify"),
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Notify sends the status. Failures are logged only.
func (d *Desktop) Notify(ctx context.Context, s Status) {
	urgency := "normal"
	if s.Level == LevelError {
		urgency = "critical"
	}

	// dunstify and notify-send disagree on the app name flag.
	binaries := []struct {
		name    string
		appFlag string
	}{
		{name: "dunstify", appFlag: "--appname"},
		{name: "notify-send", appFlag: "--app-name"},
	}

	for _, b := range binaries {
		path, err := d.lookPath(b.name)
		if err != nil {
			continue
		}
		args := []string{b.appFlag, d.appName, "--urgency", urgency, d.appName, s.Message}
		if err := d.run(ctx, path, args...); err != nil {
			d.logger.Warn("failed to send desktop notification", "binary", b.name, "error", err)
		}
		return
	}
	d.logger.Debug("neither dunstify nor notify-send found on $PATH")
}

// Multi fans a status out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, s Status) {
	for _, n := range m {
		n.Notify(ctx, s)
	}
}

// Discard drops every status.
type Discard struct{}

// Notify implements Notifier.
func (Discard) Notify(context.Context, Status) {}
