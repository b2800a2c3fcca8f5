package picker

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/config"
	"github.com/jmylchreest/pixelpick/internal/history"
	"github.com/jmylchreest/pixelpick/internal/notify"
	"github.com/jmylchreest/pixelpick/internal/sampler"
	"github.com/jmylchreest/pixelpick/internal/store"
)

// scriptedSampler returns its results in order.
type scriptedSampler struct {
	unavailable error
	results     []sampler.Result
	opens       int
}

func (s *scriptedSampler) Name() string     { return "scripted" }
func (s *scriptedSampler) Available() error { return s.unavailable }

func (s *scriptedSampler) Open(context.Context) sampler.Result {
	r := s.results[s.opens]
	s.opens++
	return r
}

type fakeClipboard struct {
	err    error
	copied []string
}

func (c *fakeClipboard) Write(_ context.Context, text string) error {
	if c.err != nil {
		return c.err
	}
	c.copied = append(c.copied, text)
	return nil
}

type statusRecorder struct {
	got []notify.Status
}

func (r *statusRecorder) Notify(_ context.Context, s notify.Status) {
	r.got = append(r.got, s)
}

type fixture struct {
	app       *App
	sampler   *scriptedSampler
	clipboard *fakeClipboard
	statuses  *statusRecorder
}

func newFixture(settings config.Settings, results ...sampler.Result) *fixture {
	f := &fixture{
		sampler:   &scriptedSampler{results: results},
		clipboard: &fakeClipboard{},
		statuses:  &statusRecorder{},
	}
	f.app = New(Options{
		History:   history.New(store.NewMemoryStore(), nil),
		Settings:  settings,
		Sampler:   f.sampler,
		Clipboard: f.clipboard,
		Notifier:  f.statuses,
	})
	return f
}

func TestPickSampled(t *testing.T) {
	tests := []struct {
		name       string
		settings   config.Settings
		wantCopied string
		wantStatus notify.Status
	}{
		{
			name:       "copies hex by default",
			settings:   config.Defaults(),
			wantCopied: "#FF0000",
			wantStatus: notify.Success("Color #FF0000 copied to clipboard!"),
		},
		{
			name:       "copies in default format",
			settings:   config.Settings{AutoClipboard: true, DefaultFormat: colour.FormatHSL},
			wantCopied: "hsl(0, 100%, 50%)",
			wantStatus: notify.Success("Color #FF0000 copied to clipboard!"),
		},
		{
			name:       "auto clipboard off",
			settings:   config.Settings{AutoClipboard: false, DefaultFormat: colour.FormatHex},
			wantStatus: notify.Success("Color #FF0000 picked"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.settings, sampler.Sampled("#FF0000"))

			out, err := f.app.Dispatch(context.Background(), Pick{})
			if err != nil {
				t.Fatalf("Dispatch(Pick) error = %v", err)
			}
			if out.Colour != "#FF0000" || out.Copied != tt.wantCopied {
				t.Errorf("Outcome = %+v", out)
			}
			if cur, ok := f.app.Current(); !ok || cur != "#FF0000" {
				t.Errorf("Current() = %q, %v", cur, ok)
			}
			if front, _ := f.app.History().Front(); front != "#FF0000" {
				t.Errorf("history front = %q", front)
			}
			if tt.wantCopied == "" && len(f.clipboard.copied) != 0 {
				t.Errorf("unexpected copy %v", f.clipboard.copied)
			}
			if len(f.statuses.got) != 1 || f.statuses.got[0] != tt.wantStatus {
				t.Errorf("statuses = %+v, want [%+v]", f.statuses.got, tt.wantStatus)
			}
		})
	}
}

func TestPickAbortIsSilent(t *testing.T) {
	f := newFixture(config.Defaults(), sampler.Sampled("#00FF00"), sampler.Aborted())
	ctx := context.Background()

	if _, err := f.app.Dispatch(ctx, Pick{}); err != nil {
		t.Fatal(err)
	}
	f.statuses.got = nil

	out, err := f.app.Dispatch(ctx, Pick{})
	if err != nil {
		t.Fatalf("Dispatch(Pick) after abort error = %v, want nil", err)
	}
	if !out.Aborted {
		t.Error("Outcome.Aborted = false")
	}
	if len(f.statuses.got) != 0 {
		t.Errorf("abort produced statuses %+v", f.statuses.got)
	}
	if cur, _ := f.app.Current(); cur != "#00FF00" {
		t.Errorf("abort changed current colour to %q", cur)
	}
	if f.app.History().Len() != 1 {
		t.Errorf("abort changed history length to %d", f.app.History().Len())
	}
}

func TestPickFailureIsRetryable(t *testing.T) {
	f := newFixture(config.Defaults(), sampler.Failed(errors.New("display gone")), sampler.Sampled("#0000FF"))
	ctx := context.Background()

	_, err := f.app.Dispatch(ctx, Pick{})
	if !errors.Is(err, ErrSamplingFailure) {
		t.Fatalf("Dispatch(Pick) error = %v, want ErrSamplingFailure", err)
	}
	if len(f.statuses.got) != 1 || f.statuses.got[0] != notify.Error("Failed to pick color. Please try again.") {
		t.Errorf("statuses = %+v", f.statuses.got)
	}
	if f.app.History().Len() != 0 {
		t.Error("failed pick recorded history")
	}

	out, err := f.app.Dispatch(ctx, Pick{})
	if err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if out.Colour != "#0000FF" {
		t.Errorf("retry colour = %q", out.Colour)
	}
}

func TestPickUnsupported(t *testing.T) {
	f := newFixture(config.Defaults())
	f.sampler.unavailable = sampler.ErrUnsupported

	_, err := f.app.Dispatch(context.Background(), Pick{})
	if !errors.Is(err, ErrUnsupportedCapability) {
		t.Errorf("Dispatch(Pick) error = %v, want ErrUnsupportedCapability", err)
	}
	if !errors.Is(f.app.CanPick(), sampler.ErrUnsupported) {
		t.Errorf("CanPick() = %v", f.app.CanPick())
	}
	if f.sampler.opens != 0 {
		t.Error("unsupported sampler was opened")
	}
	if len(f.statuses.got) != 1 || f.statuses.got[0].Level != notify.LevelError {
		t.Errorf("statuses = %+v, want one error", f.statuses.got)
	}
}

func TestPickClipboardFailure(t *testing.T) {
	f := newFixture(config.Defaults(), sampler.Sampled("#123456"))
	f.clipboard.err = errors.New("no clipboard")

	out, err := f.app.Dispatch(context.Background(), Pick{})
	if !errors.Is(err, ErrClipboardFailure) {
		t.Fatalf("Dispatch(Pick) error = %v, want ErrClipboardFailure", err)
	}
	if out.Colour != "#123456" {
		t.Errorf("Outcome.Colour = %q", out.Colour)
	}
	if front, _ := f.app.History().Front(); front != "#123456" {
		t.Error("colour not recorded when clipboard failed")
	}
	if len(f.statuses.got) != 1 || f.statuses.got[0] != notify.Error("Failed to copy to clipboard") {
		t.Errorf("statuses = %+v", f.statuses.got)
	}
}

func TestCopyFormat(t *testing.T) {
	tests := []struct {
		name       string
		format     colour.Format
		wantCopied string
		wantStatus string
	}{
		{name: "hex", format: colour.FormatHex, wantCopied: "#1A2B3C", wantStatus: "HEX value copied!"},
		{name: "rgb", format: colour.FormatRGB, wantCopied: "rgb(26, 43, 60)", wantStatus: "RGB value copied!"},
		{name: "hsl", format: colour.FormatHSL, wantCopied: "hsl(210, 40%, 17%)", wantStatus: "HSL value copied!"},
		{name: "empty uses default", format: "", wantCopied: "#1A2B3C", wantStatus: "HEX value copied!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(config.Defaults())
			f.app.SetCurrent("#1a2b3c")

			out, err := f.app.Dispatch(context.Background(), CopyFormat{Format: tt.format})
			if err != nil {
				t.Fatalf("Dispatch(CopyFormat) error = %v", err)
			}
			if out.Copied != tt.wantCopied {
				t.Errorf("Copied = %q, want %q", out.Copied, tt.wantCopied)
			}
			if len(f.statuses.got) != 1 || f.statuses.got[0].Message != tt.wantStatus {
				t.Errorf("statuses = %+v, want %q", f.statuses.got, tt.wantStatus)
			}
		})
	}
}

func TestCopyFormatWithoutCurrentIsNoop(t *testing.T) {
	f := newFixture(config.Defaults())

	out, err := f.app.Dispatch(context.Background(), CopyFormat{Format: colour.FormatRGB})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if out != (Outcome{}) || len(f.clipboard.copied) != 0 || len(f.statuses.got) != 0 {
		t.Errorf("expected no-op, got outcome %+v copied %v statuses %v", out, f.clipboard.copied, f.statuses.got)
	}
}

func TestCopyFormatFailure(t *testing.T) {
	f := newFixture(config.Defaults())
	f.app.SetCurrent("#FFFFFF")
	f.clipboard.err = errors.New("denied")

	_, err := f.app.Dispatch(context.Background(), CopyFormat{Format: colour.FormatHex})
	if !errors.Is(err, ErrClipboardFailure) {
		t.Errorf("error = %v, want ErrClipboardFailure", err)
	}
	if len(f.statuses.got) != 1 || f.statuses.got[0].Level != notify.LevelError {
		t.Errorf("statuses = %+v", f.statuses.got)
	}
}

func TestCopyHistory(t *testing.T) {
	f := newFixture(config.Defaults(), sampler.Sampled("#FF0000"), sampler.Sampled("#00FF00"))
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := f.app.Dispatch(ctx, Pick{}); err != nil {
			t.Fatal(err)
		}
	}
	f.clipboard.copied = nil

	out, err := f.app.Dispatch(ctx, CopyHistory{Index: 1})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if out.Copied != "#FF0000" {
		t.Errorf("Copied = %q, want #FF0000", out.Copied)
	}
	if cur, _ := f.app.Current(); cur != "#00FF00" {
		t.Errorf("copying history changed current colour to %q", cur)
	}

	if _, err := f.app.Dispatch(ctx, CopyHistory{Index: 5}); !errors.Is(err, ErrNoSuchEntry) {
		t.Errorf("out of range error = %v, want ErrNoSuchEntry", err)
	}
}

func TestClear(t *testing.T) {
	f := newFixture(config.Defaults(), sampler.Sampled("#FF0000"))
	ctx := context.Background()
	if _, err := f.app.Dispatch(ctx, Pick{}); err != nil {
		t.Fatal(err)
	}
	f.statuses.got = nil

	if _, err := f.app.Dispatch(ctx, Clear{}); err != nil {
		t.Fatalf("error = %v", err)
	}
	if f.app.History().Len() != 0 {
		t.Errorf("history length = %d after Clear", f.app.History().Len())
	}
	if len(f.statuses.got) != 1 || f.statuses.got[0] != notify.Info("Color history cleared") {
		t.Errorf("statuses = %+v", f.statuses.got)
	}
}

func TestPickSequenceEndToEnd(t *testing.T) {
	f := newFixture(config.Defaults(),
		sampler.Sampled("#FF0000"),
		sampler.Sampled("#00FF00"),
		sampler.Sampled("#FF0000"),
	)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.app.Dispatch(ctx, Pick{}); err != nil {
			t.Fatalf("pick %d: %v", i, err)
		}
	}

	want := []colour.Hex{"#FF0000", "#00FF00"}
	if got := f.app.History().Entries(); !slices.Equal(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}
	if want := []string{"#FF0000", "#00FF00", "#FF0000"}; !slices.Equal(f.clipboard.copied, want) {
		t.Errorf("clipboard writes = %v, want %v", f.clipboard.copied, want)
	}
}
