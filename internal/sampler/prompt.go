package sampler

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/jmylchreest/pixelpick/internal/colour"
)

// PromptSampler asks the user to type a colour. Escape or ctrl+c aborts.
type PromptSampler struct {
	isTerminal func() bool
	run        func(ctx context.Context, value *string) error
}

// NewPromptSampler creates a sampler that prompts on the terminal.
func NewPromptSampler() *PromptSampler {
	return &PromptSampler{
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		run: runHexPrompt,
	}
}

// Name returns "prompt".
func (s *PromptSampler) Name() string {
	return "prompt"
}

// Available requires an interactive terminal.
func (s *PromptSampler) Available() error {
	if !s.isTerminal() {
		return fmt.Errorf("%w: prompt needs an interactive terminal", ErrUnsupported)
	}
	return nil
}

// Open shows the prompt and waits for input.
func (s *PromptSampler) Open(ctx context.Context) Result {
	var value string
	err := s.run(ctx, &value)
	switch {
	case errors.Is(err, huh.ErrUserAborted):
		return Aborted()
	case err != nil:
		if r, done := resultFromContext(ctx); done {
			return r
		}
		return Failed(fmt.Errorf("prompt failed: %w", err))
	}

	c, err := colour.ParseHex(value)
	if err != nil {
		return Failed(err)
	}
	return Sampled(c)
}

func runHexPrompt(ctx context.Context, value *string) error {
	input := huh.NewInput().
		Title("Color").
		Placeholder("#RRGGBB").
		Validate(func(s string) error {
			_, err := colour.ParseHex(s)
			return err
		}).
		Value(value)

	return huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx)
}
