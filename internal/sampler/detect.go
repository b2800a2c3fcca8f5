package sampler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Sampler names accepted by Detect besides the DefaultTools names.
const (
	NameAuto    = "auto"
	NameCommand = "command"
	NamePrompt  = "prompt"
)

// Detect returns the sampler called name. "auto" picks the first available
// screen picker and falls back to the prompt; "command" considers only
// screen pickers. When nothing fits, the returned error wraps ErrUnsupported.
func Detect(name string, logger hclog.Logger) (Sampler, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if name == "" {
		name = NameAuto
	}

	name = strings.ToLower(name)

	var candidates []Sampler
	switch name {
	case NameAuto:
		candidates = append(commandSamplers(logger), NewPromptSampler())
	case NameCommand:
		candidates = commandSamplers(logger)
	case NamePrompt:
		candidates = []Sampler{NewPromptSampler()}
	default:
		for _, tool := range DefaultTools {
			if tool.Name == name {
				candidates = []Sampler{NewCommandSampler(tool, logger)}
			}
		}
		if candidates == nil {
			return nil, fmt.Errorf("unknown sampler: %s (valid: %s)", name, strings.Join(Names(), ", "))
		}
	}

	return firstAvailable(candidates, logger)
}

// Names lists every name Detect accepts.
func Names() []string {
	names := []string{NameAuto, NameCommand, NamePrompt}
	for _, tool := range DefaultTools {
		names = append(names, tool.Name)
	}
	return names
}

func commandSamplers(logger hclog.Logger) []Sampler {
	out := make([]Sampler, 0, len(DefaultTools))
	for _, tool := range DefaultTools {
		out = append(out, NewCommandSampler(tool, logger))
	}
	return out
}

func firstAvailable(candidates []Sampler, logger hclog.Logger) (Sampler, error) {
	var errs []error
	for _, s := range candidates {
		err := s.Available()
		if err == nil {
			logger.Debug("using sampler", "sampler", s.Name())
			return s, nil
		}
		logger.Trace("sampler unavailable", "sampler", s.Name(), "error", err)
		errs = append(errs, err)
	}
	return nil, fmt.Errorf("%w: no usable sampler: %w", ErrUnsupported, errors.Join(errs...))
}

// Unavailable is a Sampler that never runs. It lets callers treat a failed
// detection like any other unavailable sampler.
type Unavailable struct {
	Err error
}

// Name returns "unavailable".
func (u Unavailable) Name() string {
	return "unavailable"
}

// Available returns the detection error.
func (u Unavailable) Available() error {
	if u.Err == nil {
		return ErrUnsupported
	}
	return u.Err
}

// Open always fails.
func (u Unavailable) Open(context.Context) Result {
	return Failed(u.Available())
}
