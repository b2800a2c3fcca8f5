package sampler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/pixelpick/internal/colour"
)

// ErrBusy is returned when a picker of the same tool is already on screen.
var ErrBusy = errors.New("a color picker is already running")

// waitDelay bounds how long Open waits for a killed picker's children to
// release its output pipes.
const waitDelay = 500 * time.Millisecond

// Tool describes an external screen colour picker that prints the picked
// colour as hex on stdout.
type Tool struct {
	Name string
	Args []string
}

// DefaultTools are tried in order by auto detection.
var DefaultTools = []Tool{
	{Name: "hyprpicker", Args: []string{"--format=hex"}},
	{Name: "xcolor", Args: []string{"--format", "hex"}},
	{Name: "gpick", Args: []string{"--single", "--output", "--no-newline"}},
}

// CommandSampler samples the screen by running an external picker.
type CommandSampler struct {
	tool   Tool
	logger hclog.Logger

	lookPath  func(string) (string, error)
	processes func() ([]ps.Process, error)
}

// NewCommandSampler creates a sampler for tool.
func NewCommandSampler(tool Tool, logger hclog.Logger) *CommandSampler {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &CommandSampler{
		tool:      tool,
		logger:    logger.Named("sampler").With("tool", tool.Name),
		lookPath:  exec.LookPath,
		processes: ps.Processes,
	}
}

// Name returns the tool name.
func (s *CommandSampler) Name() string {
	return s.tool.Name
}

// Available checks that the tool is on $PATH.
func (s *CommandSampler) Available() error {
	if _, err := s.lookPath(s.tool.Name); err != nil {
		return fmt.Errorf("%w: %s not found on $PATH", ErrUnsupported, s.tool.Name)
	}
	return nil
}

// Open runs the tool and parses its output. An empty output, or the context
// ending first, is an abort: pickers exit quietly when escape is pressed.
func (s *CommandSampler) Open(ctx context.Context) Result {
	path, err := s.lookPath(s.tool.Name)
	if err != nil {
		return Failed(fmt.Errorf("%w: %s not found on $PATH", ErrUnsupported, s.tool.Name))
	}

	if running, err := s.isRunning(); err != nil {
		s.logger.Debug("could not list processes", "error", err)
	} else if running {
		return Failed(fmt.Errorf("%w: %s", ErrBusy, s.tool.Name))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, s.tool.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	s.logger.Debug("starting picker", "path", path, "args", s.tool.Args)
	runErr := cmd.Run()

	if r, done := resultFromContext(ctx); done {
		s.logger.Debug("picker cancelled")
		return r
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		if runErr != nil && strings.TrimSpace(stderr.String()) != "" {
			return Failed(fmt.Errorf("%s failed: %w: %s", s.tool.Name, runErr, strings.TrimSpace(stderr.String())))
		}
		s.logger.Debug("picker exited without a colour", "error", runErr)
		return Aborted()
	}
	if runErr != nil {
		return Failed(fmt.Errorf("%s failed: %w", s.tool.Name, runErr))
	}

	c, err := parseOutput(out)
	if err != nil {
		return Failed(fmt.Errorf("%s printed unexpected output: %w", s.tool.Name, err))
	}
	return Sampled(c)
}

// isRunning reports whether another instance of the tool is running.
func (s *CommandSampler) isRunning() (bool, error) {
	procs, err := s.processes()
	if err != nil {
		return false, err
	}
	for _, p := range procs {
		if p.Executable() == s.tool.Name {
			return true, nil
		}
	}
	return false, nil
}

// parseOutput returns the last hex colour printed. Some pickers print a
// banner or several formats before the value.
func parseOutput(out string) (colour.Hex, error) {
	fields := strings.Fields(out)
	for i := len(fields) - 1; i >= 0; i-- {
		if c, err := colour.ParseHex(fields[i]); err == nil && strings.HasPrefix(fields[i], "#") {
			return c, nil
		}
	}
	return colour.ParseHex(out)
}
