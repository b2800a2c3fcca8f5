// Package sampler obtains a colour from the user: from the screen through an
// external picker, from an image file, or by typing it in.
package sampler

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmylchreest/pixelpick/internal/colour"
)

// ErrUnsupported is returned by Available when a sampler cannot run in the
// current environment.
var ErrUnsupported = errors.New("color sampling not supported")

// Kind tags a Result.
type Kind int

const (
	// KindSampled means a colour was picked.
	KindSampled Kind = iota
	// KindAborted means the user cancelled. It is not an error.
	KindAborted
	// KindFailed means sampling went wrong for any other reason.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindSampled:
		return "sampled"
	case KindAborted:
		return "aborted"
	case KindFailed:
		return "failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Result is the outcome of a single sampling attempt.
type Result struct {
	Kind   Kind
	Colour colour.Hex // set when Kind is KindSampled
	Err    error      // set when Kind is KindFailed
}

// Sampled returns a successful result.
func Sampled(c colour.Hex) Result {
	return Result{Kind: KindSampled, Colour: c}
}

// Aborted returns a cancelled result.
func Aborted() Result {
	return Result{Kind: KindAborted}
}

// Failed returns a failed result.
func Failed(err error) Result {
	return Result{Kind: KindFailed, Err: err}
}

// Sampler picks a single colour.
type Sampler interface {
	// Name identifies the sampler in logs and flags.
	Name() string

	// Available returns an error wrapping ErrUnsupported when the sampler
	// cannot run here.
	Available() error

	// Open blocks until the user picks a colour or cancels, or ctx is done.
	Open(ctx context.Context) Result
}

// resultFromContext maps a finished context to an abort, since the only
// way to cancel a pick is the user giving up on it.
func resultFromContext(ctx context.Context) (Result, bool) {
	if ctx.Err() != nil {
		return Aborted(), true
	}
	return Result{}, false
}
