// Package history maintains the bounded list of recently picked colours.
package history

import (
	"context"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/store"
)

// MaxSize is the maximum number of colours kept.
const MaxSize = 20

// Observer is notified after every mutation with the new entries.
type Observer interface {
	OnHistoryChanged(entries []colour.Hex)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(entries []colour.Hex)

// OnHistoryChanged implements Observer.
func (f ObserverFunc) OnHistoryChanged(entries []colour.Hex) {
	f(entries)
}

// record is the stored shape of the history.
type record struct {
	Colors []string `toml:"colors"`
}

// History is an ordered list of colours, most recent first, without
// duplicates and never longer than MaxSize. It is not safe for concurrent
// mutation; callers drive it from a single command loop.
type History struct {
	entries   []colour.Hex
	store     store.Store
	logger    hclog.Logger
	observers []Observer
}

// New creates an empty history backed by s. Call Load to populate it.
func New(s store.Store, logger hclog.Logger) *History {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &History{
		store:  s,
		logger: logger.Named("history"),
	}
}

// Observe registers an observer for history changes.
func (h *History) Observe(o Observer) {
	h.observers = append(h.observers, o)
}

// Entries returns a copy of the current entries.
func (h *History) Entries() []colour.Hex {
	return slices.Clone(h.entries)
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}

// Front returns the most recent entry.
func (h *History) Front() (colour.Hex, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[0], true
}

// At returns the entry at index i, where 0 is the most recent.
func (h *History) At(i int) (colour.Hex, bool) {
	if i < 0 || i >= len(h.entries) {
		return "", false
	}
	return h.entries[i], true
}

// Add moves c to the front, removing any existing occurrence and dropping
// entries beyond MaxSize. Re-adding a colour promotes it rather than being
// a no-op.
func (h *History) Add(ctx context.Context, c colour.Hex) {
	h.entries = slices.DeleteFunc(h.entries, func(e colour.Hex) bool { return e == c })
	h.entries = slices.Insert(h.entries, 0, c)
	if len(h.entries) > MaxSize {
		h.entries = h.entries[:MaxSize]
	}

	h.logger.Debug("added colour", "colour", c, "size", len(h.entries))
	h.Save(ctx)
	h.notify()
}

// Clear removes every entry.
func (h *History) Clear(ctx context.Context) {
	h.entries = nil

	h.logger.Debug("cleared history")
	h.Save(ctx)
	h.notify()
}

// Load replaces the entries with the stored history. Read failures and
// missing data both leave the history empty; Load never fails.
func (h *History) Load(ctx context.Context) {
	h.entries = nil

	var rec record
	found, err := h.store.Get(ctx, store.KeyColorHistory, &rec)
	if err != nil {
		h.logger.Error("failed to load color history", "error", err)
		return
	}
	if !found {
		return
	}

	h.entries = sanitise(rec.Colors)
	h.logger.Debug("loaded history", "size", len(h.entries))
}

// Save persists the entries. Failures are logged and otherwise ignored.
func (h *History) Save(ctx context.Context) {
	rec := record{Colors: make([]string, len(h.entries))}
	for i, e := range h.entries {
		rec.Colors[i] = string(e)
	}

	if err := h.store.Set(ctx, store.KeyColorHistory, rec); err != nil {
		h.logger.Error("failed to save color history", "error", err)
	}
}

func (h *History) notify() {
	snapshot := h.Entries()
	for _, o := range h.observers {
		o.OnHistoryChanged(snapshot)
	}
}

// sanitise restores the list invariants on data read from outside: the first
// occurrence of a colour wins and the list is cut to MaxSize.
func sanitise(colors []string) []colour.Hex {
	out := make([]colour.Hex, 0, min(len(colors), MaxSize))
	seen := make(map[string]struct{}, len(colors))
	for _, c := range colors {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, colour.Hex(c))
		if len(out) == MaxSize {
			break
		}
	}
	return out
}
