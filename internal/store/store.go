// Package store persists pixelpick state as small keyed TOML documents.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Fixed keys used by pixelpick.
const (
	KeyColorHistory = "colorHistory"
	KeySettings     = "settings"
)

// ErrPersistence is matched by every error a Store returns.
var ErrPersistence = errors.New("persistence failure")

// Store is a key-value store. Values are structs or maps that encode as a
// TOML table.
type Store interface {
	// Get decodes the value stored under key into v. It reports false with
	// a nil error when the key is absent.
	Get(ctx context.Context, key string, v any) (bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, v any) error
}

// PersistenceError describes a failed store operation.
type PersistenceError struct {
	Op  string // "get" or "set"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}
	if strings.ContainsAny(key, `/\.`) {
		return fmt.Errorf("key %q contains path characters", key)
	}
	return nil
}
