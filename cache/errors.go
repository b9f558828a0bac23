package cache

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when an insert cannot complete because
	// the shard is at capacity and the active policy produced no victim
	// (e.g. the no-eviction policy on a bounded cache). It is per-operation
	// and not fatal: the caller may retry after removing entries.
	ErrCapacityExceeded = errors.New("cache: capacity exceeded and eviction produced no victim")

	// ErrClosed is returned by mutating operations after Close.
	ErrClosed = errors.New("cache: closed")

	// ErrNoLoader is returned by GetOrLoad when no Loader was configured.
	ErrNoLoader = errors.New("cache: no Loader provided")
)

// ConfigError reports an invalid construction parameter. Construction never
// panics on bad configuration; the host must fix the configuration and build
// again.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("cache: invalid config: %s: %s", e.Field, e.Reason)
}

func configErr(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}
