// Package storage persists origin-scoped key/value pairs and cookies, the
// terminal counterpart of a browser's local storage and cookie jar.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation once Close has been called.
var ErrClosed = errors.New("storage is closed")

// Store keeps string values and cookies for a single origin.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error

	// Cookie returns the cookie value for name and whether it was present.
	Cookie(ctx context.Context, name string) (string, bool, error)
	SetCookie(ctx context.Context, name, value string) error
	DeleteCookie(ctx context.Context, name string) error

	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Open selects a backend by driver name.
func Open(ctx context.Context, driver, path, origin string) (Store, error) {
	if origin == "" {
		return nil, errors.New("storage origin is required")
	}
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(ctx, path, origin)
	case DriverMemory:
		return NewMemory(origin), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
