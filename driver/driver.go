// Package driver declares the boundary between the pool core and a real
// database driver. The core never parses SQL and never interprets
// driver-specific behaviour beyond the three operations below.
package driver

import "context"

// RawConnection is a single, un-pooled driver session. Implementations
// must be safe for use by exactly one goroutine at a time — the pool core
// guarantees a RawConnection is never shared between a borrower and the
// pool's own maintenance machinery concurrently.
type RawConnection interface {
	// IsAlive asks the driver whether the session is still usable,
	// bounded by timeout. A false result or an error both mean "not
	// alive" to the caller.
	IsAlive(ctx context.Context, timeout int) (bool, error)

	// Execute runs sql against the session purely as a liveness probe.
	// The result set, if any, is discarded by the caller.
	Execute(ctx context.Context, sql string) error

	// Close releases the underlying session. Idempotent.
	Close() error
}

// Factory opens a new RawConnection given a URL and credentials.
type Factory func(ctx context.Context, url, username, password string) (RawConnection, error)
