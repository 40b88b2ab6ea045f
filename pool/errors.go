package pool

import "fmt"

// ConnectError reports that the driver refused to open a session, either
// during pool construction or while replacing a dead connection during
// Borrow.
type ConnectError struct {
	Cause error
}

func (e *ConnectError) Error() string { return fmt.Sprintf("pool: connect failed: %v", e.Cause) }
func (e *ConnectError) Unwrap() error { return e.Cause }

// PoolClosedError is returned by Borrow after Close has been called.
type PoolClosedError struct{}

func (e *PoolClosedError) Error() string { return "pool: closed" }

// BorrowTimeoutError is returned by Borrow when borrowTimeout elapses
// without an available connection.
type BorrowTimeoutError struct{}

func (e *BorrowTimeoutError) Error() string { return "pool: borrow timed out" }

// InterruptedError is returned by Borrow when the caller's context is
// cancelled while waiting on the idle queue, distinct from a timeout.
type InterruptedError struct{}

func (e *InterruptedError) Error() string { return "pool: borrow interrupted" }
