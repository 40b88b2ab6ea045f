package driver

import (
	"context"
	"time"
)

// withSecondsTimeout bounds ctx to timeout seconds, or returns ctx
// unchanged (with a no-op cancel) when timeout is not positive.
func withSecondsTimeout(ctx context.Context, timeout int) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
}
