package pool

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/blinkpool/blinkpool/driver"
)

// probedConn wraps a raw driver connection with the pool-specific state
// it needs: a back-reference to the owning pool, an expiration deadline,
// and the two probe/borrow timestamps the liveness policy and
// return-path accounting need.
//
// A probedConn is never touched by two goroutines at once: it lives in
// exactly one of the idle queue, a caller's hands, or nowhere (destroyed).
// That invariant — enforced by Pool's borrow/return/close disciplines — is
// why probedConn carries no mutex of its own.
type probedConn struct {
	pool *Pool
	raw  driver.RawConnection
	id   uuid.UUID

	expirationTime time.Time
	lastCheckTime  time.Time
	lastBorrowTime time.Time
}

// newProbedConn wraps raw with a freshly randomised expiration deadline.
// The randomisation — uniform over [0.8*maxLifetime, maxLifetime) —
// desynchronises a cohort of connections created together so they don't
// all expire, and reconnect, at once.
func newProbedConn(pool *Pool, raw driver.RawConnection, maxLifetimeMillis int64) *probedConn {
	lo := float64(maxLifetimeMillis) * 0.8
	hi := float64(maxLifetimeMillis)
	window := lo + rand.Float64()*(hi-lo)

	return &probedConn{
		pool:           pool,
		raw:            raw,
		id:             uuid.New(),
		expirationTime: time.Now().Add(time.Duration(window) * time.Millisecond),
	}
}

// isAvailable runs the liveness policy: expired connections are rejected
// outright, then a probe is performed or skipped depending on how
// recently this connection was last checked.
func (c *probedConn) isAvailable(ctx context.Context) bool {
	now := time.Now()

	if !now.Before(c.expirationTime) {
		return false
	}

	interval := c.pool.cfg.CheckIntervalMillis
	if interval < 0 {
		return true
	}
	if interval == 0 {
		return c.probe(ctx)
	}
	if now.Sub(c.lastCheckTime) < time.Duration(interval)*time.Millisecond {
		return true
	}
	return c.probe(ctx)
}

// probe actually performs a liveness check, stamping lastCheckTime.
func (c *probedConn) probe(ctx context.Context) bool {
	c.lastCheckTime = time.Now()

	if c.pool.cfg.CheckSQL != "" {
		err := c.raw.Execute(ctx, c.pool.cfg.CheckSQL)
		return err == nil
	}

	alive, err := c.raw.IsAlive(ctx, c.pool.cfg.CheckTimeoutSeconds)
	if err != nil {
		return false
	}
	return alive
}

// realClose invokes the underlying driver close, quiet on error, and
// bumps realCloseds. This is the only place a probedConn's raw session is
// ever torn down.
func (c *probedConn) realClose() {
	if err := c.raw.Close(); err != nil {
		c.pool.logf("real-close failed for conn %s: %v", c.id, err)
	}
	c.pool.stats.incRealCloseds()
}

// Conn is the handle a caller receives from Pool.Borrow. It delegates
// session use to the underlying driver connection and, on Close, routes
// back into the pool's return path instead of tearing down the session.
type Conn struct {
	probed *probedConn
	done   bool
}

// Execute runs sql against the underlying session. This is the one
// pass-through operation the core exposes directly; no prepared
// statements, transactions or row scanning are offered here or through
// Raw.
func (c *Conn) Execute(ctx context.Context, sql string) error {
	return c.probed.raw.Execute(ctx, sql)
}

// Raw exposes the underlying driver.RawConnection, which offers only
// IsAlive, Execute and Close.
func (c *Conn) Raw() driver.RawConnection {
	return c.probed.raw
}

// Close returns the connection to the pool rather than closing the
// underlying session. Safe to call more than once; only the first call
// has an effect.
func (c *Conn) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	return c.probed.pool.returnConn(c.probed)
}
