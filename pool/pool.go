// Package pool implements the bounded idle queue, borrow/return protocol,
// liveness checks, and maintenance task that make up the core of
// blinkpool: a small concurrent state machine with multiple producers
// and consumers, governed by one invariant —
//
//	idle queue size + borrowing <= maxPoolSize
//
// — which the borrow/return ordering guarantees below never violate.
package pool

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blinkpool/blinkpool/config"
	"github.com/blinkpool/blinkpool/driver"
)

// maintenanceInterval is how often the single maintenance worker wakes.
const maintenanceInterval = 5 * time.Second

// Pool is the bounded pool of reusable database connections. The zero
// value is not usable — construct with New.
type Pool struct {
	cfg     config.Config
	factory driver.Factory

	idle      chan *probedConn
	borrowing atomic.Int64
	creationMu sync.Mutex

	stats Stats

	closed    atomic.Bool
	closeOnce sync.Once

	lastActiveNanos atomic.Int64

	maintDone chan struct{}
	maintWG   sync.WaitGroup
}

// New validates cfg, opens one connection synchronously (so
// misconfiguration surfaces from the constructor, not lazily), fills the
// rest of minIdle per cfg.AsyncInitIdle, and starts the maintenance
// scheduler.
func New(cfg *config.Config, factory driver.Factory) (*Pool, error) {
	if err := cfg.ValidateAndNormalise(); err != nil {
		return nil, err
	}

	p := &Pool{
		cfg:       *cfg,
		factory:   factory,
		idle:      make(chan *probedConn, cfg.MaxPoolSize),
		maintDone: make(chan struct{}),
	}
	p.stampActive(time.Now())

	ctx := context.Background()
	if _, err := p.createOne(ctx); err != nil {
		return nil, err
	}

	if p.cfg.MinIdle > 1 {
		if p.cfg.AsyncInitIdle {
			go p.fillToMinIdle(context.Background())
		} else {
			p.fillToMinIdle(ctx)
		}
	}

	p.maintWG.Add(1)
	go p.maintenanceLoop()

	return p, nil
}

// Borrow hands out a probed connection: non-blocking take, best-effort
// background refill on miss, bounded wait, liveness check with a single
// replacement attempt on failure.
func (p *Pool) Borrow(ctx context.Context) (*Conn, error) {
	if p.closed.Load() {
		return nil, &PoolClosedError{}
	}

	start := time.Now()
	var c *probedConn

	select {
	case c = <-p.idle:
	default:
		if p.borrowing.Load() < int64(p.cfg.MaxPoolSize) {
			go p.fillToMinIdle(context.Background())
		}

		timer := time.NewTimer(time.Duration(p.cfg.BorrowTimeoutMillis) * time.Millisecond)
		defer timer.Stop()

		select {
		case c = <-p.idle:
		case <-timer.C:
			return nil, &BorrowTimeoutError{}
		case <-ctx.Done():
			return nil, &InterruptedError{}
		}
	}

	p.borrowing.Add(1)

	if c.isAvailable(ctx) {
		return p.handOut(c, start), nil
	}

	// Dead or expired. Discard and make exactly one replacement attempt —
	// no retry loop.
	p.borrowing.Add(-1)
	p.stats.incInvalids()
	c.realClose()

	fresh, err := p.createDirect(ctx)
	if err != nil {
		return nil, err
	}
	p.borrowing.Add(1)
	return p.handOut(fresh, start), nil
}

// handOut finalises a successful borrow: stats, timestamps, activity
// stamp, and wrapping in the caller-facing handle.
func (p *Pool) handOut(c *probedConn, waitStart time.Time) *Conn {
	now := time.Now()
	c.lastBorrowTime = now
	p.stats.incBorrows()
	p.stats.addWaitNanos(int64(now.Sub(waitStart)))
	p.stampActive(now)
	return &Conn{probed: c}
}

// returnConn is invoked by Conn.Close. Ordering matters: borrowing is
// decremented before the idle-queue offer (or before the closed-path
// discard), so queue.size()+borrowing is never inflated by a return in
// flight.
func (p *Pool) returnConn(c *probedConn) error {
	now := time.Now()
	p.stats.addUsedNanos(int64(now.Sub(c.lastBorrowTime)))
	p.stampActive(now)
	p.borrowing.Add(-1)

	if p.closed.Load() {
		c.realClose()
		return nil
	}

	select {
	case p.idle <- c:
		p.stats.incReturns()
	default:
		// Idle queue at capacity — a legitimate outcome when racing with
		// the maintenance task's own trim.
		p.logf("idle queue full, closing returned conn %s", c.id)
		c.realClose()
	}
	return nil
}

// createOneLocked performs the single-creation routine assuming
// creationMu is already held: re-check the population invariant, open a
// raw connection, wrap it, and offer it to the idle queue. Returns
// (nil, nil) when the population invariant already holds at the ceiling
// (a legitimate no-op, not an error).
func (p *Pool) createOneLocked(ctx context.Context) (*probedConn, error) {
	if int64(len(p.idle))+p.borrowing.Load() >= int64(p.cfg.MaxPoolSize) {
		return nil, nil
	}

	raw, err := p.factory(ctx, p.cfg.JdbcURL, p.cfg.Username, p.cfg.Password)
	if err != nil {
		return nil, &ConnectError{Cause: err}
	}

	c := newProbedConn(p, raw, p.cfg.MaxLifetimeMillis)

	select {
	case p.idle <- c:
	default:
		c.realClose()
		return nil, nil
	}

	p.stats.incCreations()
	return c, nil
}

// createOne takes the creation lock and runs the single-creation routine.
func (p *Pool) createOne(ctx context.Context) (*probedConn, error) {
	p.creationMu.Lock()
	defer p.creationMu.Unlock()
	return p.createOneLocked(ctx)
}

// createDirect opens a fresh connection and hands it back without ever
// publishing it to the idle queue — used only by Borrow's single
// replacement attempt. Borrow decrements borrowing before this call and
// re-increments it after, so no population slot is held while the
// connection opens, and the ceiling re-check of createOneLocked is not
// applied here.
func (p *Pool) createDirect(ctx context.Context) (*probedConn, error) {
	raw, err := p.factory(ctx, p.cfg.JdbcURL, p.cfg.Username, p.cfg.Password)
	if err != nil {
		return nil, &ConnectError{Cause: err}
	}
	c := newProbedConn(p, raw, p.cfg.MaxLifetimeMillis)
	p.stats.incCreations()
	return c, nil
}

// fillToMinIdle is the population-fill routine: under the creation lock,
// keep single-creating while the idle queue is under minIdle. The lock
// serialises concurrent fillers (the background refill spawned by Borrow
// and the maintenance task's own post-trim refill); without it, two
// callers both observing an empty queue could overshoot minIdle.
func (p *Pool) fillToMinIdle(ctx context.Context) {
	p.creationMu.Lock()
	defer p.creationMu.Unlock()

	for len(p.idle) < p.cfg.MinIdle {
		c, err := p.createOneLocked(ctx)
		if err != nil {
			p.logf("population-fill: %v", err)
			return
		}
		if c == nil {
			return // ceiling reached; nothing more to do right now
		}
	}
}

// maintenanceLoop runs on its own goroutine for the pool's lifetime,
// waking every maintenanceInterval.
func (p *Pool) maintenanceLoop() {
	defer p.maintWG.Done()

	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.maintDone:
			return
		case <-ticker.C:
			p.runMaintenanceCycle()
		}
	}
}

// runMaintenanceCycle trims excess idle connections and refills below
// minIdle. One bad cycle (a panicking driver callback, say) must not
// stop the scheduler, so panics are recovered and logged here.
func (p *Pool) runMaintenanceCycle() {
	defer func() {
		if r := recover(); r != nil {
			p.logf("maintenance cycle panic recovered: %v", r)
		}
	}()

	if p.closed.Load() {
		return
	}

	lastActive := time.Unix(0, p.lastActiveNanos.Load())
	if time.Since(lastActive) < time.Duration(p.cfg.IdleTimeoutSeconds)*time.Second {
		return // recent activity: idles are probably still wanted
	}

	p.trimToMinIdle()
	p.fillToMinIdle(context.Background())
	p.stats.FixOverflow()
}

// trimToMinIdle pops and real-closes idle connections above minIdle.
func (p *Pool) trimToMinIdle() {
	p.creationMu.Lock()
	defer p.creationMu.Unlock()

	for len(p.idle) > p.cfg.MinIdle {
		select {
		case c := <-p.idle:
			c.realClose()
		default:
			return
		}
	}
}

// Close shuts the pool down: closed borrows fail fast, the maintenance
// scheduler stops, every idle connection is real-closed, and stats are
// reset. Connections currently borrowed are not forcibly revoked; they
// real-close when returned (see returnConn's closed-path).
//
// Idempotent: a second Close is a no-op.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.maintDone)
		p.maintWG.Wait()

		for {
			select {
			case c := <-p.idle:
				c.realClose()
			default:
				p.stats.ResetAll()
				return
			}
		}
	})
	return nil
}

// IdleSize returns the current idle queue occupancy.
func (p *Pool) IdleSize() int { return len(p.idle) }

// Borrowing returns the current number of connections out with callers.
func (p *Pool) Borrowing() int64 { return p.borrowing.Load() }

// StatsSnapshot returns a point-in-time copy of every counter.
func (p *Pool) StatsSnapshot() Snapshot { return p.stats.Snapshot() }

func (p *Pool) stampActive(t time.Time) { p.lastActiveNanos.Store(t.UnixNano()) }

func (p *Pool) logf(format string, args ...interface{}) {
	log.Printf("[pool:%s] "+format, append([]interface{}{p.cfg.PoolName}, args...)...)
}
