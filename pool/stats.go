package pool

import "sync/atomic"

// Stats holds monotonic, eventually-consistent counters for a Pool.
// Over-count and under-count by small amounts during races are acceptable
// — these are diagnostic counters, never load-bearing for correctness.
type Stats struct {
	creations     atomic.Int64
	realCloseds   atomic.Int64
	borrows       atomic.Int64
	returns       atomic.Int64
	invalids      atomic.Int64
	waitNanos     atomic.Int64
	usedSumNanos  atomic.Int64
}

// Snapshot is a plain-value copy of Stats, reached by the Prometheus
// collector and the AMQP stats publisher through DataSource.Metrics. Each
// counter is loaded separately, so the fields are not read as one atomic
// unit and may reflect slightly different moments.
type Snapshot struct {
	Creations          int64
	RealCloseds        int64
	Borrows            int64
	Returns            int64
	Invalids           int64
	CumulativeWaitMs   int64
	CumulativeUsedMs   int64
}

// Snapshot returns the current values of every counter.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Creations:        s.creations.Load(),
		RealCloseds:      s.realCloseds.Load(),
		Borrows:          s.borrows.Load(),
		Returns:          s.returns.Load(),
		Invalids:         s.invalids.Load(),
		CumulativeWaitMs: s.waitNanos.Load() / 1e6,
		CumulativeUsedMs: s.usedSumNanos.Load() / 1e6,
	}
}

func (s *Stats) incCreations()        { s.creations.Add(1) }
func (s *Stats) incRealCloseds()      { s.realCloseds.Add(1) }
func (s *Stats) incBorrows()          { s.borrows.Add(1) }
func (s *Stats) incReturns()          { s.returns.Add(1) }
func (s *Stats) incInvalids()         { s.invalids.Add(1) }
func (s *Stats) addWaitNanos(n int64) { s.waitNanos.Add(n) }
func (s *Stats) addUsedNanos(n int64) { s.usedSumNanos.Add(n) }

// FixOverflow resets any counter that has wrapped negative (a 64-bit-wrap
// sentinel that in practice never fires) back to zero. Counters are
// diagnostic, not authoritative, so this is a crude but sufficient fix.
func (s *Stats) FixOverflow() {
	fixNegative(&s.creations)
	fixNegative(&s.realCloseds)
	fixNegative(&s.borrows)
	fixNegative(&s.returns)
	fixNegative(&s.invalids)
	fixNegative(&s.waitNanos)
	fixNegative(&s.usedSumNanos)
}

func fixNegative(c *atomic.Int64) {
	if c.Load() < 0 {
		c.Store(0)
	}
}

// ResetAll zeroes every counter. Used by Pool.Close during shutdown.
func (s *Stats) ResetAll() {
	s.creations.Store(0)
	s.realCloseds.Store(0)
	s.borrows.Store(0)
	s.returns.Store(0)
	s.invalids.Store(0)
	s.waitNanos.Store(0)
	s.usedSumNanos.Store(0)
}
