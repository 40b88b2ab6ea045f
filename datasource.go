// Package blinkpool is a lightweight, high-performance pool of reusable
// database connections. It amortises the cost of establishing a database
// session across many short-lived logical uses by keeping a bounded
// population of already-opened connections, handing them out on demand
// and reclaiming them when callers are done.
package blinkpool

import (
	"context"

	"github.com/blinkpool/blinkpool/config"
	"github.com/blinkpool/blinkpool/driver"
	"github.com/blinkpool/blinkpool/pool"
)

// DataSource is the external entry point: it validates configuration,
// constructs the pool, and exposes Borrow, metrics accessors, and Close.
type DataSource struct {
	p *pool.Pool
}

// New validates cfg and constructs a DataSource backed by factory. The
// returned error is a *config.ConfigError or *pool.ConnectError when
// construction fails.
func New(cfg *config.Config, factory driver.Factory) (*DataSource, error) {
	p, err := pool.New(cfg, factory)
	if err != nil {
		return nil, err
	}
	return &DataSource{p: p}, nil
}

// Borrow obtains a connection, waiting up to the configured
// borrowTimeout when the pool is saturated. ctx cancellation while
// waiting surfaces as *pool.InterruptedError rather than a timeout.
func (ds *DataSource) Borrow(ctx context.Context) (*pool.Conn, error) {
	return ds.p.Borrow(ctx)
}

// Close shuts the pool down. Idempotent.
func (ds *DataSource) Close() error {
	return ds.p.Close()
}

// Metrics is a point-in-time read of every counter and gauge the pool
// exposes.
type Metrics struct {
	CurrentPoolSize   int   `json:"currentPoolSize"`
	CurrentBorrowings int64 `json:"currentBorrowings"`
	TotalCreations    int64 `json:"totalCreations"`
	TotalRealCloseds  int64 `json:"totalRealCloseds"`
	TotalBorrows      int64 `json:"totalBorrows"`
	TotalReturns      int64 `json:"totalReturns"`
	TotalInvalids     int64 `json:"totalInvalids"`
	BorrowWaitMillis  int64 `json:"borrowWaitMillis"`
	InUseMillis       int64 `json:"inUseMillis"`
}

// Metrics returns a snapshot combining the live idle/borrowing gauges
// with the cumulative stats counters.
func (ds *DataSource) Metrics() Metrics {
	snap := ds.p.StatsSnapshot()
	return Metrics{
		CurrentPoolSize:   ds.p.IdleSize(),
		CurrentBorrowings: ds.p.Borrowing(),
		TotalCreations:    snap.Creations,
		TotalRealCloseds:  snap.RealCloseds,
		TotalBorrows:      snap.Borrows,
		TotalReturns:      snap.Returns,
		TotalInvalids:     snap.Invalids,
		BorrowWaitMillis:  snap.CumulativeWaitMs,
		InUseMillis:       snap.CumulativeUsedMs,
	}
}

// Pool exposes the underlying *pool.Pool for callers that need direct
// access to live gauges and stats beyond the Metrics snapshot above. The
// metrics and events packages read only Metrics.
func (ds *DataSource) Pool() *pool.Pool { return ds.p }
