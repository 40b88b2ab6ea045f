// Package metrics exposes a blinkpool DataSource's stats through
// Prometheus, as an additive operational surface over the dependency-free
// getters on DataSource itself — the pool works identically whether or
// not anything ever scrapes this collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinkpool/blinkpool"
)

// Collector implements prometheus.Collector over a DataSource's live
// gauges and cumulative counters.
type Collector struct {
	ds *blinkpool.DataSource

	idleSize   *prometheus.Desc
	borrowing  *prometheus.Desc
	creations  *prometheus.Desc
	realCloses *prometheus.Desc
	borrows    *prometheus.Desc
	returns    *prometheus.Desc
	invalids   *prometheus.Desc
	waitMillis *prometheus.Desc
	usedMillis *prometheus.Desc
}

// NewCollector builds a Collector for ds. Register it with a
// prometheus.Registry the same way any other collector is registered.
func NewCollector(ds *blinkpool.DataSource) *Collector {
	ns := "blinkpool"
	return &Collector{
		ds: ds,
		idleSize: prometheus.NewDesc(
			ns+"_idle_connections", "Current number of idle connections in the pool.", nil, nil),
		borrowing: prometheus.NewDesc(
			ns+"_borrowed_connections", "Current number of connections out with callers.", nil, nil),
		creations: prometheus.NewDesc(
			ns+"_creations_total", "Total connections ever created.", nil, nil),
		realCloses: prometheus.NewDesc(
			ns+"_real_closes_total", "Total connections ever real-closed.", nil, nil),
		borrows: prometheus.NewDesc(
			ns+"_borrows_total", "Total successful Borrow calls.", nil, nil),
		returns: prometheus.NewDesc(
			ns+"_returns_total", "Total connections returned to the idle queue.", nil, nil),
		invalids: prometheus.NewDesc(
			ns+"_invalid_total", "Total connections found dead or expired on Borrow.", nil, nil),
		waitMillis: prometheus.NewDesc(
			ns+"_borrow_wait_milliseconds_total", "Cumulative time callers spent waiting in Borrow.", nil, nil),
		usedMillis: prometheus.NewDesc(
			ns+"_in_use_milliseconds_total", "Cumulative time connections spent borrowed.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.idleSize
	ch <- c.borrowing
	ch <- c.creations
	ch <- c.realCloses
	ch <- c.borrows
	ch <- c.returns
	ch <- c.invalids
	ch <- c.waitMillis
	ch <- c.usedMillis
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.ds.Metrics()

	ch <- prometheus.MustNewConstMetric(c.idleSize, prometheus.GaugeValue, float64(m.CurrentPoolSize))
	ch <- prometheus.MustNewConstMetric(c.borrowing, prometheus.GaugeValue, float64(m.CurrentBorrowings))
	ch <- prometheus.MustNewConstMetric(c.creations, prometheus.CounterValue, float64(m.TotalCreations))
	ch <- prometheus.MustNewConstMetric(c.realCloses, prometheus.CounterValue, float64(m.TotalRealCloseds))
	ch <- prometheus.MustNewConstMetric(c.borrows, prometheus.CounterValue, float64(m.TotalBorrows))
	ch <- prometheus.MustNewConstMetric(c.returns, prometheus.CounterValue, float64(m.TotalReturns))
	ch <- prometheus.MustNewConstMetric(c.invalids, prometheus.CounterValue, float64(m.TotalInvalids))
	ch <- prometheus.MustNewConstMetric(c.waitMillis, prometheus.CounterValue, float64(m.BorrowWaitMillis))
	ch <- prometheus.MustNewConstMetric(c.usedMillis, prometheus.CounterValue, float64(m.InUseMillis))
}
