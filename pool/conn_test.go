package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinkpool/blinkpool/config"
	"github.com/blinkpool/blinkpool/driver"
)

// Law: expirationTime falls within [creation + 0.8*maxLifetime, creation + maxLifetime).
func TestExpirationWindow(t *testing.T) {
	p := &Pool{cfg: config.Config{MaxLifetimeMillis: 60_000}}
	before := time.Now()
	c := newProbedConn(p, &driver.FakeConnection{}, p.cfg.MaxLifetimeMillis)
	after := time.Now()

	lo := before.Add(48 * time.Second) // 0.8 * 60s
	hi := after.Add(60 * time.Second)

	assert.True(t, !c.expirationTime.Before(lo))
	assert.True(t, c.expirationTime.Before(hi))
}

// Law: with checkInterval = T, fewer than 1 + elapsed/T probes occur per
// connection over elapsed time.
func TestProbeSkipping(t *testing.T) {
	cfg := config.Default()
	cfg.JdbcURL = "jdbc:mysql://u:p@localhost/db"
	cfg.CheckIntervalMillis = 500 // the smallest positive interval the config accepts
	require.NoError(t, cfg.ValidateAndNormalise())

	factory := driver.NewFakeFactory()
	p, err := New(cfg, factory.Open)
	require.NoError(t, err)
	defer p.Close()

	conn, err := p.Borrow(context.Background())
	require.NoError(t, err)
	probed := conn.probed

	// Count actual probes by watching lastCheckTime transitions while
	// polling isAvailable much faster than checkInterval.
	var transitions int
	last := probed.lastCheckTime
	start := time.Now()
	for time.Since(start) < 1100*time.Millisecond {
		probed.isAvailable(context.Background())
		if probed.lastCheckTime != last {
			transitions++
			last = probed.lastCheckTime
		}
		time.Sleep(5 * time.Millisecond)
	}

	maxExpected := 1 + int(1100/500) + 1 // +1 slack for boundary timing
	assert.LessOrEqual(t, transitions, maxExpected)
}

func TestIsAvailableExpired(t *testing.T) {
	p := &Pool{cfg: config.Config{MaxLifetimeMillis: 60_000, CheckIntervalMillis: -1}}
	c := newProbedConn(p, &driver.FakeConnection{}, p.cfg.MaxLifetimeMillis)
	c.expirationTime = time.Now().Add(-time.Millisecond)

	assert.False(t, c.isAvailable(context.Background()))
}

func TestIsAvailableChecksDisabled(t *testing.T) {
	p := &Pool{cfg: config.Config{MaxLifetimeMillis: 60_000, CheckIntervalMillis: -1}}
	raw := &driver.FakeConnection{}
	raw.Kill() // even a dead raw connection reports available when checks are disabled
	c := newProbedConn(p, raw, p.cfg.MaxLifetimeMillis)

	assert.True(t, c.isAvailable(context.Background()))
}
