package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinkpool/blinkpool"
	"github.com/blinkpool/blinkpool/config"
	"github.com/blinkpool/blinkpool/driver"
)

func TestCollectorReportsLiveGauges(t *testing.T) {
	cfg := config.Default()
	cfg.JdbcURL = "jdbc:mysql://u:p@localhost:3306/db"
	cfg.MinIdle = 1
	cfg.MaxPoolSize = 3

	factory := driver.NewFakeFactory()
	ds, err := blinkpool.New(cfg, factory.Open)
	require.NoError(t, err)
	defer ds.Close()

	conn, err := ds.Borrow(context.Background())
	require.NoError(t, err)
	defer conn.Close()

	c := NewCollector(ds)
	assert.Equal(t, 9, testutil.CollectAndCount(c))

	const want = `
		# HELP blinkpool_borrowed_connections Current number of connections out with callers.
		# TYPE blinkpool_borrowed_connections gauge
		blinkpool_borrowed_connections 1
	`
	assert.NoError(t, testutil.CollectAndCompare(
		c, strings.NewReader(want), "blinkpool_borrowed_connections",
	))
}
