package blinkpool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinkpool/blinkpool/config"
	"github.com/blinkpool/blinkpool/driver"
)

func TestDataSourceBorrowCloseRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.JdbcURL = "jdbc:mysql://u:p@localhost:3306/db"
	cfg.MinIdle = 2
	cfg.MaxPoolSize = 5

	factory := driver.NewFakeFactory()
	ds, err := New(cfg, factory.Open)
	require.NoError(t, err)
	defer ds.Close()

	assert.Equal(t, 2, ds.Metrics().CurrentPoolSize)

	conn, err := ds.Borrow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), ds.Metrics().CurrentBorrowings)

	require.NoError(t, conn.Close())
	assert.Equal(t, int64(0), ds.Metrics().CurrentBorrowings)
}

func TestDataSourceCloseIsIdempotent(t *testing.T) {
	cfg := config.Default()
	cfg.JdbcURL = "jdbc:mysql://u:p@localhost:3306/db"
	factory := driver.NewFakeFactory()
	ds, err := New(cfg, factory.Open)
	require.NoError(t, err)

	require.NoError(t, ds.Close())
	require.NoError(t, ds.Close())
}

func TestDataSourceConstructionPropagatesConfigError(t *testing.T) {
	cfg := &config.Config{} // blank JdbcURL
	factory := driver.NewFakeFactory()
	_, err := New(cfg, factory.Open)
	require.Error(t, err)
	assert.IsType(t, &config.ConfigError{}, err)
}
