package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndNormaliseDefaults(t *testing.T) {
	c := &Config{JdbcURL: "jdbc:mysql://localhost:3306/db"}
	require.NoError(t, c.ValidateAndNormalise())

	assert.Equal(t, DefaultPoolName, c.PoolName)
	assert.Equal(t, "mysql", c.DriverClassName)
	assert.Equal(t, DefaultMinIdle, c.MinIdle)
	assert.Equal(t, DefaultMaxPoolSize, c.MaxPoolSize)
	assert.Equal(t, DefaultIdleTimeoutSeconds, c.IdleTimeoutSeconds)
	assert.Equal(t, int64(DefaultMaxLifetimeMillis), c.MaxLifetimeMillis)
	assert.Equal(t, DefaultBorrowTimeoutMillis, int(c.BorrowTimeoutMillis))
}

func TestValidateRejectsBlankURL(t *testing.T) {
	c := &Config{}
	err := c.ValidateAndNormalise()
	require.Error(t, err)
	assert.IsType(t, &ConfigError{}, err)
}

func TestValidateRejectsNonJdbcScheme(t *testing.T) {
	c := &Config{JdbcURL: "mysql://localhost/db"}
	err := c.ValidateAndNormalise()
	require.Error(t, err)
}

func TestValidateRejectsUnknownScheme(t *testing.T) {
	c := &Config{JdbcURL: "jdbc:notarealdriver://localhost/db"}
	err := c.ValidateAndNormalise()
	require.Error(t, err)
}

func TestValidateSwapsReversedMinIdleMaxPoolSize(t *testing.T) {
	c := &Config{JdbcURL: "jdbc:mysql://localhost/db", MinIdle: 30, MaxPoolSize: 10}
	require.NoError(t, c.ValidateAndNormalise())
	assert.Equal(t, 10, c.MinIdle)
	assert.Equal(t, 30, c.MaxPoolSize)
}

func TestValidateClampsBelowMinima(t *testing.T) {
	c := &Config{
		JdbcURL:             "jdbc:mysql://localhost/db",
		IdleTimeoutSeconds:  1,
		MaxLifetimeMillis:   1000,
		CheckIntervalMillis: 100,
	}
	require.NoError(t, c.ValidateAndNormalise())
	assert.Equal(t, minIdleTimeoutSeconds, c.IdleTimeoutSeconds)
	assert.Equal(t, int64(minMaxLifetimeMillis), c.MaxLifetimeMillis)
	assert.Equal(t, int64(minCheckIntervalMillis), c.CheckIntervalMillis)
}

func TestValidatePreservesCheckIntervalSpecialValues(t *testing.T) {
	disabled := &Config{JdbcURL: "jdbc:mysql://localhost/db", CheckIntervalMillis: -1}
	require.NoError(t, disabled.ValidateAndNormalise())
	assert.Equal(t, int64(-1), disabled.CheckIntervalMillis)

	forced := &Config{JdbcURL: "jdbc:mysql://localhost/db", CheckIntervalMillis: 0}
	require.NoError(t, forced.ValidateAndNormalise())
	assert.Equal(t, int64(0), forced.CheckIntervalMillis)
}

func TestKnownSchemeInference(t *testing.T) {
	for scheme, driver := range schemeDrivers {
		c := &Config{JdbcURL: "jdbc:" + scheme + "://localhost/db"}
		require.NoError(t, c.ValidateAndNormalise())
		assert.Equal(t, driver, c.DriverClassName)
	}
}
