package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFlagsParsesOverrides(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c, err := FromFlags(fs, []string{
		"-jdbc-url=jdbc:mysql://localhost:3306/db",
		"-min-idle=3",
		"-max-pool-size=7",
	})
	require.NoError(t, err)
	assert.Equal(t, "jdbc:mysql://localhost:3306/db", c.JdbcURL)
	assert.Equal(t, 3, c.MinIdle)
	assert.Equal(t, 7, c.MaxPoolSize)
}

func TestEnvOverlayOverridesFlags(t *testing.T) {
	t.Setenv("BLINKPOOL_MIN_IDLE", "9")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c, err := FromFlags(fs, []string{"-min-idle=3"})
	require.NoError(t, err)
	assert.Equal(t, 9, c.MinIdle)
}
