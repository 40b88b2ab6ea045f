package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMySQLJDBC(t *testing.T) {
	cfg, err := parseMySQLJDBC("jdbc:mysql://localhost:3306/blinkdb?parseTime=true", "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "localhost:3306", cfg.Addr)
	assert.Equal(t, "blinkdb", cfg.DBName)
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "true", cfg.Params["parseTime"])
}

func TestParseMySQLJDBCRejectsGarbage(t *testing.T) {
	_, err := parseMySQLJDBC("jdbc:mysql://%zz", "u", "p")
	require.Error(t, err)
}
