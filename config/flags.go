package config

import (
	"flag"
	"os"
	"strconv"
)

// FromFlags registers pool configuration flags on fs and parses args,
// starting from Default(). Call ValidateAndNormalise on the result before
// using it.
func FromFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	c := Default()

	fs.StringVar(&c.PoolName, "pool-name", c.PoolName, "Pool identifier for logs and metrics")
	fs.StringVar(&c.JdbcURL, "jdbc-url", c.JdbcURL, "Driver connection URL (jdbc:...)")
	fs.StringVar(&c.DriverClassName, "driver", c.DriverClassName, "Driver identifier (inferred from jdbc-url when empty)")
	fs.StringVar(&c.Username, "username", c.Username, "Database username")
	fs.StringVar(&c.Password, "password", c.Password, "Database password")
	fs.IntVar(&c.MinIdle, "min-idle", c.MinIdle, "Floor on idle connection count")
	fs.IntVar(&c.MaxPoolSize, "max-pool-size", c.MaxPoolSize, "Hard ceiling on total connections")
	fs.IntVar(&c.IdleTimeoutSeconds, "idle-timeout", c.IdleTimeoutSeconds, "Seconds of inactivity before trimming extra idles")
	fs.Int64Var(&c.MaxLifetimeMillis, "max-lifetime-ms", c.MaxLifetimeMillis, "Absolute ceiling on a connection's age, in ms")
	fs.Int64Var(&c.CheckIntervalMillis, "check-interval-ms", c.CheckIntervalMillis, "Minimum ms between liveness probes for a connection")
	fs.IntVar(&c.CheckTimeoutSeconds, "check-timeout", c.CheckTimeoutSeconds, "Seconds allowed for a liveness probe")
	fs.StringVar(&c.CheckSQL, "check-sql", c.CheckSQL, "SQL probe overriding the driver's native liveness call")
	fs.Int64Var(&c.BorrowTimeoutMillis, "borrow-timeout-ms", c.BorrowTimeoutMillis, "Max ms a borrow may wait when the pool is saturated")
	fs.BoolVar(&c.AsyncInitIdle, "async-init-idle", c.AsyncInitIdle, "Populate minIdle lazily on a background task")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	applyEnvOverlay(c)

	return c, nil
}

// applyEnvOverlay overrides fields with BLINKPOOL_* environment variables
// when set; env wins over flags.
func applyEnvOverlay(c *Config) {
	c.PoolName = getEnv("BLINKPOOL_POOL_NAME", c.PoolName)
	c.JdbcURL = getEnv("BLINKPOOL_JDBC_URL", c.JdbcURL)
	c.DriverClassName = getEnv("BLINKPOOL_DRIVER", c.DriverClassName)
	c.Username = getEnv("BLINKPOOL_USERNAME", c.Username)
	c.Password = getEnv("BLINKPOOL_PASSWORD", c.Password)
	c.MinIdle = getEnvInt("BLINKPOOL_MIN_IDLE", c.MinIdle)
	c.MaxPoolSize = getEnvInt("BLINKPOOL_MAX_POOL_SIZE", c.MaxPoolSize)
	c.IdleTimeoutSeconds = getEnvInt("BLINKPOOL_IDLE_TIMEOUT", c.IdleTimeoutSeconds)
	c.MaxLifetimeMillis = getEnvInt64("BLINKPOOL_MAX_LIFETIME_MS", c.MaxLifetimeMillis)
	c.CheckIntervalMillis = getEnvInt64("BLINKPOOL_CHECK_INTERVAL_MS", c.CheckIntervalMillis)
	c.CheckTimeoutSeconds = getEnvInt("BLINKPOOL_CHECK_TIMEOUT", c.CheckTimeoutSeconds)
	c.CheckSQL = getEnv("BLINKPOOL_CHECK_SQL", c.CheckSQL)
	c.BorrowTimeoutMillis = getEnvInt64("BLINKPOOL_BORROW_TIMEOUT_MS", c.BorrowTimeoutMillis)
	c.AsyncInitIdle = getEnvBool("BLINKPOOL_ASYNC_INIT_IDLE", c.AsyncInitIdle)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
