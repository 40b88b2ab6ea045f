// Package config holds the validated, immutable tunables for a blinkpool
// connection pool. Configuration is loaded from defaults, command line
// flags, and environment variables (in that precedence order, each
// overriding the previous) and is validated exactly once before the pool
// is constructed.
package config

import (
	"fmt"
	"log"
	"strings"
)

// Config is the full set of pool tunables. A zero Config is not usable —
// call Default() or ValidateAndNormalise() to obtain one with defaults
// applied.
type Config struct {
	// PoolName identifies this pool in logs and metrics.
	PoolName string

	// JdbcURL is the driver connection URL. Must begin with "jdbc:".
	JdbcURL string

	// DriverClassName identifies the driver. Inferred from JdbcURL's
	// scheme when empty.
	DriverClassName string

	Username string
	Password string

	// MinIdle is the floor on idle connection count.
	MinIdle int

	// MaxPoolSize is the hard ceiling on total (idle + in-use) connections.
	MaxPoolSize int

	// IdleTimeoutSeconds is how long the pool must see no borrow or
	// return before the maintenance task trims idle connections above
	// MinIdle.
	IdleTimeoutSeconds int

	// MaxLifetimeMillis is the absolute ceiling on a connection's
	// wall-clock age.
	MaxLifetimeMillis int64

	// CheckIntervalMillis is the minimum time between liveness probes
	// for the same connection. <0 disables probing, 0 forces a probe on
	// every borrow, >0 must be >= 500.
	CheckIntervalMillis int64

	// CheckTimeoutSeconds is how long a liveness probe may take.
	CheckTimeoutSeconds int

	// CheckSQL overrides the driver's native liveness call with a query.
	CheckSQL string

	// BorrowTimeoutMillis bounds how long Borrow may wait when the pool
	// is saturated.
	BorrowTimeoutMillis int64

	// AsyncInitIdle, when true, fills MinIdle on a background goroutine
	// during construction instead of synchronously.
	AsyncInitIdle bool
}

// Package-level defaults.
const (
	DefaultPoolName            = "blink-pool"
	DefaultMinIdle             = 10
	DefaultMaxPoolSize         = 20
	DefaultIdleTimeoutSeconds  = 60
	DefaultMaxLifetimeMillis   = 1_800_000
	DefaultCheckIntervalMillis = 2_000
	DefaultCheckTimeoutSeconds = 5
	DefaultBorrowTimeoutMillis = 30_000

	minIdleTimeoutSeconds  = 10
	minMaxLifetimeMillis   = 60_000
	minCheckIntervalMillis = 500
)

// Default returns a Config populated with the package defaults. JdbcURL,
// Username, and Password are left empty — callers must set them before
// validating.
func Default() *Config {
	return &Config{
		PoolName:            DefaultPoolName,
		MinIdle:             DefaultMinIdle,
		MaxPoolSize:         DefaultMaxPoolSize,
		IdleTimeoutSeconds:  DefaultIdleTimeoutSeconds,
		MaxLifetimeMillis:   DefaultMaxLifetimeMillis,
		CheckIntervalMillis: DefaultCheckIntervalMillis,
		CheckTimeoutSeconds: DefaultCheckTimeoutSeconds,
		BorrowTimeoutMillis: DefaultBorrowTimeoutMillis,
	}
}

// ConfigError reports a configuration that failed validation.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Msg)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// schemeDrivers maps a jdbc URL scheme to its driver identifier.
var schemeDrivers = map[string]string{
	"postgresql":    "postgresql",
	"mysql":         "mysql",
	"hsqldb":        "hsqldb",
	"h2":            "h2",
	"oracle":        "oracle",
	"sqlserver":     "sqlserver",
	"sybase":        "sybase",
	"db2":           "db2",
	"jtds":          "jtds",
	"kingbase8":     "kingbase8",
	"uxdb":          "uxdb",
	"dm":            "dm",
	"informix-sqli": "informix-sqli",
	"log4jdbc":      "log4jdbc",
}

// ValidateAndNormalise validates c in place and clamps/defaults numeric
// fields, returning a *ConfigError on the first violation found.
//
// Zero numeric fields are coerced to their defaults, not treated as
// explicit zero, except CheckIntervalMillis, where zero is kept and means
// "probe on every borrow". Fields below their minima are raised to the
// minimum.
// minIdle and maxPoolSize are swapped (with a warning) when reversed.
func (c *Config) ValidateAndNormalise() error {
	if strings.TrimSpace(c.PoolName) == "" {
		c.PoolName = DefaultPoolName
	}

	if strings.TrimSpace(c.JdbcURL) == "" {
		return &ConfigError{Field: "jdbcUrl", Msg: "must not be blank"}
	}
	if !strings.HasPrefix(c.JdbcURL, "jdbc:") {
		return &ConfigError{Field: "jdbcUrl", Msg: "must begin with jdbc:"}
	}

	if c.DriverClassName == "" {
		driver, err := inferDriver(c.JdbcURL)
		if err != nil {
			return err
		}
		c.DriverClassName = driver
	}

	if c.MinIdle < 0 {
		return &ConfigError{Field: "minIdle", Msg: "must be >= 0"}
	}
	if c.MaxPoolSize < 0 {
		return &ConfigError{Field: "maxPoolSize", Msg: "must be >= 0"}
	}
	if c.IdleTimeoutSeconds < 0 {
		return &ConfigError{Field: "idleTimeout", Msg: "must be >= 0"}
	}
	if c.MaxLifetimeMillis < 0 {
		return &ConfigError{Field: "maxLifetime", Msg: "must be >= 0"}
	}
	if c.CheckTimeoutSeconds < 0 {
		return &ConfigError{Field: "checkTimeout", Msg: "must be >= 0"}
	}
	if c.BorrowTimeoutMillis < 0 {
		return &ConfigError{Field: "borrowTimeout", Msg: "must be >= 0"}
	}

	if c.MaxPoolSize == 0 {
		c.MaxPoolSize = DefaultMaxPoolSize
	}
	if c.MaxPoolSize < 1 {
		c.MaxPoolSize = 1
	}

	if c.MinIdle == 0 {
		c.MinIdle = DefaultMinIdle
	}

	if c.MinIdle > c.MaxPoolSize {
		log.Printf("[config] minIdle (%d) > maxPoolSize (%d), swapping", c.MinIdle, c.MaxPoolSize)
		c.MinIdle, c.MaxPoolSize = c.MaxPoolSize, c.MinIdle
	}

	if c.IdleTimeoutSeconds == 0 {
		c.IdleTimeoutSeconds = DefaultIdleTimeoutSeconds
	}
	if c.IdleTimeoutSeconds < minIdleTimeoutSeconds {
		c.IdleTimeoutSeconds = minIdleTimeoutSeconds
	}

	if c.MaxLifetimeMillis == 0 {
		c.MaxLifetimeMillis = DefaultMaxLifetimeMillis
	}
	if c.MaxLifetimeMillis < minMaxLifetimeMillis {
		c.MaxLifetimeMillis = minMaxLifetimeMillis
	}

	// checkInterval: <0 disables probing, 0 forces a probe on every borrow,
	// >0 is clamped to the minimum. Both special values are left untouched.
	if c.CheckIntervalMillis > 0 && c.CheckIntervalMillis < minCheckIntervalMillis {
		c.CheckIntervalMillis = minCheckIntervalMillis
	}

	if c.CheckTimeoutSeconds == 0 {
		c.CheckTimeoutSeconds = DefaultCheckTimeoutSeconds
	}

	if c.BorrowTimeoutMillis == 0 {
		c.BorrowTimeoutMillis = DefaultBorrowTimeoutMillis
	}

	return nil
}

// inferDriver derives a driver identifier from the jdbc URL's scheme,
// e.g. "jdbc:mysql://host/db" -> "mysql".
func inferDriver(jdbcURL string) (string, error) {
	rest := strings.TrimPrefix(jdbcURL, "jdbc:")
	idx := strings.IndexAny(rest, ":/")
	if idx <= 0 {
		return "", &ConfigError{Field: "jdbcUrl", Msg: "cannot determine driver from URL scheme"}
	}
	scheme := rest[:idx]
	driver, ok := schemeDrivers[scheme]
	if !ok {
		return "", &ConfigError{Field: "driverClassName", Msg: fmt.Sprintf("unknown scheme %q and no driver supplied", scheme)}
	}
	return driver, nil
}
