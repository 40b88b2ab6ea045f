package driver

import (
	"context"
	"database/sql/driver"
	"fmt"
	"net/url"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

// mysqlConn adapts a single un-pooled database/sql/driver.Conn, obtained
// directly from go-sql-driver/mysql's driver.Connector, to RawConnection.
//
// This deliberately bypasses database/sql's own connection pool: calling
// Connector.Connect(ctx) hands back one driver.Conn that database/sql
// itself never sees, so the blinkpool core is the only pool in play.
type mysqlConn struct {
	conn driver.Conn
}

// OpenMySQL is a Factory that opens a single raw MySQL session from a
// "jdbc:mysql://host:port/dbname?param=value" URL. Credentials come from
// the username and password arguments; any user:pass part in the URL is
// ignored.
func OpenMySQL(ctx context.Context, jdbcURL, username, password string) (RawConnection, error) {
	cfg, err := parseMySQLJDBC(jdbcURL, username, password)
	if err != nil {
		return nil, fmt.Errorf("driver: invalid mysql jdbc url: %w", err)
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("driver: building mysql connector: %w", err)
	}

	conn, err := connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("driver: opening mysql session: %w", err)
	}

	return &mysqlConn{conn: conn}, nil
}

func parseMySQLJDBC(jdbcURL, username, password string) (*mysql.Config, error) {
	rest := strings.TrimPrefix(jdbcURL, "jdbc:")
	u, err := url.Parse(rest)
	if err != nil {
		return nil, err
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.User = username
	cfg.Passwd = password
	cfg.ParseTime = true

	if q := u.Query(); len(q) > 0 {
		params := make(map[string]string, len(q))
		for k := range q {
			params[k] = q.Get(k)
		}
		cfg.Params = params
	}

	return cfg, nil
}

func (m *mysqlConn) IsAlive(ctx context.Context, timeout int) (bool, error) {
	pinger, ok := m.conn.(driver.Pinger)
	if !ok {
		// Driver doesn't support Ping; fall back to a trivial probe.
		return m.Execute(ctx, "/* blinkpool liveness probe */ SELECT 1") == nil, nil
	}

	ctx, cancel := withSecondsTimeout(ctx, timeout)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (m *mysqlConn) Execute(ctx context.Context, sql string) error {
	execer, ok := m.conn.(driver.ExecerContext)
	if !ok {
		return fmt.Errorf("driver: underlying connection does not support ExecerContext")
	}
	_, err := execer.ExecContext(ctx, sql, nil)
	return err
}

func (m *mysqlConn) Close() error {
	return m.conn.Close()
}
