package mysql

import (
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const defaultPort = "3306"

// buildDSN accepts either a driver DSN ("user:pw@tcp(host:3306)/db") or an
// ADO style "Server=..;Database=..;Uid=..;Pwd=.." string. Timestamps are
// always parsed into time.Time.
func buildDSN(connection string) (string, error) {
	if fields, ok := keyValues(connection); ok {
		return fromKeyValues(fields), nil
	}
	cfg, err := mysql.ParseDSN(connection)
	if err != nil {
		return "", fmt.Errorf("mysql: parse dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func keyValues(connection string) (map[string]string, bool) {
	if !strings.Contains(connection, ";") && !strings.HasPrefix(strings.ToLower(connection), "server=") {
		return nil, false
	}
	out := map[string]string{}
	for _, part := range strings.Split(connection, ";") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return out, true
}

func fromKeyValues(fields map[string]string) string {
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := fields[k]; v != "" {
				return v
			}
		}
		return ""
	}
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	host := first("server", "host", "data source")
	port := first("port")
	if port == "" {
		port = defaultPort
	}
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = first("database", "initial catalog")
	cfg.User = first("uid", "user id", "user", "username")
	cfg.Passwd = first("pwd", "password")
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
