package db

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

func isURLDSN(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

// NormalizeDSN trims quotes and whitespace from DATABASE_DSN. Key=value lists
// get their spacing collapsed and sslmode=disable when no sslmode is given.
func NormalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	if s == "" || isURLDSN(s) || !strings.Contains(s, "=") {
		return s
	}
	s = strings.Join(strings.Fields(s), " ")
	if !strings.Contains(strings.ToLower(s), "sslmode=") {
		s += " sslmode=disable"
	}
	return s
}

// MigrateURL returns dsn in the postgres:// form golang-migrate requires.
func MigrateURL(dsn string) (string, error) {
	if isURLDSN(dsn) {
		return dsn, nil
	}
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.Database == "" {
		return "", errors.New("parse dsn: dbname is required")
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port))),
		Path:   "/" + cfg.Database,
		User:   url.User(cfg.User),
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	for _, f := range strings.Fields(dsn) {
		if k, v, ok := strings.Cut(f, "="); ok && strings.EqualFold(k, "sslmode") {
			u.RawQuery = url.Values{"sslmode": {v}}.Encode()
		}
	}
	return u.String(), nil
}
