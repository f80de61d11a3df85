package store

import (
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
)

const driverName = "sqlite3_inbound"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", casefold, true)
		},
	})
}

// casefold gives SQL full Unicode case folding, sqlite's lower() only knows ASCII.
func casefold(s string) string {
	return cases.Fold().String(s)
}

func dsn(databaseURL string) string {
	if databaseURL == ":memory:" {
		return "file::memory:?_busy_timeout=5000"
	}
	if strings.HasPrefix(databaseURL, "file:") {
		return databaseURL
	}
	return "file:" + databaseURL + "?_journal_mode=WAL&_busy_timeout=5000"
}
