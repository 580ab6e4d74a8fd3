package gateway

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// TableName is the fixed table every strategy writes to.
const TableName = "users"

// Supported driver names.
const (
	DriverSQLite3  = "sqlite3" // github.com/mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"  // modernc.org/sqlite (pure Go)
	DriverPostgres = "pgx"     // github.com/jackc/pgx/v5/stdlib
)

// Dialect captures the SQL differences between the supported stores.
type Dialect struct {
	// Driver is the database/sql driver name
	Driver string

	// MaxParams is the bound-parameter limit per statement
	MaxParams int

	// SingleWriter limits the pool to one connection (SQLite)
	SingleWriter bool

	createTable string
	upsertHead  string
	upsertTail  string
	numbered    bool
}

var dialects = map[string]*Dialect{
	DriverSQLite3: {
		Driver:       DriverSQLite3,
		MaxParams:    999,
		SingleWriter: true,
		createTable: `CREATE TABLE IF NOT EXISTS users (
        id INTEGER NOT NULL PRIMARY KEY,
        name VARCHAR NOT NULL,
        email TEXT NOT NULL
      )`,
		upsertHead: "REPLACE INTO users (id, name, email) VALUES ",
	},
	DriverSQLite: {
		Driver:       DriverSQLite,
		MaxParams:    999,
		SingleWriter: true,
		createTable: `CREATE TABLE IF NOT EXISTS users (
        id INTEGER NOT NULL PRIMARY KEY,
        name VARCHAR NOT NULL,
        email TEXT NOT NULL
      )`,
		upsertHead: "REPLACE INTO users (id, name, email) VALUES ",
	},
	DriverPostgres: {
		Driver:    DriverPostgres,
		MaxParams: 65535,
		createTable: `CREATE TABLE IF NOT EXISTS users (
        id BIGINT NOT NULL PRIMARY KEY,
        name TEXT NOT NULL,
        email TEXT NOT NULL
      )`,
		upsertHead: "INSERT INTO users (id, name, email) VALUES ",
		upsertTail: " ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email",
		numbered:   true,
	},
}

// LookupDialect returns the dialect for a driver name.
func LookupDialect(driver string) (*Dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("gateway: unsupported driver %q (must be %s, %s or %s)",
			driver, DriverSQLite3, DriverSQLite, DriverPostgres)
	}
	return d, nil
}

// Drivers lists the supported driver names.
func Drivers() []string {
	return []string{DriverSQLite3, DriverSQLite, DriverPostgres}
}

// placeholder returns the n-th (1-based) bind marker.
func (d *Dialect) placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// rowsPerStatement is how many three-column rows fit in one statement.
func (d *Dialect) rowsPerStatement() int {
	return d.MaxParams / 3
}

// valuesList renders "(?, ?, ?), (?, ?, ?)" for rows records.
func (d *Dialect) valuesList(rows int) string {
	var sb strings.Builder
	n := 1
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "(%s, %s, %s)", d.placeholder(n), d.placeholder(n+1), d.placeholder(n+2))
		n += 3
	}
	return sb.String()
}

func (d *Dialect) upsertSQL(rows int) string {
	return d.upsertHead + d.valuesList(rows) + d.upsertTail
}

func (d *Dialect) insertSQL(rows int) string {
	return "INSERT INTO users (id, name, email) VALUES " + d.valuesList(rows)
}

func (d *Dialect) updateSQL() string {
	return fmt.Sprintf("UPDATE users SET name = %s, email = %s WHERE id = %s",
		d.placeholder(1), d.placeholder(2), d.placeholder(3))
}

func (d *Dialect) existsSQL(ids int) string {
	var sb strings.Builder
	sb.WriteString("SELECT id FROM users WHERE id IN (")
	for i := 1; i <= ids; i++ {
		if i > 1 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.placeholder(i))
	}
	sb.WriteString(")")
	return sb.String()
}

func (d *Dialect) getSQL() string {
	return "SELECT id, name, email FROM users WHERE id = " + d.placeholder(1)
}

func (d *Dialect) listSQL() string {
	return "SELECT id, name, email FROM users ORDER BY id LIMIT " + d.placeholder(1)
}

// dataSourceName applies the journal and busy-timeout settings to a SQLite
// path. Postgres URLs and DSNs that already carry options pass through.
func (d *Dialect) dataSourceName(dsn, journalMode string, busyTimeoutMs int) string {
	if !d.SingleWriter || strings.Contains(dsn, "?") || dsn == ":memory:" {
		return dsn
	}

	switch d.Driver {
	case DriverSQLite3:
		return fmt.Sprintf("%s?_journal_mode=%s&_busy_timeout=%d", dsn, journalMode, busyTimeoutMs)
	default:
		return fmt.Sprintf("%s?_pragma=journal_mode(%s)&_pragma=busy_timeout(%d)", dsn, journalMode, busyTimeoutMs)
	}
}

// chunkRecords splits records into slices of at most size rows.
func chunkRecords[T any](records []T, size int) [][]T {
	if size <= 0 {
		size = len(records)
	}
	var chunks [][]T
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}
