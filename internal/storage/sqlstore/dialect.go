package sqlstore

import (
	"database/sql"
	"fmt"
)

// Dialect carries the per-engine DDL. DML is shared: both engines bind "?".
type Dialect struct {
	Driver          string
	createEmployees string
	createReviews   string
}

var (
	MySQL  = Dialect{Driver: "mysql", createEmployees: createEmployeesMySQL, createReviews: createReviewsMySQL}
	SQLite = Dialect{Driver: "sqlite3", createEmployees: createEmployeesSQLite, createReviews: createReviewsSQLite}
)

// DialectFor maps a database/sql driver name onto its Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case MySQL.Driver:
		return MySQL, nil
	case SQLite.Driver, "sqlite":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// Open opens and pings a handle for driver. For SQLite, pass
// "_foreign_keys=on" in the DSN to have the engine enforce employee_id.
func Open(driver, dsn string) (*sql.DB, Dialect, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("db.Ping: %w", err)
	}
	return db, d, nil
}
