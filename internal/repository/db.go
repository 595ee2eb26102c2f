package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// DB is a connection pool that remembers which SQL dialect it speaks.
type DB struct {
	*sql.DB
	driver string
}

// NewDB opens a connection pool for driver ("mysql" or "sqlite") with the given DSN.
func NewDB(driver, dsn string) (*DB, error) {
	if driver != DriverMySQL && driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection also keeps
		// in-memory databases alive for the life of the pool.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s: %w", driver, err)
	}

	log.Info().Str("driver", driver).Msg("database connected")
	return &DB{DB: db, driver: driver}, nil
}

// Driver returns the name of the SQL driver backing the pool.
func (db *DB) Driver() string {
	return db.driver
}

// insertIgnore returns the INSERT verb that silently skips rows violating a
// unique or primary key.
func (db *DB) insertIgnore() string {
	if db.driver == DriverSQLite {
		return "INSERT OR IGNORE"
	}
	return "INSERT IGNORE"
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              VARCHAR(36)  NOT NULL PRIMARY KEY,
		name            VARCHAR(32)  NOT NULL,
		email           VARCHAR(255) NOT NULL,
		password        VARCHAR(255) NOT NULL,
		profile_picture MEDIUMTEXT   NOT NULL,
		bio             TEXT         NULL,
		created_at      DATETIME(6)  NOT NULL,
		updated_at      DATETIME(6)  NOT NULL,
		UNIQUE KEY users_name_key (name),
		UNIQUE KEY users_email_key (email)
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id             VARCHAR(36)  NOT NULL PRIMARY KEY,
		name           VARCHAR(191) NOT NULL,
		description    TEXT         NOT NULL,
		location_name  VARCHAR(512) NOT NULL,
		date           DATETIME(6)  NOT NULL,
		type           VARCHAR(16)  NOT NULL,
		images         JSON         NOT NULL,
		tags           JSON         NOT NULL,
		coordinator_id VARCHAR(36)  NOT NULL,
		created_at     DATETIME(6)  NOT NULL,
		updated_at     DATETIME(6)  NOT NULL,
		KEY events_created_at_id_idx (created_at, id),
		KEY events_date_id_idx (date, id),
		CONSTRAINT events_coordinator_fk FOREIGN KEY (coordinator_id) REFERENCES users (id)
	)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		user_id    VARCHAR(36) NOT NULL,
		event_id   VARCHAR(36) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		PRIMARY KEY (user_id, event_id),
		KEY attendance_event_idx (event_id),
		CONSTRAINT attendance_user_fk FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT attendance_event_fk FOREIGN KEY (event_id) REFERENCES events (id)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id              TEXT     NOT NULL PRIMARY KEY,
		name            TEXT     NOT NULL UNIQUE,
		email           TEXT     NOT NULL UNIQUE,
		password        TEXT     NOT NULL,
		profile_picture TEXT     NOT NULL,
		bio             TEXT,
		created_at      DATETIME NOT NULL,
		updated_at      DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id             TEXT     NOT NULL PRIMARY KEY,
		name           TEXT     NOT NULL,
		description    TEXT     NOT NULL,
		location_name  TEXT     NOT NULL,
		date           DATETIME NOT NULL,
		type           TEXT     NOT NULL,
		images         TEXT     NOT NULL,
		tags           TEXT     NOT NULL,
		coordinator_id TEXT     NOT NULL REFERENCES users (id),
		created_at     DATETIME NOT NULL,
		updated_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS events_created_at_id_idx ON events (created_at, id)`,
	`CREATE INDEX IF NOT EXISTS events_date_id_idx ON events (date, id)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		user_id    TEXT     NOT NULL REFERENCES users (id),
		event_id   TEXT     NOT NULL REFERENCES events (id),
		created_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS attendance_event_idx ON attendance (event_id)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *DB) error {
	stmts := mysqlSchema
	if db.driver == DriverSQLite {
		stmts = sqliteSchema
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrating schema: %w", err)
		}
	}
	return nil
}
