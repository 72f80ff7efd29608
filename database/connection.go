// database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql" // MariaDB driver
	"github.com/n4vhf/callbook/config"
)

// DB wraps the connection pool. Callers receive a handle from Open and
// pass it where needed instead of reaching for a package global.
type DB struct {
	pool *sql.DB
}

// Open initializes the database connection pool and verifies it with a
// ping.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	// DSN: username:password@protocol(address)/dbname?param=value
	// allowAllFiles enables LOCAL INFILE on every pooled connection, not
	// just ones opened after a reader handler is registered.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&allowAllFiles=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	pool, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(25)
	pool.SetConnMaxLifetime(5 * time.Minute)

	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database!")
	return &DB{pool: pool}, nil
}

// Ping reports pool health; used by the health endpoint.
func (db *DB) Ping() error {
	return db.pool.Ping()
}

// Close closes the connection pool. Typically called on shutdown.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
		log.Println("Database connection closed.")
	}
}
