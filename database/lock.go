// database/lock.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// TryLock attempts to take the named MariaDB advisory lock without
// waiting (GET_LOCK with a zero timeout). It returns acquired=false when
// another session already holds the lock; that is an expected condition
// for overlapping cron invocations, not an error.
//
// Advisory locks are per-connection, so the lock is taken on a pinned
// connection that the returned release function holds open. Release runs
// RELEASE_LOCK and returns the connection to the pool; it is safe on
// every exit path.
func (db *DB) TryLock(ctx context.Context, name string) (release func(), acquired bool, err error) {
	conn, err := db.pool.Conn(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get connection for lock %s: %w", name, err)
	}

	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, 0)", name).Scan(&got); err != nil {
		conn.Close()
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	if !got.Valid || got.Int64 != 1 {
		conn.Close()
		return nil, false, nil
	}

	release = func() {
		// Best effort: closing the connection releases the lock anyway.
		if _, err := conn.ExecContext(context.Background(), "SELECT RELEASE_LOCK(?)", name); err != nil {
			log.Printf("WARN Database: failed to release lock %s: %v", name, err)
		}
		conn.Close()
	}
	return release, true, nil
}
