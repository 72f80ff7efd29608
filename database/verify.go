// database/verify.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// ClassCount is one bucket of the operator-class distribution.
type ClassCount struct {
	OperatorClass string
	Count         int64
}

// ImportDiagnostics is the post-merge sanity snapshot. It is advisory:
// operators read it from the logs, the pipeline never branches on it.
type ImportDiagnostics struct {
	HDCount int64
	ENCount int64
	AMCount int64

	ClassDistribution []ClassCount

	// From v_callbook: how many rows resolved to the derived "Club" label
	// versus no label at all. Confirms the view's CASE logic is live.
	ClubRows      int64
	NullLabelRows int64
	TotalRows     int64
}

// VerifyImport gathers the diagnostics: final-table counts, the
// operator-class distribution (top 10), and the view-level label counts.
func (db *DB) VerifyImport(ctx context.Context) (*ImportDiagnostics, error) {
	diag := &ImportDiagnostics{}

	counts := []struct {
		table string
		dst   *int64
	}{
		{"hd", &diag.HDCount},
		{"en", &diag.ENCount},
		{"am", &diag.AMCount},
	}
	for _, c := range counts {
		if err := db.pool.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	rows, err := db.pool.QueryContext(ctx, `
		SELECT operator_class, COUNT(*) AS cnt
		FROM am
		GROUP BY operator_class
		ORDER BY cnt DESC
		LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("failed to query class distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var class sql.NullString
		var cc ClassCount
		if err := rows.Scan(&class, &cc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan class distribution row: %w", err)
		}
		if class.Valid {
			cc.OperatorClass = class.String
		} else {
			cc.OperatorClass = "NULL"
		}
		diag.ClassDistribution = append(diag.ClassDistribution, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating class distribution rows: %w", err)
	}

	err = db.pool.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(operator_class_name = 'Club'), 0),
		  COALESCE(SUM(operator_class_name IS NULL), 0),
		  COUNT(*)
		FROM v_callbook`).Scan(&diag.ClubRows, &diag.NullLabelRows, &diag.TotalRows)
	if err != nil {
		return nil, fmt.Errorf("failed to query v_callbook diagnostics: %w", err)
	}

	return diag, nil
}

// LogDiagnostics prints the snapshot in the one-line-per-fact form that
// plays nicely with docker logs.
func (diag *ImportDiagnostics) LogDiagnostics() {
	log.Printf("Loaded: hd=%d en=%d am=%d", diag.HDCount, diag.ENCount, diag.AMCount)
	log.Println("License class distribution (am.operator_class):")
	for _, cc := range diag.ClassDistribution {
		log.Printf("  class=%s cnt=%d", cc.OperatorClass, cc.Count)
	}
	log.Printf("v_callbook labels: club_rows=%d null_name_rows=%d total_rows=%d",
		diag.ClubRows, diag.NullLabelRows, diag.TotalRows)
}
