// database/callbook_store.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/n4vhf/callbook/models"
)

// LookupCallsign queries the read view for a callsign. Candidates are
// ordered to prefer Active records, then the newest expirations and
// grants, so the first row is the "best" match. The view (not the base
// tables) is queried on purpose: it keeps the API contract stable and
// lets the API user run with SELECT on v_callbook only.
func (db *DB) LookupCallsign(ctx context.Context, callsign string) ([]models.CallbookEntry, error) {
	rows, err := db.pool.QueryContext(ctx, `
		SELECT callsign, licensee_name, street, city, state, zip,
		       license_status, grant_date, expired_date, last_action_date,
		       operator_class, operator_class_name
		FROM v_callbook
		WHERE callsign = ?
		ORDER BY (license_status='A') DESC, expired_date DESC, grant_date DESC
		LIMIT 5`, callsign)
	if err != nil {
		return nil, fmt.Errorf("failed to query v_callbook for %s: %w", callsign, err)
	}
	defer rows.Close()

	var entries []models.CallbookEntry
	for rows.Next() {
		entry, err := scanCallbookRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating v_callbook rows: %w", err)
	}
	return entries, nil
}

// ExportCallbook streams up to limit view rows for the admin CSV export.
func (db *DB) ExportCallbook(ctx context.Context, limit int) ([]models.CallbookEntry, error) {
	rows, err := db.pool.QueryContext(ctx, `
		SELECT callsign, licensee_name, street, city, state, zip,
		       license_status, grant_date, expired_date, last_action_date,
		       operator_class, operator_class_name
		FROM v_callbook
		ORDER BY callsign
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query v_callbook for export: %w", err)
	}
	defer rows.Close()

	var entries []models.CallbookEntry
	for rows.Next() {
		entry, err := scanCallbookRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating v_callbook rows: %w", err)
	}
	return entries, nil
}

func scanCallbookRow(rows *sql.Rows) (models.CallbookEntry, error) {
	var entry models.CallbookEntry
	var licenseeName, street, city, state, zip, status, class, className sql.NullString
	var grant, expired, lastAction sql.NullTime

	err := rows.Scan(
		&entry.Callsign, &licenseeName, &street, &city, &state, &zip,
		&status, &grant, &expired, &lastAction, &class, &className,
	)
	if err != nil {
		return entry, fmt.Errorf("failed to scan v_callbook row: %w", err)
	}

	entry.LicenseeName = licenseeName.String
	entry.Street = street.String
	entry.City = city.String
	entry.State = state.String
	entry.Zip = zip.String
	entry.LicenseStatus = status.String
	entry.OperatorClass = class.String
	entry.OperatorClassName = className.String
	if grant.Valid {
		entry.GrantDate = &grant.Time
	}
	if expired.Valid {
		entry.ExpiredDate = &expired.Time
	}
	if lastAction.Valid {
		entry.LastActionDate = &lastAction.Time
	}
	return entry, nil
}
