// database/merge.go
package database

import (
	"context"
	"fmt"
	"log"
)

// The three merges are independent upserts keyed on
// unique_system_identifier: rows without that key are dropped, text is
// trimmed and truncated to the destination width, dates are parsed from
// MM/DD/YYYY with empty/unparseable values left NULL, and a repeated key
// overwrites every mutable column, so within one run the last-loaded row
// wins.

const mergeHeadersSQL = `
INSERT INTO hd (
    record_type,
    unique_system_identifier,
    call_sign,
    license_status,
    grant_date,
    expired_date,
    last_action_date
)
SELECT
    record_type,
    unique_system_identifier,
    LEFT(TRIM(call_sign), 10),
    LEFT(TRIM(license_status), 1),
    STR_TO_DATE(NULLIF(grant_date,''), '%m/%d/%Y'),
    STR_TO_DATE(NULLIF(expired_date,''), '%m/%d/%Y'),
    STR_TO_DATE(NULLIF(last_action_date,''), '%m/%d/%Y')
FROM stg_hd
WHERE unique_system_identifier IS NOT NULL
ON DUPLICATE KEY UPDATE
    call_sign=VALUES(call_sign),
    license_status=VALUES(license_status),
    grant_date=VALUES(grant_date),
    expired_date=VALUES(expired_date),
    last_action_date=VALUES(last_action_date)`

const mergeEntitiesSQL = `
INSERT INTO en (
    record_type,
    unique_system_identifier,
    call_sign,
    entity_type,
    entity_name,
    first_name,
    mi,
    last_name,
    street_address,
    city,
    state,
    zip_code
)
SELECT
    record_type,
    unique_system_identifier,
    LEFT(TRIM(call_sign), 10),
    LEFT(TRIM(entity_type), 2),
    NULLIF(TRIM(entity_name),''),
    NULLIF(TRIM(first_name),''),
    LEFT(TRIM(mi), 1),
    NULLIF(TRIM(last_name),''),
    NULLIF(TRIM(street_address),''),
    NULLIF(TRIM(city),''),
    LEFT(TRIM(state), 2),
    LEFT(TRIM(zip_code), 10)
FROM stg_en
WHERE unique_system_identifier IS NOT NULL
ON DUPLICATE KEY UPDATE
    call_sign=VALUES(call_sign),
    entity_type=VALUES(entity_type),
    entity_name=VALUES(entity_name),
    first_name=VALUES(first_name),
    mi=VALUES(mi),
    last_name=VALUES(last_name),
    street_address=VALUES(street_address),
    city=VALUES(city),
    state=VALUES(state),
    zip_code=VALUES(zip_code)`

const mergeClassesSQL = `
INSERT INTO am (unique_system_identifier, call_sign, operator_class)
SELECT
    unique_system_identifier,
    LEFT(TRIM(call_sign), 10),
    LEFT(TRIM(operator_class), 1)
FROM stg_am
WHERE unique_system_identifier IS NOT NULL
ON DUPLICATE KEY UPDATE
    call_sign=VALUES(call_sign),
    operator_class=VALUES(operator_class)`

// MergeAll upserts all three staging tables into their final tables.
// Order does not matter (the tables share the key domain but carry no
// foreign keys between them), only that all three finish before
// verification.
func (db *DB) MergeAll(ctx context.Context) error {
	log.Println("Database: merging staging -> final tables")

	merges := []struct {
		name string
		sql  string
	}{
		{"hd", mergeHeadersSQL},
		{"en", mergeEntitiesSQL},
		{"am", mergeClassesSQL},
	}
	for _, m := range merges {
		if _, err := db.pool.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to merge staging into %s: %w", m.name, err)
		}
	}

	log.Println("Database: merge complete")
	return nil
}
