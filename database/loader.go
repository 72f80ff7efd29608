// database/loader.go
package database

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SourceKind identifies one of the three ULS source files. Each kind has
// its own staging table and a fixed column mapping; there is no dynamic
// dispatch on table names anywhere in the load path.
type SourceKind int

const (
	// KindHD is the license header file: 59 pipe-delimited positions, of
	// which only 1,2,5,6,8,9,10 are consumed.
	KindHD SourceKind = iota
	// KindEN is the entity/name/address file, loaded with its full named
	// column list.
	KindEN
	// KindAM is the amateur-specific file: 18 positions, of which 1..6 are
	// consumed. Position 6 is the authoritative operator class; HD has a
	// class-looking field, but AM is the one to trust.
	KindAM
)

func (k SourceKind) String() string {
	switch k {
	case KindHD:
		return "HD"
	case KindEN:
		return "EN"
	case KindAM:
		return "AM"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// DatFile is the member name inside l_amat.zip.
func (k SourceKind) DatFile() string {
	return k.String() + ".dat"
}

// StagingTable is the scratch table truncated and reloaded on every run.
func (k SourceKind) StagingTable() string {
	return "stg_" + strings.ToLower(k.String())
}

// stgEnColumns must match the stg_en definition in schema.sql.
var stgEnColumns = []string{
	"record_type", "unique_system_identifier", "uls_file_number", "ebf_number", "call_sign",
	"entity_type", "licensee_id", "entity_name", "first_name", "mi", "last_name", "suffix",
	"phone", "fax", "email", "street_address", "city", "state", "zip_code", "po_box",
	"attention_line", "sgin", "frn",
}

// LoadStaging truncates the staging table for the given kind and bulk
// loads the normalized UTF-8 file through the driver's reader channel
// (LOAD DATA LOCAL INFILE 'Reader::…'). Empty source fields become NULL
// at load time, never empty strings.
func (db *DB) LoadStaging(ctx context.Context, kind SourceKind, data io.Reader) error {
	table := kind.StagingTable()
	log.Printf("Database: loading %s", table)

	if _, err := db.pool.ExecContext(ctx, "TRUNCATE TABLE "+table); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}

	// Reader handlers are keyed by name; use the table name and drop the
	// registration as soon as the load finishes.
	mysql.RegisterReaderHandler(table, func() io.Reader { return data })
	defer mysql.DeregisterReaderHandler(table)

	if _, err := db.pool.ExecContext(ctx, loadStatement(kind)); err != nil {
		return fmt.Errorf("failed to load %s: %w", table, err)
	}

	log.Printf("Database: loaded %s", table)
	return nil
}

// loadStatement builds the fixed LOAD DATA statement for a source kind.
func loadStatement(kind SourceKind) string {
	switch kind {
	case KindHD:
		// 59 positional fields into variables, then map the consumed subset.
		return fmt.Sprintf(`LOAD DATA LOCAL INFILE 'Reader::stg_hd'
INTO TABLE stg_hd
CHARACTER SET utf8mb4
FIELDS TERMINATED BY '|'
LINES TERMINATED BY '\n'
(%s)
SET
  record_type = NULLIF(@f1,''),
  unique_system_identifier = NULLIF(@f2,''),
  call_sign = NULLIF(@f5,''),
  license_status = NULLIF(@f6,''),
  grant_date = NULLIF(@f8,''),
  expired_date = NULLIF(@f9,''),
  last_action_date = NULLIF(@f10,'')`, fieldVars(59))

	case KindAM:
		// 18 positional fields; operator class rides in position 6.
		return fmt.Sprintf(`LOAD DATA LOCAL INFILE 'Reader::stg_am'
INTO TABLE stg_am
CHARACTER SET utf8mb4
FIELDS TERMINATED BY '|'
LINES TERMINATED BY '\n'
(%s)
SET
  record_type = NULLIF(@f1,''),
  unique_system_identifier = NULLIF(@f2,''),
  uls_file_number = NULLIF(@f3,''),
  ebf_number = NULLIF(@f4,''),
  call_sign = NULLIF(@f5,''),
  operator_class = NULLIF(@f6,'')`, fieldVars(18))

	case KindEN:
		// EN loads every named column; empties still become NULL.
		var sets []string
		for _, col := range stgEnColumns {
			sets = append(sets, fmt.Sprintf("  %s = NULLIF(@v_%s,'')", col, col))
		}
		var vars []string
		for _, col := range stgEnColumns {
			vars = append(vars, "@v_"+col)
		}
		return fmt.Sprintf(`LOAD DATA LOCAL INFILE 'Reader::stg_en'
INTO TABLE stg_en
CHARACTER SET utf8mb4
FIELDS TERMINATED BY '|'
LINES TERMINATED BY '\n'
(%s)
SET
%s`, strings.Join(vars, ", "), strings.Join(sets, ",\n"))
	}
	panic(fmt.Sprintf("unknown source kind %d", int(kind)))
}

// fieldVars renders "@f1, @f2, … @fN".
func fieldVars(n int) string {
	vars := make([]string, n)
	for i := range vars {
		vars[i] = fmt.Sprintf("@f%d", i+1)
	}
	return strings.Join(vars, ", ")
}
