// database/schema.go
package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
)

// ApplySchema reads the schema script and executes each statement in
// order. The script is expected to be idempotent (CREATE TABLE IF NOT
// EXISTS, DROP TABLE IF EXISTS for staging, CREATE OR REPLACE VIEW) so it
// can run on every import. The first failing statement aborts with its
// 1-based index and a snippet for fast debugging.
func (db *DB) ApplySchema(ctx context.Context, schemaPath string) error {
	raw, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file %s: %w", schemaPath, err)
	}

	statements := SplitStatements(string(raw))
	log.Printf("Database: applying schema (%d statements)", len(statements))

	for i, stmt := range statements {
		if _, err := db.pool.ExecContext(ctx, stmt); err != nil {
			snippet := strings.Join(strings.Fields(stmt), " ")
			if len(snippet) > 200 {
				snippet = snippet[:200]
			}
			return fmt.Errorf("schema failed at statement %d/%d: %w (SQL: %s...)",
				i+1, len(statements), err, snippet)
		}
	}

	log.Println("Database: schema applied")
	return nil
}

// SplitStatements is a very small SQL splitter: it cuts on ';' and drops
// blank or comment-only segments. The schema must stay simple DDL: no
// stored procedures, triggers, or custom DELIMITER sections, because a
// ';' inside a body would be split on.
func SplitStatements(script string) []string {
	// Strip a UTF-8 BOM if present (common when edited on Windows).
	script = strings.TrimPrefix(script, "\uFEFF")

	var statements []string
	for _, segment := range strings.Split(script, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		// Drop full-line "--" comments; skip the segment if nothing is left.
		var kept []string
		for _, line := range strings.Split(segment, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			kept = append(kept, line)
		}
		if len(kept) == 0 {
			continue
		}
		statements = append(statements, strings.TrimSpace(strings.Join(kept, "\n")))
	}
	return statements
}
