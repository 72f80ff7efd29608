// database/schema_test.go
package database

import (
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	script := "\uFEFF" + `
-- staging tables
CREATE TABLE IF NOT EXISTS stg_hd (
    record_type VARCHAR(2) NULL
);

-- a comment-only segment
-- nothing else here
;

CREATE OR REPLACE VIEW v_callbook AS
SELECT 1;
`

	statements := SplitStatements(script)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %#v", len(statements), statements)
	}

	if !strings.HasPrefix(statements[0], "CREATE TABLE IF NOT EXISTS stg_hd") {
		t.Errorf("first statement should start with CREATE TABLE, got %q", statements[0])
	}
	if strings.Contains(statements[0], "--") {
		t.Errorf("comment lines should be dropped, got %q", statements[0])
	}
	if !strings.HasPrefix(statements[1], "CREATE OR REPLACE VIEW v_callbook") {
		t.Errorf("second statement should be the view, got %q", statements[1])
	}
	if strings.Contains(statements[0], "\uFEFF") {
		t.Error("BOM should be stripped")
	}
}

func TestSplitStatementsEmptyInput(t *testing.T) {
	for _, script := range []string{"", ";;;", "-- only a comment;", "\n\n;\n"} {
		if got := SplitStatements(script); len(got) != 0 {
			t.Errorf("SplitStatements(%q) = %#v, want none", script, got)
		}
	}
}

func TestSplitStatementsKeepsMultiline(t *testing.T) {
	script := `CREATE TABLE IF NOT EXISTS hd (
    unique_system_identifier BIGINT NOT NULL,
    PRIMARY KEY (unique_system_identifier)
)`
	statements := SplitStatements(script)
	if len(statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(statements))
	}
	if !strings.Contains(statements[0], "PRIMARY KEY") {
		t.Errorf("multi-line body should survive splitting, got %q", statements[0])
	}
}
