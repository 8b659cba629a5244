package database

import (
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	script := `-- comment line
CREATE TABLE a (
    id INT
);

CREATE TABLE b (id INT);
INSERT INTO b VALUES (1)`

	got := SplitStatements(script)
	if len(got) != 3 {
		t.Fatalf("expected 3 statements, got %d: %#v", len(got), got)
	}
	if !strings.HasPrefix(got[0], "CREATE TABLE a") || strings.HasSuffix(got[0], ";") {
		t.Fatalf("unexpected first statement: %q", got[0])
	}
	if got[2] != "INSERT INTO b VALUES (1)" {
		t.Fatalf("unexpected trailing statement: %q", got[2])
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	files, err := migrationFiles(migrationFS)
	if err != nil {
		t.Fatalf("list migrations: %v", err)
	}
	if len(files) == 0 || files[0] != "0001_init.sql" {
		t.Fatalf("unexpected migrations: %v", files)
	}
	b, err := migrationFS.ReadFile("migrations/0001_init.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	stmts := SplitStatements(string(b))
	tables := []string{"users", "requests", "interests", "notifications", "feedback", "refresh_tokens"}
	if len(stmts) != len(tables) {
		t.Fatalf("expected %d statements, got %d", len(tables), len(stmts))
	}
	for i, table := range tables {
		if !strings.Contains(stmts[i], "CREATE TABLE IF NOT EXISTS "+table+" ") {
			t.Errorf("statement %d does not create %s", i, table)
		}
	}
}
