package cli

import (
	"testing"

	"github.com/uptrace/bun/migrate"
)

func TestMigrationSummary(t *testing.T) {
	if got := migrationSummary(&migrate.MigrationGroup{}); got != "question bank schema is up to date" {
		t.Fatalf("unexpected summary %q", got)
	}
	group := &migrate.MigrationGroup{
		ID:         2,
		Migrations: migrate.MigrationSlice{{Name: "20240301000000"}, {Name: "20240302000000"}},
	}
	want := "question bank migrated to group #2 (20240301000000, 20240302000000)"
	if got := migrationSummary(group); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
