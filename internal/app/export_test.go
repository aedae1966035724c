package app_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

func TestExportCSV(t *testing.T) {
	entries := []domain.LeaderboardEntry{
		{ID: 2, FirstName: "Grace", LastName: "Hopper, Jr", Email: "grace@example.com", Score: 9},
		{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Score: 4},
	}

	data, err := app.ExportCSV(entries)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus two rows, got %d", len(rows))
	}
	header := []string{"ID", "First Name", "Last Name", "Email", "Score"}
	for i, col := range header {
		if rows[0][i] != col {
			t.Fatalf("unexpected header %v", rows[0])
		}
	}
	if rows[1][2] != "Hopper, Jr" || rows[1][4] != "9" || rows[2][0] != "1" {
		t.Fatalf("unexpected rows %v", rows[1:])
	}
}

func TestExportCSVEmpty(t *testing.T) {
	rows := app.CSVRows(nil)
	if len(rows) != 1 {
		t.Fatalf("expected only the header, got %v", rows)
	}
}
