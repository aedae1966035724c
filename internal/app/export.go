package app

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"trivia-quiz-service/internal/domain"
)

var csvHeader = []string{"ID", "First Name", "Last Name", "Email", "Score"}

// CSVRows renders entries in export order, header first.
func CSVRows(entries []domain.LeaderboardEntry) [][]string {
	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, append([]string(nil), csvHeader...))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.FirstName,
			e.LastName,
			e.Email,
			strconv.Itoa(e.Score),
		})
	}
	return rows
}

// ExportCSV encodes the leaderboard as CSV.
func ExportCSV(entries []domain.LeaderboardEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.WriteAll(CSVRows(entries)); err != nil {
		return nil, err
	}
	return buf.Bytes(), w.Error()
}
