package postgres

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"trivia-quiz-service/internal/domain"
)

type categoryRow struct {
	bun.BaseModel `bun:"table:trivia_categories"`

	ID   int    `bun:"id,pk"`
	Name string `bun:"name,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:trivia_questions"`

	ID               string    `bun:"id,pk"`
	CategoryID       int       `bun:"category_id,notnull"`
	Type             string    `bun:"type,notnull"`
	Difficulty       string    `bun:"difficulty,notnull"`
	Question         string    `bun:"question,notnull"`
	CorrectAnswer    string    `bun:"correct_answer,notnull"`
	IncorrectAnswers []string  `bun:"incorrect_answers,type:jsonb,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

// Importer writes provider data into the question bank.
type Importer struct {
	db  *bun.DB
	now func() time.Time
}

func NewImporter(db *bun.DB) *Importer {
	return &Importer{db: db, now: time.Now}
}

// ImportCategories upserts categories by id.
func (i *Importer) ImportCategories(ctx context.Context, categories []domain.Category) error {
	if len(categories) == 0 {
		return nil
	}
	rows := make([]categoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, categoryRow{ID: c.ID, Name: c.Name})
	}
	_, err := i.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("import categories: %w", err)
	}
	return nil
}

// ImportQuestions stores questions under categoryID and reports how many were
// new. Questions are keyed by a hash of their text and answers, so importing
// the same question twice is a no-op.
func (i *Importer) ImportQuestions(ctx context.Context, categoryID int, questions []domain.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	now := i.now().UTC()
	rows := make([]questionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, questionRow{
			ID:               QuestionID(q),
			CategoryID:       categoryID,
			Type:             string(q.Type),
			Difficulty:       string(q.Difficulty),
			Question:         q.Question,
			CorrectAnswer:    q.CorrectAnswer,
			IncorrectAnswers: append([]string{}, q.IncorrectAnswers...),
			CreatedAt:        now,
		})
	}

	res, err := i.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("import questions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// QuestionID derives a stable id from the question text and its answers.
func QuestionID(q domain.Question) string {
	var keyBuilder strings.Builder
	keyBuilder.WriteString(q.Question)
	keyBuilder.WriteString("|")
	keyBuilder.WriteString(q.CorrectAnswer)
	for _, answer := range q.IncorrectAnswers {
		keyBuilder.WriteString("|")
		keyBuilder.WriteString(answer)
	}

	hash := sha1.Sum([]byte(keyBuilder.String()))
	return "q_" + hex.EncodeToString(hash[:])
}
