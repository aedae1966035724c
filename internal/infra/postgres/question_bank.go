package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"trivia-quiz-service/internal/domain"
)

// QuestionBank serves categories and questions imported into Postgres.
type QuestionBank struct {
	pool *pgxpool.Pool
}

func NewQuestionBank(pool *pgxpool.Pool) *QuestionBank {
	return &QuestionBank{pool: pool}
}

func (b *QuestionBank) LoadCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := b.pool.Query(ctx, `SELECT id, name FROM trivia_categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// FetchQuestions picks a random sample matching the query. Zero-valued
// filters match everything.
func (b *QuestionBank) FetchQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	amount := query.Amount
	if amount <= 0 {
		amount = 10
	}

	rows, err := b.pool.Query(ctx, `
		SELECT q.type, q.difficulty, c.name, q.question, q.correct_answer, q.incorrect_answers
		FROM trivia_questions q
		JOIN trivia_categories c ON c.id = q.category_id
		WHERE ($1 = 0 OR q.category_id = $1)
		  AND ($2 = '' OR q.difficulty = $2)
		  AND ($3 = '' OR q.type = $3)
		ORDER BY random()
		LIMIT $4`,
		query.Category, string(query.Difficulty), string(query.Type), amount)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := []domain.Question{}
	for rows.Next() {
		var (
			qType, difficulty string
			q                 domain.Question
			incorrect         []byte
		)
		if err := rows.Scan(&qType, &difficulty, &q.Category, &q.Question, &q.CorrectAnswer, &incorrect); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(incorrect, &q.IncorrectAnswers); err != nil {
			return nil, fmt.Errorf("unmarshal incorrect answers: %w", err)
		}
		if q.Type, err = domain.ParseQuestionType(qType); err != nil {
			log.Printf("skipping stored question %q: %v", q.Question, err)
			continue
		}
		if q.Difficulty, err = domain.ParseDifficulty(difficulty); err != nil {
			log.Printf("skipping stored question %q: %v", q.Question, err)
			continue
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(questions) == 0 && query.Category > 0 {
		var exists bool
		err := b.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trivia_categories WHERE id = $1)`, query.Category).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return nil, domain.ErrCategoryNotFound
		}
	}
	return questions, nil
}
