package memory

import (
	"context"

	"trivia-quiz-service/internal/domain"
)

// StaticSource serves fixed categories and questions (tests, demos, offline play).
type StaticSource struct {
	categories []domain.Category
	questions  []domain.Question
}

func NewStaticSource(categories []domain.Category, questions []domain.Question) *StaticSource {
	return &StaticSource{categories: categories, questions: questions}
}

func (s *StaticSource) LoadCategories(_ context.Context) ([]domain.Category, error) {
	return append([]domain.Category(nil), s.categories...), nil
}

// FetchQuestions filters by category, difficulty and type, then returns at
// most query.Amount questions in their stored order. An unknown category id
// fails with domain.ErrCategoryNotFound.
func (s *StaticSource) FetchQuestions(_ context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	var categoryName string
	if query.Category > 0 {
		for _, c := range s.categories {
			if c.ID == query.Category {
				categoryName = c.Name
				break
			}
		}
		if categoryName == "" {
			return nil, domain.ErrCategoryNotFound
		}
	}

	out := make([]domain.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if categoryName != "" && q.Category != categoryName {
			continue
		}
		if query.Difficulty != "" && q.Difficulty != query.Difficulty {
			continue
		}
		if query.Type != "" && q.Type != query.Type {
			continue
		}
		out = append(out, q)
		if query.Amount > 0 && len(out) == query.Amount {
			break
		}
	}
	return out, nil
}

// SampleCategories and SampleQuestions back the offline demo source.
func SampleCategories() []domain.Category {
	return []domain.Category{
		{ID: 11, Name: "Entertainment: Film"},
	}
}

func SampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Type:          domain.TypeMultiple,
			Difficulty:    domain.DifficultyMedium,
			Category:      "Entertainment: Film",
			Question:      "In the &quot;Jurassic Park&quot; universe, what is the name of the island that contains InGen&#039;s Site B?",
			CorrectAnswer: "Isla Sorna",
			IncorrectAnswers: []string{
				"Isla Nublar",
				"Isla Pena",
				"Isla Muerta",
			},
		},
		{
			Type:          domain.TypeMultiple,
			Difficulty:    domain.DifficultyMedium,
			Category:      "Entertainment: Film",
			Question:      "In the 1999 movie Fight Club, which of these is not a rule of the &quot;fight club&quot;?",
			CorrectAnswer: "Always wear a shirt",
			IncorrectAnswers: []string{
				"You do not talk about FIGHT CLUB",
				"Only two guys to a fight",
				"Fights will go on as long as they have to",
			},
		},
		{
			Type:          domain.TypeMultiple,
			Difficulty:    domain.DifficultyMedium,
			Category:      "Entertainment: Film",
			Question:      "Who directed the 1973 film &quot;American Graffiti&quot;?",
			CorrectAnswer: "George Lucas",
			IncorrectAnswers: []string{
				"Ron Howard",
				"Francis Ford Coppola",
				"Steven Spielberg",
			},
		},
		{
			Type:             domain.TypeBoolean,
			Difficulty:       domain.DifficultyEasy,
			Category:         "Entertainment: Film",
			Question:         "&quot;Jaws&quot; was directed by Steven Spielberg.",
			CorrectAnswer:    "True",
			IncorrectAnswers: []string{"False"},
		},
	}
}
