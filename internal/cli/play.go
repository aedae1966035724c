package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/config"
	"trivia-quiz-service/internal/domain"
	"trivia-quiz-service/internal/infra/memory"
)

const warnBelow = 10

type playOptions struct {
	session   domain.SessionConfig
	player    domain.Player
	exportDir string
}

// NewPlayCmd plays a quiz in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var (
		opts       playOptions
		difficulty string
		qtype      string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a timed quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			opts.session.Difficulty = domain.Difficulty(difficulty)
			opts.session.Type = domain.QuestionType(qtype)

			var pool *pgxpool.Pool
			if cfg.Quiz.Source == "postgres" {
				pool, err = pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
				if err != nil {
					return err
				}
				defer pool.Close()
			}
			source, err := buildSource(cfg, pool)
			if err != nil {
				return err
			}
			service := app.NewQuizService(
				memory.NewCategoryRepository(source, 0),
				source,
				memory.NewSessionStore(),
				app.NewLeaderboard(),
				gameOptions(cfg),
			)
			return runPlay(cmd.Context(), service, cfg.ExportContext(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.session.Category, "category", 9, "OpenTDB category id")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyEasy), "easy, medium or hard")
	cmd.Flags().StringVar(&qtype, "type", string(domain.TypeMultiple), "multiple or boolean")
	cmd.Flags().IntVar(&opts.session.Amount, "amount", 10, "number of questions (1-50)")
	cmd.Flags().StringVar(&opts.player.FirstName, "first-name", "", "record the score under this first name")
	cmd.Flags().StringVar(&opts.player.LastName, "last-name", "", "record the score under this last name")
	cmd.Flags().StringVar(&opts.player.Email, "email", "", "record the score under this email")
	cmd.Flags().StringVar(&opts.exportDir, "export", "", "write the leaderboard as CSV into this directory")
	return cmd
}

func runPlay(ctx context.Context, service *app.QuizService, exportContext string, opts playOptions, in io.Reader, out io.Writer) error {
	questions, err := service.LoadQuestions(ctx, opts.session)
	if err != nil {
		return err
	}
	game, err := service.StartGame(opts.session, questions)
	if err != nil {
		return err
	}
	defer service.EndGame(game.ID())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = game.Run(ctx) }()

	lines := make(chan string)
	go readLines(ctx, in, lines)

	var (
		current int
		options []string
		input   <-chan string
	)
	for {
		select {
		case ev, ok := <-game.Events():
			if !ok {
				return ctx.Err()
			}
			switch ev.Type {
			case app.EventQuestion:
				current = ev.Question.Index
				options = ev.Question.Options
				printQuestion(out, *ev.Question)
				input = lines
			case app.EventTick:
				if ev.Remaining < warnBelow {
					fmt.Fprintf(out, "  %s left\n", domain.FormatTimer(ev.Remaining))
				}
			case app.EventAnswer:
				input = nil
				printOutcome(out, *ev.Answer)
			case app.EventCompleted:
				fmt.Fprintf(out, "\nFinal score: %d/%d\n", ev.Result.Score, ev.Result.Total)
				return finishPlay(service, game, exportContext, opts, out)
			}

		case line, ok := <-input:
			if !ok {
				fmt.Fprintln(out, "\nQuit.")
				return nil
			}
			idx, valid := optionIndex(line, len(options))
			if !valid {
				fmt.Fprintf(out, "Invalid input. Please enter a letter A-%c.\n", 'A'+len(options)-1)
				continue
			}
			input = nil
			_, err := game.SubmitChoice(ctx, app.Choice{QuestionIndex: &current, Option: &idx})
			if err != nil && !errors.Is(err, domain.ErrSessionCompleted) && !errors.Is(err, domain.ErrStaleAnswer) {
				return err
			}
		}
	}
}

func finishPlay(service *app.QuizService, game *app.Game, exportContext string, opts playOptions, out io.Writer) error {
	if opts.player == (domain.Player{}) {
		return nil
	}
	entry, err := service.SubmitScore(game.ID(), opts.player)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Recorded %s %s with %d points.\n", entry.FirstName, entry.LastName, entry.Score)

	if opts.exportDir == "" {
		return nil
	}
	data, err := app.ExportCSV(service.Leaderboard().Entries())
	if err != nil {
		return err
	}
	path := filepath.Join(opts.exportDir, domain.ExportFilename(exportContext, time.Now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(out, "Leaderboard written to %s\n", path)
	return nil
}

func readLines(ctx context.Context, in io.Reader, lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

func printQuestion(out io.Writer, q app.QuestionView) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Q%d/%d [%s] (%s): %s\n\n", q.Index+1, q.Total, html.UnescapeString(q.Category),
		domain.FormatTimer(q.Remaining), html.UnescapeString(q.Question))
	for i, option := range q.Options {
		fmt.Fprintf(out, "%c. %s\n", 'A'+i, html.UnescapeString(option))
	}
	fmt.Fprintf(out, "\nScore %d/%d\n", q.Score, q.Total)
}

func printOutcome(out io.Writer, o app.AnswerOutcome) {
	correct := html.UnescapeString(o.CorrectAnswer)
	switch {
	case o.Forced && o.Correct:
		fmt.Fprintln(out, "Time's up. Lucky guess, correct!")
	case o.Forced:
		fmt.Fprintf(out, "Time's up. Correct answer was %s\n", correct)
	case o.Correct:
		fmt.Fprintln(out, "Correct!")
	default:
		fmt.Fprintf(out, "Wrong. Correct answer was %s\n", correct)
	}
}

func optionIndex(line string, optionCount int) (int, bool) {
	answer := strings.ToUpper(strings.TrimSpace(line))
	if len(answer) != 1 || optionCount < 1 {
		return -1, false
	}
	idx := int(answer[0]) - 'A'
	if idx < 0 || idx >= optionCount {
		return -1, false
	}
	return idx, true
}
