package opentdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"trivia-quiz-service/internal/domain"
)

const (
	DefaultBaseURL = "https://opentdb.com"
	defaultAmount  = 10
	maxAmount      = 50
)

// Response codes documented by OpenTDB.
const (
	codeSuccess      = 0
	codeNoResults    = 1
	codeInvalidParam = 2
	codeTokenMissing = 3
	codeTokenEmpty   = 4
	codeRateLimit    = 5
)

var (
	// ErrNoResults means the API had not enough questions for the query.
	ErrNoResults = errors.New("opentdb: not enough questions for query")
	// ErrRateLimited means too many requests were made from this address.
	ErrRateLimited = errors.New("opentdb: rate limited")
)

// RawQuestion mirrors the OpenTDB question payload.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type questionsResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

type categoriesResponse struct {
	TriviaCategories []domain.Category `json:"trivia_categories"`
}

// Client talks to the Open Trivia DB HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient uses httpClient, or a client with a 10s timeout when nil.
func NewClient(httpClient *http.Client) *Client {
	return NewClientWithBaseURL(httpClient, DefaultBaseURL)
}

func NewClientWithBaseURL(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// FetchQuestions requests up to query.Amount questions. Zero-valued filters
// are left out of the request.
func (c *Client) FetchQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	amount := query.Amount
	if amount <= 0 {
		amount = defaultAmount
	}
	if amount > maxAmount {
		amount = maxAmount
	}

	params := url.Values{}
	params.Set("amount", strconv.Itoa(amount))
	if query.Category > 0 {
		params.Set("category", strconv.Itoa(query.Category))
	}
	if query.Difficulty != "" {
		params.Set("difficulty", string(query.Difficulty))
	}
	if query.Type != "" {
		params.Set("type", string(query.Type))
	}

	var payload questionsResponse
	if err := c.getJSON(ctx, "/api.php?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	switch payload.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return nil, ErrNoResults
	case codeRateLimit:
		return nil, ErrRateLimited
	case codeInvalidParam, codeTokenMissing, codeTokenEmpty:
		return nil, fmt.Errorf("%w: opentdb response_code=%d", domain.ErrProviderUnavailable, payload.ResponseCode)
	default:
		return nil, fmt.Errorf("opentdb response_code=%d", payload.ResponseCode)
	}

	return ToQuestions(payload.Results), nil
}

// GetCategories lists every trivia category.
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	var payload categoriesResponse
	if err := c.getJSON(ctx, "/api_category.php", &payload); err != nil {
		return nil, err
	}
	categories := make([]domain.Category, 0, len(payload.TriviaCategories))
	for _, cat := range payload.TriviaCategories {
		if cat.ID <= 0 || cat.Name == "" {
			continue
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

// LoadCategories lets the client back a category cache.
func (c *Client) LoadCategories(ctx context.Context) ([]domain.Category, error) {
	return c.GetCategories(ctx)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: opentdb returned status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode opentdb response: %w", err)
	}
	return nil
}

// ToQuestions validates raw payloads. Questions with an unknown type or
// difficulty, or without answers, are dropped.
func ToQuestions(raw []RawQuestion) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for _, item := range raw {
		q, err := ToQuestion(item)
		if err != nil {
			log.Printf("skipping opentdb question %q: %v", item.Question, err)
			continue
		}
		questions = append(questions, q)
	}
	return questions
}

// ToQuestion converts a single payload.
func ToQuestion(raw RawQuestion) (domain.Question, error) {
	qType, err := domain.ParseQuestionType(raw.Type)
	if err != nil {
		return domain.Question{}, err
	}
	difficulty, err := domain.ParseDifficulty(raw.Difficulty)
	if err != nil {
		return domain.Question{}, err
	}
	if raw.Question == "" || raw.CorrectAnswer == "" {
		return domain.Question{}, errors.New("missing question text or correct answer")
	}
	if len(raw.IncorrectAnswers) == 0 {
		return domain.Question{}, errors.New("missing incorrect answers")
	}
	return domain.Question{
		Type:             qType,
		Difficulty:       difficulty,
		Category:         raw.Category,
		Question:         raw.Question,
		CorrectAnswer:    raw.CorrectAnswer,
		IncorrectAnswers: append([]string(nil), raw.IncorrectAnswers...),
	}, nil
}
