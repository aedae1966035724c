package http

import (
	"encoding/json"
	"errors"
	"html"
	"log"
	"net/http"
	"strconv"
	"time"

	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// APIHandler serves the read-only REST surface.
type APIHandler struct {
	service       *app.QuizService
	exportContext string
	now           func() time.Time
}

func NewAPIHandler(service *app.QuizService, exportContext string) *APIHandler {
	return &APIHandler{service: service, exportContext: exportContext, now: time.Now}
}

func (h *APIHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, decodeCategories(h.service.Categories(r.Context())))
}

// RefreshCategories reloads the category list after a question import.
func (h *APIHandler) RefreshCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.RefreshCategories(r.Context())
	if err != nil {
		log.Printf("refresh categories: %v", err)
		writeJSON(w, http.StatusBadGateway, errorPayload{Message: "category refresh failed"})
		return
	}
	writeJSON(w, http.StatusOK, decodeCategories(categories))
}

// decodeCategories copies the list so cached names stay encoded.
func decodeCategories(cached []domain.Category) []domain.Category {
	categories := make([]domain.Category, 0, len(cached))
	for _, c := range cached {
		categories = append(categories, domain.Category{ID: c.ID, Name: html.UnescapeString(c.Name)})
	}
	return categories
}

func (h *APIHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", app.DefaultPageSize)
	writeJSON(w, http.StatusOK, h.service.Leaderboard().Paginate(page, pageSize))
}

func (h *APIHandler) Chart(w http.ResponseWriter, r *http.Request) {
	if email := r.URL.Query().Get("email"); email != "" {
		writeJSON(w, http.StatusOK, domain.ChartSeries{email: h.service.Leaderboard().Series(email)})
		return
	}
	writeJSON(w, http.StatusOK, h.service.Leaderboard().Chart())
}

func (h *APIHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := app.ExportCSV(h.service.Leaderboard().Entries())
	if err != nil {
		log.Printf("export leaderboard: %v", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	filename := domain.ExportFilename(h.exportContext, h.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *APIHandler) Session(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	game, err := h.service.Game(id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(game.ID(), game.Snapshot()))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
