package http

import (
	"net/http"
)

// NewRouter mounts the REST and websocket endpoints.
func NewRouter(api *APIHandler, ws *WSHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/categories", api.Categories)
	mux.HandleFunc("POST /api/categories/refresh", api.RefreshCategories)
	mux.HandleFunc("GET /api/leaderboard", api.Leaderboard)
	mux.HandleFunc("GET /api/leaderboard/chart", api.Chart)
	mux.HandleFunc("GET /api/leaderboard/export", api.Export)
	mux.HandleFunc("GET /api/sessions/{id}", api.Session)
	mux.HandleFunc("/ws/play", ws.ServePlay)
	mux.HandleFunc("/ws/leaderboard", ws.ServeLeaderboard)
	return mux
}
