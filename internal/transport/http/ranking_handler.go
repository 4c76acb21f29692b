package http

import (
	"encoding/json"
	"net/http"

	"lesson-quiz-service/internal/app"
)

// RankingHandler serves the ranking view as plain JSON for shells that only
// need a one-shot read (no websocket).
type RankingHandler struct {
	service *app.QuizService
	limit   int
}

func NewRankingHandler(service *app.QuizService, limit int) *RankingHandler {
	return &RankingHandler{service: service, limit: limit}
}

func (h *RankingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	ranking, err := h.service.Ranking(r.Context(), quizID, h.limit)
	if err != nil {
		http.Error(w, "ranking unavailable, try again", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ranking)
}
