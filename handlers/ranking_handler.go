package handlers

import (
	"net/http"

	"github.com/ligapro/liga-backend/services"
)

type RankingHandler struct {
	rankingService services.RankingService
}

func NewRankingHandler(rankingService services.RankingService) *RankingHandler {
	return &RankingHandler{rankingService: rankingService}
}

// SystemHandler обрабатывает GET /ranking/system — обменная таблица,
// по которой считаются очки.
func (h *RankingHandler) SystemHandler(w http.ResponseWriter, r *http.Request) {
	rules := h.rankingService.SystemRules()
	if err := writeJSON(w, http.StatusOK, jsonResponse{"exchange_table": rules}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
