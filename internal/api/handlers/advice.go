package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ckaratas/cebibak/internal/advisor"
	"github.com/ckaratas/cebibak/internal/analytics"
	"github.com/ckaratas/cebibak/internal/api/middleware"
	"github.com/ckaratas/cebibak/internal/store"
)

// AdviceHandler serves generated finance advice and the chat endpoint.
type AdviceHandler struct {
	advisor *advisor.Advisor
	store   store.TransactionStore
	log     zerolog.Logger
}

// NewAdviceHandler creates a new advice handler.
func NewAdviceHandler(a *advisor.Advisor, st store.TransactionStore, log zerolog.Logger) *AdviceHandler {
	return &AdviceHandler{advisor: a, store: st, log: log}
}

// Advice handles GET /api/advice
func (h *AdviceHandler) Advice(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": h.advisor.Advice(r.Context(), summary),
	})
}

// Chat handles POST /api/advice
func (h *AdviceHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message   string             `json:"message"`
		ChartData []advisor.ChartRow `json:"chart_data"`
		Summary   *analytics.Summary `json:"summary"`
		Image     *advisor.Image     `json:"image"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	summary := body.Summary
	if summary == nil {
		s, ok := h.summarize(w, r)
		if !ok {
			return
		}
		summary = s
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": h.advisor.ChatReply(r.Context(), summary, body.Message, body.ChartData, body.Image),
	})
}

func (h *AdviceHandler) summarize(w http.ResponseWriter, r *http.Request) (*analytics.Summary, bool) {
	records, err := h.store.ListAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch transactions for advice")
		middleware.WriteError(w, storeErrorStatus(err), "Failed to load transactions")
		return nil, false
	}
	return analytics.Summarize(records), true
}
