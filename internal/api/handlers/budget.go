package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ckaratas/cebibak/internal/api/middleware"
	"github.com/ckaratas/cebibak/internal/ledger"
	"github.com/ckaratas/cebibak/internal/notify"
)

// BudgetHandler exposes the ledger's balance, limit, and lifecycle endpoints.
type BudgetHandler struct {
	ledger *ledger.Ledger
	hub    *notify.Hub
	log    zerolog.Logger
}

// NewBudgetHandler creates a new budget handler.
func NewBudgetHandler(l *ledger.Ledger, hub *notify.Hub, log zerolog.Logger) *BudgetHandler {
	return &BudgetHandler{ledger: l, hub: hub, log: log}
}

// Status handles GET /api/budget/status. The ledger is refreshed from the
// store first; a failed refresh is logged and the cached state is returned.
func (h *BudgetHandler) Status(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Reload(r.Context()); err != nil {
		h.log.Warn().Err(err).Msg("Refresh before status failed, serving cached state")
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"balance":           h.ledger.Balance(),
		"monthly_limit":     h.ledger.MonthlyLimit(),
		"transaction_count": h.ledger.TransactionCount(),
		"observer_count":    h.hub.Count(),
	})
}

// SetLimit handles PUT /api/budget/limit
func (h *BudgetHandler) SetLimit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MonthlyLimit *float64 `json:"monthly_limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.MonthlyLimit == nil {
		middleware.WriteError(w, http.StatusBadRequest, "monthly_limit is required")
		return
	}

	h.ledger.SetMonthlyLimit(*body.MonthlyLimit)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"monthly_limit": *body.MonthlyLimit,
	})
}

// Reload handles POST /api/budget/reload
func (h *BudgetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Reload(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Reload failed")
		middleware.WriteError(w, storeErrorStatus(err), "Failed to reload transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ok",
		"transaction_count": h.ledger.TransactionCount(),
		"balance":           h.ledger.Balance(),
	})
}

// Persist handles POST /api/budget/persist
func (h *BudgetHandler) Persist(w http.ResponseWriter, r *http.Request) {
	saved, err := h.ledger.PersistAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Persist failed")
		middleware.WriteError(w, storeErrorStatus(err), "Failed to persist transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"saved":  saved,
	})
}

// Notify handles POST /api/budget/notify
func (h *BudgetHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Message == "" {
		middleware.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	h.hub.Broadcast(body.Message)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"delivered": h.hub.Count(),
	})
}
