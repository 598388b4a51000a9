// Package handlers maps the HTTP surface onto the ledger, store, analytics,
// and advisor components. Handlers stay thin: decode, delegate, encode.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ckaratas/cebibak/internal/analytics"
	"github.com/ckaratas/cebibak/internal/api/middleware"
	"github.com/ckaratas/cebibak/internal/domain"
	"github.com/ckaratas/cebibak/internal/ledger"
	"github.com/ckaratas/cebibak/internal/store"
)

// storeErrorStatus picks the response code for a persistence failure.
// Network-class errors get 503 so clients can tell an outage from a bug.
func storeErrorStatus(err error) int {
	if store.IsNetworkError(err) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// TransactionsHandler handles transaction CRUD endpoints.
type TransactionsHandler struct {
	factory *domain.Factory
	ledger  *ledger.Ledger
	store   store.TransactionStore
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(factory *domain.Factory, l *ledger.Ledger, st store.TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		factory: factory,
		ledger:  l,
		store:   st,
		log:     log,
	}
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.factory.Create(fields)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			middleware.WriteError(w, http.StatusBadRequest, verr.Error())
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, "Invalid transaction")
		return
	}

	status, err := h.ledger.AddTransaction(r.Context(), tx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to add transaction")
		msg := "Failed to save transaction"
		if store.IsNetworkError(err) {
			msg = "Store unreachable, check the connection and try again"
		}
		middleware.WriteError(w, storeErrorStatus(err), msg)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"id":     tx.DocumentID(),
		"limit":  status,
	})
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, storeErrorStatus(err), "Failed to list transactions")
		return
	}

	if records == nil {
		records = []domain.Record{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"items": records,
		"count": len(records),
	})
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if !h.ledger.DeleteTransaction(r.Context(), id) {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "Transaction deleted",
	})
}

// DashboardHandler serves the analytics summary.
type DashboardHandler struct {
	store store.TransactionStore
	log   zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(st store.TransactionStore, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{store: st, log: log}
}

// Summary handles GET /api/dashboard. The summary is always computed on a
// fresh snapshot from the store, not from the ledger cache.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.ListAll(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to fetch transactions for the dashboard")
		middleware.WriteError(w, storeErrorStatus(err), "Failed to compute summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, analytics.Summarize(records))
}

// HealthHandler reports service liveness and store connectivity.
type HealthHandler struct {
	store store.TransactionStore
	log   zerolog.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(st store.TransactionStore, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{store: st, log: log}
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Store ping failed")
		errorType := "other"
		message := "Store connection error"
		if store.IsNetworkError(err) {
			errorType = "network"
			message = "Network error: check the internet connection"
		}
		middleware.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status":     "error",
			"store":      false,
			"error_type": errorType,
			"message":    message,
		})
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"store":  true,
		"time":   time.Now().Format(time.RFC3339),
	})
}
