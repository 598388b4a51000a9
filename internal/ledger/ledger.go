// Package ledger holds the stateful core of the budget tracker: the running
// balance, the in-memory transaction cache, the monthly spending limit, and
// the observer hub. The store remains the source of truth; the ledger is
// derived state reconstructed by Reload.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ckaratas/cebibak/internal/domain"
	"github.com/ckaratas/cebibak/internal/notify"
	"github.com/ckaratas/cebibak/internal/store"
)

// Ledger is the single logical balance accumulator. One instance is
// constructed at startup and shared by all request handlers; every mutating
// operation runs under one mutex so concurrent adds cannot observe a stale
// balance or monthly total.
type Ledger struct {
	store   store.TransactionStore
	hub     *notify.Hub
	factory *domain.Factory
	log     zerolog.Logger

	mu           sync.Mutex
	balance      float64
	monthlyLimit float64 // 0 disables limit evaluation
	transactions []domain.Transaction
}

// New creates a Ledger with zero balance and an empty cache. Call Reload to
// populate it from the store.
func New(st store.TransactionStore, hub *notify.Hub, factory *domain.Factory, log zerolog.Logger) *Ledger {
	return &Ledger{
		store:   st,
		hub:     hub,
		factory: factory,
		log:     log,
	}
}

// AddTransaction appends the transaction to the cache, applies its balance
// delta, evaluates alerts, and persists the record. On persistence failure
// the cache append and the balance delta are rolled back and the error is
// returned; no partial state survives.
func (l *Ledger) AddTransaction(ctx context.Context, t domain.Transaction) (LimitStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.transactions = append(l.transactions, t)
	l.balance += t.SignedAmount()

	// For an expense the threshold check must include the new amount, which
	// is not in the store yet.
	var status LimitStatus
	if t.Kind() == domain.KindExpense {
		total := l.monthlyExpenseTotalLocked(ctx, t.OccurredAt()) - t.SignedAmount()
		status = l.evaluateLimitsLocked(total)
	} else {
		status = l.evaluateLimitsLocked(l.monthlyExpenseTotalLocked(ctx, time.Now()))
	}

	rec := t.ToRecord()
	id, err := l.store.Add(ctx, &rec)
	if err != nil {
		l.balance -= t.SignedAmount()
		l.transactions = l.transactions[:len(l.transactions)-1]
		if store.IsNetworkError(err) {
			l.log.Error().Err(err).Msg("Store unreachable, transaction not saved")
		} else {
			l.log.Error().Err(err).Msg("Store rejected transaction")
		}
		return LimitStatus{}, fmt.Errorf("ledger: persisting transaction: %w", err)
	}
	t.SetDocumentID(id)

	l.log.Info().
		Str("id", id).
		Str("kind", string(t.Kind())).
		Float64("balance", l.balance).
		Msg(t.Describe())
	return status, nil
}

// DeleteTransaction removes the transaction with the given id from the store,
// reverses its balance delta, and drops it from the cache. It returns false
// for an unknown id and for any store failure; delete never propagates
// errors.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.log.Error().Err(err).Str("id", id).Msg("Failed to fetch transaction for delete")
		}
		return false
	}

	if err := l.store.Delete(ctx, id); err != nil {
		l.log.Error().Err(err).Str("id", id).Msg("Failed to delete transaction")
		return false
	}

	switch {
	case strings.EqualFold(rec.Type, string(domain.KindIncome)):
		l.balance -= rec.Amount
	case strings.EqualFold(rec.Type, string(domain.KindExpense)):
		l.balance += rec.Amount
	}

	kept := l.transactions[:0]
	for _, t := range l.transactions {
		if t.DocumentID() != id {
			kept = append(kept, t)
		}
	}
	l.transactions = kept

	l.log.Info().Str("id", id).Float64("balance", l.balance).Msg("Transaction deleted")
	return true
}

// Reload rebuilds balance and cache by replaying every stored record in
// ascending date order, without re-persisting or re-notifying. It is the
// authoritative resynchronization path and is idempotent. If the store scan
// fails the current state is left untouched.
func (l *Ledger) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.store.ListAll(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("Reload failed, keeping current state")
		return fmt.Errorf("ledger: reloading history: %w", err)
	}

	balance := 0.0
	transactions := make([]domain.Transaction, 0, len(records))
	for _, rec := range records {
		t, err := l.factory.FromRecord(rec)
		if err != nil {
			l.log.Warn().Err(err).Str("id", rec.ID).Msg("Skipping unreadable stored record")
			continue
		}
		balance += t.SignedAmount()
		transactions = append(transactions, t)
	}

	l.balance = balance
	l.transactions = transactions

	l.log.Info().
		Int("transactions", len(transactions)).
		Float64("balance", balance).
		Msg("History reloaded")
	return nil
}

// PersistAll writes every cached transaction that has no document id yet and
// returns how many were saved. Already persisted transactions are untouched.
func (l *Ledger) PersistAll(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	saved := 0
	for _, t := range l.transactions {
		if t.DocumentID() != "" {
			continue
		}
		rec := t.ToRecord()
		id, err := l.store.Add(ctx, &rec)
		if err != nil {
			return saved, fmt.Errorf("ledger: persisting cached transactions: %w", err)
		}
		t.SetDocumentID(id)
		saved++
	}

	if saved > 0 {
		l.log.Info().Int("saved", saved).Msg("Cached transactions persisted")
	}
	return saved, nil
}

// SetMonthlyLimit assigns the monthly spending limit. Zero disables tier
// evaluation.
func (l *Ledger) SetMonthlyLimit(limit float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.monthlyLimit = limit
}

// Balance returns the current balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// MonthlyLimit returns the configured monthly limit.
func (l *Ledger) MonthlyLimit() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.monthlyLimit
}

// TransactionCount returns the size of the in-memory cache.
func (l *Ledger) TransactionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transactions)
}

// monthlyExpenseTotalLocked sums stored Expense amounts falling in the same
// calendar month and year as ref. The full collection is rescanned on every
// call; fine for personal data volumes. A store failure degrades to 0 so an
// add is never blocked by the threshold check.
func (l *Ledger) monthlyExpenseTotalLocked(ctx context.Context, ref time.Time) float64 {
	records, err := l.store.ListAll(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("Failed to compute monthly expense total")
		return 0
	}

	year, month := ref.Year(), ref.Month()
	total := 0.0
	for _, rec := range records {
		if !strings.EqualFold(rec.Type, string(domain.KindExpense)) {
			continue
		}
		if rec.Date.Year() == year && rec.Date.Month() == month {
			total += rec.Amount
		}
	}
	return total
}
