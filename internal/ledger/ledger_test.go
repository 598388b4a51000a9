package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ckaratas/cebibak/internal/domain"
	"github.com/ckaratas/cebibak/internal/notify"
	"github.com/ckaratas/cebibak/internal/store"
	"github.com/ckaratas/cebibak/internal/store/memory"
)

func newTestLedger() (*Ledger, *memory.Store, *[]string) {
	log := zerolog.Nop()
	st := memory.NewStore()
	hub := notify.NewHub()

	var alerts []string
	hub.Register(notify.ObserverFunc(func(n *notify.Notification) {
		alerts = append(alerts, n.Message)
	}))

	l := New(st, hub, domain.NewFactory(log), log)
	return l, st, &alerts
}

func income(amount float64, day int) *domain.Income {
	return &domain.Income{
		Amount:      amount,
		Description: "income",
		Date:        time.Date(2025, 5, day, 10, 0, 0, 0, time.UTC),
	}
}

func expense(amount float64, day int) *domain.Expense {
	return &domain.Expense{
		Amount:      amount,
		Description: "expense",
		Category:    "Misc",
		Date:        time.Date(2025, 5, day, 10, 0, 0, 0, time.UTC),
	}
}

func TestBalanceInvariant(t *testing.T) {
	l, _, _ := newTestLedger()
	ctx := context.Background()

	txs := []domain.Transaction{
		income(1000, 1),
		expense(300, 2),
		income(50, 3),
		expense(250, 4),
	}

	want := 0.0
	for _, tx := range txs {
		if _, err := l.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction failed: %v", err)
		}
		want += tx.SignedAmount()
	}

	if got := l.Balance(); got != want {
		t.Errorf("Balance() = %v, want %v", got, want)
	}
	if got := l.TransactionCount(); got != len(txs) {
		t.Errorf("TransactionCount() = %d, want %d", got, len(txs))
	}
}

func TestAddAssignsDocumentID(t *testing.T) {
	l, _, _ := newTestLedger()

	tx := income(100, 1)
	if _, err := l.AddTransaction(context.Background(), tx); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if tx.DocumentID() == "" {
		t.Error("expected the store-assigned id on the transaction")
	}
}

func TestDeleteReversesBalance(t *testing.T) {
	l, st, _ := newTestLedger()
	ctx := context.Background()

	if _, err := l.AddTransaction(ctx, income(500, 1)); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	exp := expense(50, 2)
	if _, err := l.AddTransaction(ctx, exp); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	before := l.Balance()
	if !l.DeleteTransaction(ctx, exp.DocumentID()) {
		t.Fatal("DeleteTransaction returned false for an existing id")
	}
	if got := l.Balance(); got != before+50 {
		t.Errorf("Balance() = %v, want %v", got, before+50)
	}
	if got := l.TransactionCount(); got != 1 {
		t.Errorf("TransactionCount() = %d, want 1", got)
	}

	records, err := st.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	for _, rec := range records {
		if rec.ID == exp.DocumentID() {
			t.Error("deleted transaction still listed by the store")
		}
	}
}

func TestDeleteUnknownIDReturnsFalse(t *testing.T) {
	l, _, _ := newTestLedger()

	if l.DeleteTransaction(context.Background(), "no-such-id") {
		t.Error("expected false for an unknown id")
	}
	if got := l.Balance(); got != 0 {
		t.Errorf("Balance() = %v, want 0", got)
	}
}

func TestReloadIsIdempotent(t *testing.T) {
	l, st, _ := newTestLedger()
	ctx := context.Background()

	seed := []domain.Record{
		{Type: "Income", Amount: 2000, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{Type: "Expense", Amount: 700, Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Category: "Rent"},
		{Type: "Expense", Amount: 300, Date: time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), Category: "Market"},
	}
	for i := range seed {
		if _, err := st.Add(ctx, &seed[i]); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}

	if err := l.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	firstBalance, firstCount := l.Balance(), l.TransactionCount()
	if firstBalance != 1000 {
		t.Errorf("Balance() = %v, want 1000", firstBalance)
	}

	if err := l.Reload(ctx); err != nil {
		t.Fatalf("second Reload failed: %v", err)
	}
	if l.Balance() != firstBalance || l.TransactionCount() != firstCount {
		t.Errorf("Reload not idempotent: balance %v -> %v, count %d -> %d",
			firstBalance, l.Balance(), firstCount, l.TransactionCount())
	}
}

// failingStore wraps the memory store and fails writes on demand.
type failingStore struct {
	*memory.Store
	failAdd  bool
	failList bool
}

func (f *failingStore) Add(ctx context.Context, rec *domain.Record) (string, error) {
	if f.failAdd {
		return "", errors.New("store: connection refused")
	}
	return f.Store.Add(ctx, rec)
}

func (f *failingStore) ListAll(ctx context.Context) ([]domain.Record, error) {
	if f.failList {
		return nil, errors.New("store: connection refused")
	}
	return f.Store.ListAll(ctx)
}

func TestAddRollsBackOnPersistFailure(t *testing.T) {
	log := zerolog.Nop()
	st := &failingStore{Store: memory.NewStore(), failAdd: true}
	l := New(st, notify.NewHub(), domain.NewFactory(log), log)

	_, err := l.AddTransaction(context.Background(), income(100, 1))
	if err == nil {
		t.Fatal("expected persistence error to propagate")
	}
	if !store.IsNetworkError(err) {
		t.Errorf("expected a network-class error, got %v", err)
	}
	if got := l.Balance(); got != 0 {
		t.Errorf("Balance() = %v after rollback, want 0", got)
	}
	if got := l.TransactionCount(); got != 0 {
		t.Errorf("TransactionCount() = %d after rollback, want 0", got)
	}
}

func TestReloadFailureKeepsState(t *testing.T) {
	log := zerolog.Nop()
	st := &failingStore{Store: memory.NewStore()}
	l := New(st, notify.NewHub(), domain.NewFactory(log), log)
	ctx := context.Background()

	if _, err := l.AddTransaction(ctx, income(100, 1)); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	st.failList = true
	if err := l.Reload(ctx); err == nil {
		t.Fatal("expected Reload to report the store failure")
	}
	if got := l.Balance(); got != 100 {
		t.Errorf("Balance() = %v, want state preserved at 100", got)
	}
}

func TestLimitTiers(t *testing.T) {
	tests := []struct {
		name         string
		expenseTotal float64
		wantTier     Tier
		wantExceeded bool
	}{
		{name: "warning at 50%", expenseTotal: 500, wantTier: TierWarning},
		{name: "critical at 80%", expenseTotal: 800, wantTier: TierCritical},
		{name: "exceeded at 100%", expenseTotal: 1000, wantTier: TierExceeded, wantExceeded: true},
		{name: "still only exceeded past 100%", expenseTotal: 1200, wantTier: TierExceeded, wantExceeded: true},
		{name: "no tier below 50%", expenseTotal: 499.99, wantTier: TierNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _, alerts := newTestLedger()
			l.SetMonthlyLimit(1000)

			status, err := l.AddTransaction(context.Background(), expense(tt.expenseTotal, 10))
			if err != nil {
				t.Fatalf("AddTransaction failed: %v", err)
			}
			if status.Tier != tt.wantTier {
				t.Errorf("Tier = %d, want %d", status.Tier, tt.wantTier)
			}
			if status.Exceeded != tt.wantExceeded {
				t.Errorf("Exceeded = %v, want %v", status.Exceeded, tt.wantExceeded)
			}

			tierAlerts := 0
			for _, msg := range *alerts {
				if strings.Contains(msg, "limit") {
					tierAlerts++
				}
			}
			wantAlerts := 0
			if tt.wantTier != TierNone {
				wantAlerts = 1
			}
			if tierAlerts != wantAlerts {
				t.Errorf("tier alerts = %d, want %d (alerts: %v)", tierAlerts, wantAlerts, *alerts)
			}
		})
	}
}

func TestLimitDisabled(t *testing.T) {
	l, _, alerts := newTestLedger()

	// Plenty of balance so no balance alerts interfere.
	ctx := context.Background()
	if _, err := l.AddTransaction(ctx, income(10000, 1)); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	*alerts = nil

	status, err := l.AddTransaction(ctx, expense(900, 2))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if status.Exceeded || status.Tier != TierNone || status.Percent != 0 {
		t.Errorf("with no limit configured, status = %+v", status)
	}
	for _, msg := range *alerts {
		if strings.Contains(msg, "limit") {
			t.Errorf("unexpected tier alert: %s", msg)
		}
	}
}

func TestBalanceAlerts(t *testing.T) {
	l, _, alerts := newTestLedger()
	ctx := context.Background()

	// First expense drives the balance negative: urgent alert.
	if _, err := l.AddTransaction(ctx, expense(200, 1)); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	found := false
	for _, msg := range *alerts {
		if strings.Contains(msg, "negative") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a negative-balance alert, got %v", *alerts)
	}

	// Back above zero but under the low threshold: low-balance alert.
	*alerts = nil
	if _, err := l.AddTransaction(ctx, income(700, 2)); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	found = false
	for _, msg := range *alerts {
		if strings.Contains(msg, "critical level") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a low-balance alert, got %v", *alerts)
	}
}

func TestBalanceAndTierAlertsAreIndependent(t *testing.T) {
	l, _, alerts := newTestLedger()
	l.SetMonthlyLimit(1000)

	// One expense with no prior income: balance goes negative and the limit
	// is exceeded in the same call.
	status, err := l.AddTransaction(context.Background(), expense(1200, 5))
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}
	if status.Tier != TierExceeded {
		t.Errorf("Tier = %d, want exceeded", status.Tier)
	}
	if len(*alerts) != 2 {
		t.Errorf("expected balance alert + tier alert, got %v", *alerts)
	}
}

func TestPersistAllSkipsSavedTransactions(t *testing.T) {
	l, st, _ := newTestLedger()
	ctx := context.Background()

	if _, err := l.AddTransaction(ctx, income(100, 1)); err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	saved, err := l.PersistAll(ctx)
	if err != nil {
		t.Fatalf("PersistAll failed: %v", err)
	}
	if saved != 0 {
		t.Errorf("PersistAll saved %d, want 0 (everything already persisted)", saved)
	}
	if st.Len() != 1 {
		t.Errorf("store has %d documents, want 1 (no duplicates)", st.Len())
	}
}
