package domain

import (
	"testing"
	"time"
)

func TestIncomeEstimatedTax(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		recurring bool
		want      float64
	}{
		{
			name:   "low bracket boundary",
			amount: 110000,
			want:   16500, // 15% of the whole amount
		},
		{
			name:      "mid bracket recurring discount",
			amount:    110001,
			recurring: true,
			want:      20900.19, // 110001 * 0.20 * 0.95, rounded
		},
		{
			name:   "mid bracket upper boundary",
			amount: 230000,
			want:   46000,
		},
		{
			name:   "high bracket",
			amount: 230001,
			want:   62100.27,
		},
		{
			name:      "small recurring",
			amount:    1000,
			recurring: true,
			want:      142.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			income := &Income{Amount: tt.amount, IsRecurring: tt.recurring}
			if got := income.EstimatedTax(); got != tt.want {
				t.Errorf("EstimatedTax() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpenseHasInstallments(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		category string
		want     bool
	}{
		{
			name:     "below threshold even with matching category",
			amount:   999,
			category: "FATURA",
			want:     false,
		},
		{
			name:     "at threshold, case-insensitive match",
			amount:   1000,
			category: "fatura",
			want:     true,
		},
		{
			name:     "keyword as substring",
			amount:   2500,
			category: "Credit Card Payment",
			want:     true,
		},
		{
			name:     "large amount, unrelated category",
			amount:   5000,
			category: "Groceries",
			want:     false,
		},
		{
			name:   "empty category",
			amount: 1500,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := &Expense{Amount: tt.amount, Category: tt.category}
			if got := expense.HasInstallments(); got != tt.want {
				t.Errorf("HasInstallments() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSignedAmount(t *testing.T) {
	income := &Income{Amount: 250}
	if got := income.SignedAmount(); got != 250 {
		t.Errorf("income SignedAmount() = %v, want 250", got)
	}

	expense := &Expense{Amount: 250}
	if got := expense.SignedAmount(); got != -250 {
		t.Errorf("expense SignedAmount() = %v, want -250", got)
	}
}

func TestToRecordCarriesVariantFields(t *testing.T) {
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	income := &Income{ID: "a1", Amount: 1200, Description: "Salary", Date: date, Source: "Acme", IsRecurring: true}
	rec := income.ToRecord()
	if rec.Type != string(KindIncome) || rec.Source != "Acme" || !rec.IsRecurring {
		t.Errorf("income record = %+v, missing variant fields", rec)
	}
	if rec.Category != "" || rec.IsMandatory {
		t.Errorf("income record carries expense fields: %+v", rec)
	}

	expense := &Expense{ID: "b2", Amount: 80, Description: "Bus pass", Date: date, Category: "Transport", IsMandatory: true}
	rec = expense.ToRecord()
	if rec.Type != string(KindExpense) || rec.Category != "Transport" || !rec.IsMandatory {
		t.Errorf("expense record = %+v, missing variant fields", rec)
	}
	if rec.Source != "" || rec.IsRecurring {
		t.Errorf("expense record carries income fields: %+v", rec)
	}
}
