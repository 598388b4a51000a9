package domain

import (
	"fmt"
	"strings"
	"time"
)

// Expense is money going out. Category is free text; analytics normalizes it.
type Expense struct {
	ID          string
	Amount      float64
	Description string
	Date        time.Time
	OwnerEmail  string

	Category    string
	IsMandatory bool
}

// installmentThreshold is the minimum amount for a purchase to plausibly be
// paid in installments.
const installmentThreshold = 1000.0

// installmentKeywords are matched case-insensitively against the category.
// The Turkish entries keep previously stored reference data evaluating the
// same way.
var installmentKeywords = []string{
	"BILL", "CREDIT", "INSTALLMENT", "PAYMENT",
	"FATURA", "KREDI", "KREDİ", "TAKSIT", "ÖDEME",
}

// HasInstallments reports whether this expense is likely paid in installments:
// the amount is at or above the threshold and the category names a billing or
// credit concept.
func (e *Expense) HasInstallments() bool {
	if e.Amount < installmentThreshold {
		return false
	}
	category := strings.ToUpper(e.Category)
	for _, kw := range installmentKeywords {
		if strings.Contains(category, kw) {
			return true
		}
	}
	return false
}

// DocumentID implements Transaction.
func (e *Expense) DocumentID() string { return e.ID }

// SetDocumentID implements Transaction.
func (e *Expense) SetDocumentID(id string) { e.ID = id }

// Kind implements Transaction.
func (e *Expense) Kind() Kind { return KindExpense }

// SignedAmount implements Transaction.
func (e *Expense) SignedAmount() float64 { return -e.Amount }

// OccurredAt implements Transaction.
func (e *Expense) OccurredAt() time.Time { return e.Date }

// Describe implements Transaction.
func (e *Expense) Describe() string {
	suffix := ""
	if e.HasInstallments() {
		suffix = ", installments"
	}
	return fmt.Sprintf("[%s] expense %q in %s: %.2f (mandatory=%t%s)",
		e.Date.Format("2006-01-02"), e.Description, e.Category, e.Amount, e.IsMandatory, suffix)
}

// ToRecord implements Transaction.
func (e *Expense) ToRecord() Record {
	return Record{
		ID:          e.ID,
		OwnerEmail:  e.OwnerEmail,
		Date:        e.Date,
		Category:    e.Category,
		Amount:      e.Amount,
		Type:        string(KindExpense),
		Description: e.Description,
		IsMandatory: e.IsMandatory,
	}
}

var _ Transaction = (*Expense)(nil)
