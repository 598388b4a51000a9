package domain

import (
	"time"
)

// Kind discriminates the two transaction variants.
type Kind string

const (
	// KindIncome marks a transaction that increases the balance.
	KindIncome Kind = "Income"
	// KindExpense marks a transaction that decreases the balance.
	KindExpense Kind = "Expense"
)

// Transaction is the capability interface implemented by Income and Expense.
// Values are immutable after construction except for the document ID, which
// the persistence layer assigns on the first successful write.
type Transaction interface {
	// DocumentID returns the store-assigned id, or "" before the first write.
	DocumentID() string
	// SetDocumentID records the id returned by the store.
	SetDocumentID(id string)
	// Kind returns the variant tag.
	Kind() Kind
	// SignedAmount returns the balance delta this transaction applies:
	// positive for income, negative for expense.
	SignedAmount() float64
	// OccurredAt returns the transaction date.
	OccurredAt() time.Time
	// Describe returns a short human-readable summary.
	Describe() string
	// ToRecord maps the transaction into the persistence schema.
	ToRecord() Record
}

// Record is the fixed document schema shared with the persistence layer.
// The ID is opaque and owned by the store; it is empty until the first write.
type Record struct {
	ID          string    `json:"id,omitempty"`
	OwnerEmail  string    `json:"owner_email,omitempty"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category,omitempty"` // Expense only
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"` // "Income" or "Expense"
	Description string    `json:"description"`
	Source      string    `json:"source,omitempty"`       // Income only
	IsRecurring bool      `json:"is_recurring,omitempty"` // Income only
	IsMandatory bool      `json:"is_mandatory,omitempty"` // Expense only
}
