package domain

import (
	"fmt"
	"math"
	"time"
)

// Income is money coming in: salary, scholarship, a side gig.
type Income struct {
	ID          string
	Amount      float64
	Description string
	Date        time.Time
	OwnerEmail  string

	Source      string
	IsRecurring bool
}

// Tax brackets applied to the whole amount, not marginally.
const (
	taxBracketMid  = 110_000.0
	taxBracketHigh = 230_000.0

	taxRateLow  = 0.15
	taxRateMid  = 0.20
	taxRateHigh = 0.27

	// Recurring income gets a 5% reduction on the estimate.
	recurringTaxDiscount = 0.95
)

// EstimatedTax returns the estimated income tax, rounded to 2 decimals.
// The bracket rate is chosen by the full amount and applied to all of it.
func (i *Income) EstimatedTax() float64 {
	rate := taxRateLow
	switch {
	case i.Amount > taxBracketHigh:
		rate = taxRateHigh
	case i.Amount > taxBracketMid:
		rate = taxRateMid
	}

	tax := i.Amount * rate
	if i.IsRecurring {
		tax *= recurringTaxDiscount
	}
	return round2(tax)
}

// DocumentID implements Transaction.
func (i *Income) DocumentID() string { return i.ID }

// SetDocumentID implements Transaction.
func (i *Income) SetDocumentID(id string) { i.ID = id }

// Kind implements Transaction.
func (i *Income) Kind() Kind { return KindIncome }

// SignedAmount implements Transaction.
func (i *Income) SignedAmount() float64 { return i.Amount }

// OccurredAt implements Transaction.
func (i *Income) OccurredAt() time.Time { return i.Date }

// Describe implements Transaction.
func (i *Income) Describe() string {
	return fmt.Sprintf("[%s] income %q from %s: %.2f (est. tax %.2f)",
		i.Date.Format("2006-01-02"), i.Description, i.Source, i.Amount, i.EstimatedTax())
}

// ToRecord implements Transaction.
func (i *Income) ToRecord() Record {
	return Record{
		ID:          i.ID,
		OwnerEmail:  i.OwnerEmail,
		Date:        i.Date,
		Amount:      i.Amount,
		Type:        string(KindIncome),
		Description: i.Description,
		Source:      i.Source,
		IsRecurring: i.IsRecurring,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var _ Transaction = (*Income)(nil)
