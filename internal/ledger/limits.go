package ledger

import (
	"fmt"
	"math"
)

// Tier identifies which monthly-limit threshold was crossed, named by the
// percentage it represents.
type Tier int

const (
	// TierNone means no threshold was crossed or no limit is configured.
	TierNone Tier = 0
	// TierWarning is crossed at 50% of the monthly limit.
	TierWarning Tier = 50
	// TierCritical is crossed at 80% of the monthly limit.
	TierCritical Tier = 80
	// TierExceeded is crossed at 100% of the monthly limit.
	TierExceeded Tier = 100
)

// LimitStatus is the result of threshold evaluation after an add.
type LimitStatus struct {
	Exceeded bool    `json:"exceeded"`
	Percent  float64 `json:"percent"` // spend/limit ratio, rounded to 4 decimals
	Tier     Tier    `json:"tier"`
	Message  string  `json:"message,omitempty"`
}

// Balances under this are announced as critically low.
const lowBalanceThreshold = 1000.0

// evaluateLimitsLocked runs the alert rules after a balance mutation. The
// balance alerts and the tier alert are independent: both can fire in one
// call, but at most one tier alert (the highest crossed) is emitted.
// Callers must hold l.mu.
func (l *Ledger) evaluateLimitsLocked(monthExpenseTotal float64) LimitStatus {
	if l.balance < 0 {
		l.hub.Broadcast(fmt.Sprintf("URGENT: balance went negative (%.2f)", l.balance))
	} else if l.balance < lowBalanceThreshold {
		l.hub.Broadcast(fmt.Sprintf("Careful: balance at a critical level (%.2f)", l.balance))
	}

	if l.monthlyLimit <= 0 {
		return LimitStatus{Message: "monthly limit not configured"}
	}

	percent := monthExpenseTotal / l.monthlyLimit

	var tier Tier
	var message string
	switch {
	case percent >= 1.0:
		tier = TierExceeded
		message = fmt.Sprintf("Monthly limit EXCEEDED (spent %.2f / limit %.2f)", monthExpenseTotal, l.monthlyLimit)
	case percent >= 0.8:
		tier = TierCritical
		message = fmt.Sprintf("Critical: 80%% of the monthly limit reached (spent %.2f / limit %.2f)", monthExpenseTotal, l.monthlyLimit)
	case percent >= 0.5:
		tier = TierWarning
		message = fmt.Sprintf("Half of the monthly limit is spent (spent %.2f / limit %.2f)", monthExpenseTotal, l.monthlyLimit)
	}

	if message != "" {
		l.hub.Broadcast(message)
	}

	return LimitStatus{
		Exceeded: percent >= 1.0,
		Percent:  math.Round(percent*10000) / 10000,
		Tier:     tier,
		Message:  message,
	}
}
