package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Factory builds validated Transaction values from loosely typed input.
// API payloads use snake_case keys while stored documents use exported-field
// casing; the factory accepts both. Amount and the type discriminator are
// validated strictly, everything else degrades to a sensible default.
type Factory struct {
	Log zerolog.Logger

	// Now is the fallback timestamp source for absent or malformed dates.
	// Overridable in tests; defaults to time.Now.
	Now func() time.Time
}

// NewFactory returns a Factory logging through the given logger.
func NewFactory(log zerolog.Logger) *Factory {
	return &Factory{Log: log, Now: time.Now}
}

// Create parses a field map into an Income or Expense. It fails with a
// ValidationError when the type discriminator is unknown or the amount is
// missing, non-numeric, or non-positive. A malformed date never fails
// construction: it is logged and replaced with the current time.
func (f *Factory) Create(fields map[string]interface{}) (Transaction, error) {
	kind, ok := f.stringField(fields, "type", "Type", "transaction_type")
	if !ok {
		return nil, validationErr("type", "missing transaction type")
	}

	amountRaw, ok := lookup(fields, "amount", "Amount")
	if !ok {
		return nil, validationErr("amount", "missing amount")
	}
	amount, ok := toFloat(amountRaw)
	if !ok {
		return nil, validationErr("amount", "not a number")
	}
	if amount <= 0 {
		return nil, validationErr("amount", "must be positive")
	}

	description, _ := f.stringField(fields, "description", "Description")
	ownerEmail, _ := f.stringField(fields, "owner_email", "OwnerEmail", "ownerEmail")
	id, _ := f.stringField(fields, "id", "ID")
	date := f.dateField(fields, "date", "Date")

	switch {
	case strings.EqualFold(kind, string(KindIncome)):
		source, _ := f.stringField(fields, "source", "Source")
		recurring := f.boolField(fields, "is_recurring", "IsRecurring", "isRecurring")
		return &Income{
			ID:          id,
			Amount:      amount,
			Description: description,
			Date:        date,
			OwnerEmail:  ownerEmail,
			Source:      source,
			IsRecurring: recurring,
		}, nil

	case strings.EqualFold(kind, string(KindExpense)):
		category, _ := f.stringField(fields, "category", "Category")
		mandatory := f.boolField(fields, "is_mandatory", "IsMandatory", "isMandatory")
		return &Expense{
			ID:          id,
			Amount:      amount,
			Description: description,
			Date:        date,
			OwnerEmail:  ownerEmail,
			Category:    category,
			IsMandatory: mandatory,
		}, nil
	}

	return nil, validationErr("type", "must be Income or Expense, got "+strconv.Quote(kind))
}

// FromRecord rebuilds a Transaction from a stored document. Only the type tag
// can fail; a zero date falls back to the current time like Create does.
func (f *Factory) FromRecord(rec Record) (Transaction, error) {
	date := rec.Date
	if date.IsZero() {
		f.Log.Warn().Str("id", rec.ID).Msg("Stored record has no date, defaulting to now")
		date = f.now()
	}

	switch {
	case strings.EqualFold(rec.Type, string(KindIncome)):
		return &Income{
			ID:          rec.ID,
			Amount:      rec.Amount,
			Description: rec.Description,
			Date:        date,
			OwnerEmail:  rec.OwnerEmail,
			Source:      rec.Source,
			IsRecurring: rec.IsRecurring,
		}, nil
	case strings.EqualFold(rec.Type, string(KindExpense)):
		return &Expense{
			ID:          rec.ID,
			Amount:      rec.Amount,
			Description: rec.Description,
			Date:        date,
			OwnerEmail:  rec.OwnerEmail,
			Category:    rec.Category,
			IsMandatory: rec.IsMandatory,
		}, nil
	}
	return nil, validationErr("type", "must be Income or Expense, got "+strconv.Quote(rec.Type))
}

func (f *Factory) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// stringField returns the first non-empty string found under the given keys.
func (f *Factory) stringField(fields map[string]interface{}, keys ...string) (string, bool) {
	raw, ok := lookup(fields, keys...)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// boolField normalizes booleans that may arrive as strings or numbers.
// Recognized true forms: true, "true", "evet", "yes", "1", 1.
func (f *Factory) boolField(fields map[string]interface{}, keys ...string) bool {
	raw, ok := lookup(fields, keys...)
	if !ok {
		return false
	}
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "evet", "yes", "1":
			return true
		}
		return false
	default:
		n, ok := toFloat(raw)
		return ok && n == 1
	}
}

// dateField parses a calendar date from the input. Failure is non-fatal: the
// transaction is stamped with the current time instead.
func (f *Factory) dateField(fields map[string]interface{}, keys ...string) time.Time {
	raw, ok := lookup(fields, keys...)
	if !ok || raw == nil {
		return f.now()
	}

	switch v := raw.(type) {
	case time.Time:
		return v
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		f.Log.Warn().Str("date", s).Msg("Malformed date, defaulting to now")
	default:
		f.Log.Warn().Interface("date", raw).Msg("Unsupported date value, defaulting to now")
	}
	return f.now()
}

func lookup(fields map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if v, ok := fields[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}
