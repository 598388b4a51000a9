// Package analytics computes time-bucketed summaries and a short-term
// forecast over the full transaction set. Everything here is a pure function
// of its input: the engine holds no state and always works on a fresh
// snapshot fetched from the store, so it is safe to run concurrently with
// ledger mutations.
package analytics

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ckaratas/cebibak/internal/domain"
)

// forecastWindow is how many trailing monthly buckets feed the forecast.
const forecastWindow = 3

// unknownCategory buckets expenses with neither category nor description.
const unknownCategory = "Unknown"

// DailyPoint is one calendar day with at least one transaction.
type DailyPoint struct {
	Day     civil.Date `json:"date"`
	Income  float64    `json:"income"`
	Expense float64    `json:"expense"`
}

// MonthlyPoint is one calendar month with data, keyed by its first day.
type MonthlyPoint struct {
	MonthStart civil.Date `json:"month_start"`
	Income     float64    `json:"income"`
	Expense    float64    `json:"expense"`
}

// Forecast is the trailing mean of up to the last three monthly buckets,
// computed independently per type.
type Forecast struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Summary is the full analytics output. It is computed on demand and never
// stored.
type Summary struct {
	TotalIncome       float64            `json:"total_income"`
	TotalExpense      float64            `json:"total_expense"`
	Daily             []DailyPoint       `json:"daily"`
	Monthly           []MonthlyPoint     `json:"monthly"`
	Forecast          Forecast           `json:"forecast"`
	CategoryBreakdown map[string]float64 `json:"category_breakdown"`
}

// Summarize aggregates the records into daily and monthly series, totals, a
// category breakdown, and the forecast. Records without a date are skipped.
// Empty input yields a zero summary, never an error.
func Summarize(records []domain.Record) *Summary {
	summary := &Summary{
		Daily:             []DailyPoint{},
		Monthly:           []MonthlyPoint{},
		CategoryBreakdown: map[string]float64{},
	}

	daily := map[civil.Date]*DailyPoint{}
	monthly := map[civil.Date]*MonthlyPoint{}

	for _, rec := range records {
		if rec.Date.IsZero() {
			continue
		}

		isIncome := strings.EqualFold(rec.Type, string(domain.KindIncome))
		isExpense := strings.EqualFold(rec.Type, string(domain.KindExpense))
		if !isIncome && !isExpense {
			continue
		}

		day := civil.DateOf(rec.Date)
		monthStart := civil.Date{Year: day.Year, Month: day.Month, Day: 1}

		dp, ok := daily[day]
		if !ok {
			dp = &DailyPoint{Day: day}
			daily[day] = dp
		}
		mp, ok := monthly[monthStart]
		if !ok {
			mp = &MonthlyPoint{MonthStart: monthStart}
			monthly[monthStart] = mp
		}

		if isIncome {
			summary.TotalIncome += rec.Amount
			dp.Income += rec.Amount
			mp.Income += rec.Amount
		} else {
			summary.TotalExpense += rec.Amount
			dp.Expense += rec.Amount
			mp.Expense += rec.Amount
			summary.CategoryBreakdown[normalizeCategory(rec)] += rec.Amount
		}
	}

	for _, dp := range daily {
		summary.Daily = append(summary.Daily, *dp)
	}
	sort.Slice(summary.Daily, func(i, j int) bool {
		return summary.Daily[i].Day.Before(summary.Daily[j].Day)
	})

	for _, mp := range monthly {
		summary.Monthly = append(summary.Monthly, *mp)
	}
	sort.Slice(summary.Monthly, func(i, j int) bool {
		return summary.Monthly[i].MonthStart.Before(summary.Monthly[j].MonthStart)
	})

	summary.Forecast = forecast(summary.Monthly)
	return summary
}

// forecast averages the trailing monthly buckets. Shorter histories use
// whatever exists; no history forecasts zero.
func forecast(monthly []MonthlyPoint) Forecast {
	if len(monthly) == 0 {
		return Forecast{}
	}

	window := monthly
	if len(window) > forecastWindow {
		window = window[len(window)-forecastWindow:]
	}

	var f Forecast
	for _, mp := range window {
		f.Income += mp.Income
		f.Expense += mp.Expense
	}
	f.Income /= float64(len(window))
	f.Expense /= float64(len(window))
	return f
}

// normalizeCategory picks the grouping key for an expense: the category,
// falling back to the description, then to "Unknown". Keys are trimmed and
// title-cased so "MARKET" and " market " land in the same bucket.
func normalizeCategory(rec domain.Record) string {
	category := strings.TrimSpace(rec.Category)
	if category == "" {
		category = strings.TrimSpace(rec.Description)
	}
	if category == "" {
		return unknownCategory
	}
	// cases.Caser carries internal state, so a fresh one per call keeps
	// Summarize safe to run concurrently.
	return cases.Title(language.Und).String(strings.ToLower(category))
}
