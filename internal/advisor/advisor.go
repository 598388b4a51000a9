// Package advisor turns an analytics summary into short financial advice
// through Gemini. The external service is strictly optional: every entry
// point degrades to a deterministic local heuristic when no key is
// configured, the call fails, or the model returns nothing. Callers never see
// an error from this package.
package advisor

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/ckaratas/cebibak/internal/analytics"
)

// maxChartRows caps how many series rows are inlined into the prompt.
const maxChartRows = 50

// ChartRow is one row of chart data the client may attach to a chat request.
type ChartRow struct {
	Date    string  `json:"date"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// Image is an inline chart screenshot or drawing: raw base64 without a data
// URI header, plus its MIME type.
type Image struct {
	Data     string `json:"data"`
	MIMEType string `json:"mime_type"`
}

// Advisor generates advice and chat replies. The zero value is unusable; use
// New.
type Advisor struct {
	model  string
	apiKey string // empty disables the external service entirely
	log    zerolog.Logger
}

// New creates an Advisor for the given model. An empty apiKey pins every
// reply to the local heuristic.
func New(model, apiKey string, log zerolog.Logger) *Advisor {
	return &Advisor{model: model, apiKey: apiKey, log: log}
}

const advicePersona = "You are a witty, warm personal finance coach. " +
	"Be clear and satisfying without rambling: 3-6 sentences of concrete, actionable advice, " +
	"balancing praise with suggestions. Answer in markdown: a short heading (#), then bullet " +
	"points, with the important numbers in **bold**."

const chatPersona = advicePersona + " If an image (a chart or drawing) is attached, " +
	"interpret its trends and critical points first."

// Advice produces a short piece of advice for the summary.
func (a *Advisor) Advice(ctx context.Context, s *analytics.Summary) string {
	prompt := advicePersona + "\n\n" + formatSummary(s)
	if text, ok := a.generate(ctx, prompt, nil); ok {
		return text
	}
	return a.heuristic(s)
}

// ChatReply answers a user message in the context of the summary, optional
// chart rows, and an optional inline image.
func (a *Advisor) ChatReply(ctx context.Context, s *analytics.Summary, userMessage string, rows []ChartRow, image *Image) string {
	var b strings.Builder
	b.WriteString(chatPersona)
	b.WriteString("\n\nData summary: ")
	b.WriteString(formatSummary(s))
	if len(rows) > 0 {
		b.WriteString("\nChart data (date, income, expense):\n")
		b.WriteString(formatChartRows(rows))
	}

	var blob *genai.Blob
	if image != nil && image.Data != "" && image.MIMEType != "" {
		data, err := base64.StdEncoding.DecodeString(image.Data)
		if err != nil {
			a.log.Warn().Err(err).Msg("Ignoring undecodable chat image")
		} else {
			blob = &genai.Blob{MIMEType: image.MIMEType, Data: data}
			b.WriteString("\nAn image is attached; analyze it first.")
		}
	}

	b.WriteString("\n\nUser: ")
	b.WriteString(userMessage)

	if text, ok := a.generate(ctx, b.String(), blob); ok {
		return text
	}
	return a.heuristic(s)
}

// generate runs one GenerateContent call. ok=false means the caller should
// fall back to the heuristic; the reason has already been logged.
func (a *Advisor) generate(ctx context.Context, prompt string, blob *genai.Blob) (string, bool) {
	if a.apiKey == "" {
		return "", false
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      a.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("Advice model unavailable, using local heuristic")
		return "", false
	}

	parts := []*genai.Part{{Text: prompt}}
	if blob != nil {
		parts = append(parts, &genai.Part{InlineData: blob})
	}
	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		a.log.Warn().Err(err).Msg("Advice generation failed, using local heuristic")
		return "", false
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		a.log.Warn().Msg("Advice model returned empty text, using local heuristic")
		return "", false
	}
	return text, true
}

// heuristic is the deterministic fallback: a canned message keyed on the sign
// of the balance.
func (a *Advisor) heuristic(s *analytics.Summary) string {
	balance := s.TotalIncome - s.TotalExpense
	forecastExpense := s.Forecast.Expense

	if balance < 0 {
		return fmt.Sprintf("## Finance Advice\n"+
			"- **Balance:** %d (negative)\n"+
			"- **Forecast expense (month):** %d\n"+
			"- **Suggestion:** Trim entertainment and eating out a little this month, and renegotiate fixed costs.",
			int(balance), int(forecastExpense))
	}
	return fmt.Sprintf("## Finance Advice\n"+
		"- **Balance:** %d (positive)\n"+
		"- **Forecast expense (month):** %d\n"+
		"- **Suggestion:** Review recurring costs for discounts, and route the surplus into savings.",
		int(balance), int(forecastExpense))
}

// formatSummary renders the numbers the prompts and the heuristic share.
func formatSummary(s *analytics.Summary) string {
	balance := s.TotalIncome - s.TotalExpense
	return fmt.Sprintf(
		"Total income=%d, total expense=%d, balance=%d, forecast income next month=%d, forecast expense next month=%d.",
		int(s.TotalIncome), int(s.TotalExpense), int(balance), int(s.Forecast.Income), int(s.Forecast.Expense))
}

func formatChartRows(rows []ChartRow) string {
	if len(rows) > maxChartRows {
		rows = rows[:maxChartRows]
	}
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("- %s: income=%g, expense=%g", row.Date, row.Income, row.Expense))
	}
	return strings.Join(lines, "\n")
}
