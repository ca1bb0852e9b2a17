package cli

import (
	"fmt"
	"strings"

	"github.com/Veraticus/kharcha/internal/engine"
	"github.com/Veraticus/kharcha/internal/storage"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// FormatAmount renders a rupee amount, dropping a zero fraction.
func FormatAmount(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return RupeeIcon + amount.StringFixed(0)
	}
	return RupeeIcon + amount.StringFixed(2)
}

// FormatConfidence renders a confidence as a percentage.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}

// RenderResult formats one extraction outcome for the terminal.
func RenderResult(result engine.Result) string {
	switch result.Status {
	case engine.StatusAccepted:
		return RenderBox(FormatSuccess("Expense recorded"), renderCandidate(result))
	case engine.StatusRetrySuggested:
		body := renderCandidate(result) + "\n\n" + FormatWarning(result.Error)
		return RenderBox(WarningStyle.Render("Please say that again"), body)
	default:
		body := FormatError(result.Error)
		if result.Kind != "" {
			body += "\n" + SubtleStyle.Render(string(result.Kind))
		}
		return RenderBox(ErrorStyle.Render("No expense found"), body)
	}
}

func renderCandidate(result engine.Result) string {
	c := result.Data
	if c == nil {
		return ""
	}

	rows := []struct{ label, value string }{
		{"Amount", BoldStyle.Render(FormatAmount(c.Amount))},
		{"Category", string(c.Category)},
	}
	if m := c.MerchantName(); m != "" {
		rows = append(rows, struct{ label, value string }{"Merchant", m})
	}
	rows = append(rows,
		struct{ label, value string }{"Method", string(c.ExtractionMethod)},
		struct{ label, value string }{"Confidence", FormatConfidence(c.Confidence)},
	)

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(row.label), row.value)
	}
	return strings.Join(lines, "\n")
}

// RenderHistory formats audit log records as a table, newest first.
func RenderHistory(records []storage.ExtractionRecord) string {
	if len(records) == 0 {
		return FormatInfo("No extractions recorded yet")
	}

	headers := []string{"When", "Status", "Amount", "Category", "Method", "Text"}
	rows := make([][]string, len(records))
	for i, r := range records {
		amount := "-"
		if r.Amount.Valid {
			amount = FormatAmount(r.Amount.Decimal)
		}
		category := "-"
		if r.Category != "" {
			category = string(r.Category)
		}
		method := "-"
		if r.Method != "" {
			method = string(r.Method)
		}
		rows[i] = []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(r.Status),
			amount,
			category,
			method,
			truncate(r.Text, 40),
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(headers, widths, TableHeaderStyle))
	b.WriteString("\n")
	for i, row := range rows {
		b.WriteString(renderRow(row, widths, statusStyle(records[i].Status)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(cells []string, widths []int, style lipgloss.Style) string {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
	}
	return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func statusStyle(status engine.Status) lipgloss.Style {
	switch status {
	case engine.StatusAccepted:
		return lipgloss.NewStyle()
	case engine.StatusRetrySuggested:
		return WarningStyle
	default:
		return SubtleStyle
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
