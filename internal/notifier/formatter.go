package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"XAUCopilot/internal/model"
	"XAUCopilot/internal/strategy"
)

// FormatRecommendation formats a finished run for Telegram. Model output is
// escaped since messages use HTML parse mode.
func FormatRecommendation(rec *model.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🥇 <b>XAUCopilot</b> | %s\n\n", rec.Date)
	for i, t := range rec.Tasks {
		if i == len(rec.Tasks)-1 {
			break
		}
		fmt.Fprintf(&b, "🔎 <b>%s</b>\n%s\n\n", html.EscapeString(t.Role), html.EscapeString(t.Output))
	}
	fmt.Fprintf(&b, "📌 <b>FINAL RECOMMENDATION</b>\n%s\n", html.EscapeString(rec.Final))
	if !rec.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "\n<i>run %s, %s</i>", shortID(rec.RunID), rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second))
	}
	return b.String()
}

// FormatPriceReport formats the indicator table and its rule-based reading.
func FormatPriceReport(table *model.IndicatorTable, reading *strategy.Reading) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s 4H</b>\n", html.EscapeString(table.Symbol))
	fmt.Fprintf(&b, "<pre>%s</pre>\n", html.EscapeString(table.String()))
	if reading != nil {
		fmt.Fprintf(&b, "\nTrend: <b>%s</b> | Momentum: <b>%s</b>\n", reading.Trend, reading.Momentum)
		for _, c := range reading.Commentary {
			fmt.Fprintf(&b, "• %s\n", html.EscapeString(c))
		}
	}
	return b.String()
}

// FormatToolText wraps plain tool output, such as news records or an error
// message, for display.
func FormatToolText(title, text string) string {
	return fmt.Sprintf("<b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(text))
}

// FormatError formats a failed run.
func FormatError(date string, err error) string {
	return fmt.Sprintf("❌ <b>XAUCopilot</b> | %s\nRun failed: %s", date, html.EscapeString(err.Error()))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
