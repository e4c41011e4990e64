package output

import (
	"fmt"
	"strings"

	"github.com/scryinline/scryinline/internal/telegram"
)

// MarkdownFormatter renders results as a markdown table.
type MarkdownFormatter struct{}

// FormatResults renders results as Markdown with card names linked.
func (f *MarkdownFormatter) FormatResults(query string, results []telegram.InlineQueryResult) (string, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Scryfall: %s\n\n", escapeMarkdownCell(query)))

	if len(results) == 0 {
		sb.WriteString("_No cards found._\n")
		return sb.String(), nil
	}

	sb.WriteString("| # | Name | Type Line |\n")
	sb.WriteString("|---|------|-----------|\n")

	for _, row := range Rows(results) {
		name := escapeMarkdownCell(row.Title)
		if row.URL != "" {
			name = fmt.Sprintf("[%s](%s)", name, row.URL)
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s |\n", row.Position, name, escapeMarkdownCell(row.Description)))
	}

	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
