package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/scryinline/scryinline/internal/telegram"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatResults renders the results as a table with a count footer.
func (f *TableFormatter) FormatResults(query string, results []telegram.InlineQueryResult) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Footer = text.FormatDefault
	t.SetTitle(fmt.Sprintf("Scryfall: %s", query))
	t.AppendHeader(table.Row{"#", "Type", "Name", "Type Line", "Link"})

	for _, row := range Rows(results) {
		t.AppendRow(table.Row{row.Position, row.Type, row.Title, row.Description, row.URL})
	}

	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d result(s)", len(results)), "", ""})

	return t.Render(), nil
}
