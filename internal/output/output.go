// Package output renders inline query results for the terminal.
package output

import (
	"fmt"
	"strings"

	"github.com/scryinline/scryinline/internal/telegram"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formatter renders the results answered for one query.
type Formatter interface {
	FormatResults(query string, results []telegram.InlineQueryResult) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatYAML), "yml":
		return FormatYAML, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

// Row is the flattened, format-independent view of one result.
type Row struct {
	Position    int    `json:"position" yaml:"position"`
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// Rows flattens results in order. Positions start at 1.
func Rows(results []telegram.InlineQueryResult) []Row {
	rows := make([]Row, 0, len(results))
	for i, result := range results {
		row := Row{Position: i + 1, ID: result.ResultID(), Type: result.ResultType()}
		switch r := result.(type) {
		case telegram.InlineQueryResultPhoto:
			row.Title = r.Title
			row.Description = r.Description
			row.URL = buttonURL(r.ReplyMarkup)
			row.Image = r.PhotoURL
			row.Thumbnail = r.ThumbnailURL
		case telegram.InlineQueryResultArticle:
			row.Title = r.Title
			row.Description = r.Description
			row.URL = r.URL
			if row.URL == "" {
				row.URL = buttonURL(r.ReplyMarkup)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func buttonURL(markup *telegram.InlineKeyboardMarkup) string {
	if markup == nil {
		return ""
	}
	for _, line := range markup.InlineKeyboard {
		for _, button := range line {
			if button.URL != "" {
				return button.URL
			}
		}
	}
	return ""
}
