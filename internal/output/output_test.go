package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/scryinline/scryinline/internal/telegram"
)

func sampleResults() []telegram.InlineQueryResult {
	return []telegram.InlineQueryResult{
		telegram.InlineQueryResultPhoto{
			Type:         telegram.ResultTypePhoto,
			ID:           "bolt",
			PhotoURL:     "https://img/bolt-large.jpg",
			ThumbnailURL: "https://img/bolt-small.jpg",
			Title:        "Lightning Bolt",
			Description:  "Instant",
			ReplyMarkup: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
				{{Text: "Lightning Bolt", URL: "https://scryfall.com/card/clu/141/lightning-bolt"}},
			}},
		},
		telegram.InlineQueryResultArticle{
			Type:        telegram.ResultTypeArticle,
			ID:          "fire-ice",
			Title:       "Fire // Ice",
			Description: "Instant // Instant",
			URL:         "https://scryfall.com/card/mh2/290/fire-ice",
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("yml")
	require.NoError(t, err)
	require.Equal(t, FormatYAML, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestRows(t *testing.T) {
	rows := Rows(sampleResults())
	require.Len(t, rows, 2)

	require.Equal(t, 1, rows[0].Position)
	require.Equal(t, "photo", rows[0].Type)
	require.Equal(t, "https://scryfall.com/card/clu/141/lightning-bolt", rows[0].URL)
	require.Equal(t, "https://img/bolt-small.jpg", rows[0].Thumbnail)

	require.Equal(t, 2, rows[1].Position)
	require.Equal(t, "article", rows[1].Type)
	require.Equal(t, "https://scryfall.com/card/mh2/290/fire-ice", rows[1].URL)
}

func TestFormatters(t *testing.T) {
	results := sampleResults()

	table, err := NewFormatter(FormatTable).FormatResults("bolt", results)
	require.NoError(t, err)
	require.Contains(t, table, "Lightning Bolt")
	require.Contains(t, table, "2 result(s)")
	require.NotContains(t, table, "RESULT(S)")

	markdown, err := NewFormatter(FormatMarkdown).FormatResults("bolt", results)
	require.NoError(t, err)
	require.Contains(t, markdown, "[Lightning Bolt](https://scryfall.com/card/clu/141/lightning-bolt)")
	require.Contains(t, markdown, `Fire // Ice`)
}

func TestJSONMatchesWebhookShape(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatResults("bolt", sampleResults())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, "https://img/bolt-small.jpg", decoded[0]["thumbnail_url"])

	empty, err := NewFormatter(FormatJSON).FormatResults("zzz", nil)
	require.NoError(t, err)
	require.Equal(t, "[]", empty)
}

func TestYAMLFormatter(t *testing.T) {
	rendered, err := NewFormatter(FormatYAML).FormatResults("bolt", sampleResults())
	require.NoError(t, err)

	var doc struct {
		Query   string `yaml:"query"`
		Count   int    `yaml:"count"`
		Results []Row  `yaml:"results"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(rendered), &doc))
	require.Equal(t, "bolt", doc.Query)
	require.Equal(t, 2, doc.Count)
	require.Equal(t, "Lightning Bolt", doc.Results[0].Title)
}

func TestMarkdownEscaping(t *testing.T) {
	require.Equal(t, `a\|b`, escapeMarkdownCell("a|b"))

	rendered, err := NewFormatter(FormatMarkdown).FormatResults("x", nil)
	require.NoError(t, err)
	require.Contains(t, rendered, "No cards found")
}
