package output

import (
	"encoding/json"

	"github.com/scryinline/scryinline/internal/telegram"
)

// JSONFormatter renders the exact JSON array the webhook would return.
type JSONFormatter struct {
	Indent bool
}

// FormatResults renders results as JSON.
func (f *JSONFormatter) FormatResults(query string, results []telegram.InlineQueryResult) (string, error) {
	if results == nil {
		results = []telegram.InlineQueryResult{}
	}

	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(results, "", "  ")
	} else {
		data, err = json.Marshal(results)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
