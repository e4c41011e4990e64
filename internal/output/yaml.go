package output

import (
	"gopkg.in/yaml.v3"

	"github.com/scryinline/scryinline/internal/telegram"
)

// YAMLFormatter renders the flattened rows as YAML.
type YAMLFormatter struct{}

type yamlDocument struct {
	Query   string `yaml:"query"`
	Count   int    `yaml:"count"`
	Results []Row  `yaml:"results"`
}

// FormatResults renders results as YAML.
func (f *YAMLFormatter) FormatResults(query string, results []telegram.InlineQueryResult) (string, error) {
	data, err := yaml.Marshal(yamlDocument{
		Query:   query,
		Count:   len(results),
		Results: Rows(results),
	})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
