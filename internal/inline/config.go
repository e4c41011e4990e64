package inline

import (
	"net/http"

	"github.com/fulmenhq/gofulmen/logging"

	"github.com/scryinline/scryinline/internal/config"
	"github.com/scryinline/scryinline/internal/scryfall"
	"github.com/scryinline/scryinline/internal/telegram"
)

// NewHandler wires a Handler from the loaded configuration. The returned
// Telegram client is nil when no bot token is configured.
func NewHandler(cfg *config.Config, logger *logging.Logger) (*Handler, *telegram.Client) {
	httpClient := &http.Client{Timeout: cfg.Scryfall.Timeout}

	// Handler treats zero as "use the default"; an explicit 0 disables caching.
	cacheTime := cfg.Telegram.CacheTime
	if cacheTime == 0 {
		cacheTime = -1
	}

	handler := &Handler{
		Searcher: &scryfall.Client{
			BaseURL:    cfg.Scryfall.APIURL,
			Order:      cfg.Scryfall.Order,
			UserAgent:  cfg.Scryfall.UserAgent,
			Timeout:    cfg.Scryfall.Timeout,
			HTTPClient: httpClient,
		},
		Logger:     logger,
		MaxResults: cfg.Inline.MaxResults,
		CacheTime:  cacheTime,
	}

	if cfg.Telegram.Token == "" {
		return handler, nil
	}

	bot := &telegram.Client{
		Token:      cfg.Telegram.Token,
		BaseURL:    cfg.Telegram.APIURL,
		HTTPClient: httpClient,
	}
	if cfg.Telegram.AnswerViaAPI {
		handler.Answerer = bot
	}

	return handler, bot
}
