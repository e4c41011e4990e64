package inline

import (
	"github.com/google/uuid"

	"github.com/scryinline/scryinline/internal/scryfall"
	"github.com/scryinline/scryinline/internal/telegram"
)

// Dimensions of Scryfall's "large" card render.
const (
	photoWidth  = 672
	photoHeight = 936
)

const maxResultIDBytes = 64

// ResultFromCard maps one Scryfall card to one inline result. Cards with an
// image become photos; the rest become articles linking to the card page.
// The card's Scryfall URI is carried unmodified in the result's URL button.
func ResultFromCard(card scryfall.Card) telegram.InlineQueryResult {
	id := resultID(card)
	markup := cardButton(card.Name, card.ScryfallURI)

	images, ok := card.Images()
	photo := photoURL(images)
	if !ok || photo == "" {
		// Telegram rejects the whole answer when message_text is empty.
		text := card.ScryfallURI
		if text == "" {
			text = card.Name
		}
		return telegram.InlineQueryResultArticle{
			Type:        telegram.ResultTypeArticle,
			ID:          id,
			Title:       card.Name,
			Description: card.TypeLine,
			URL:         card.ScryfallURI,
			InputMessageContent: telegram.InputTextMessageContent{
				MessageText: text,
			},
			ReplyMarkup: markup,
		}
	}

	thumb := images.Small
	if thumb == "" {
		thumb = photo
	}

	return telegram.InlineQueryResultPhoto{
		Type:         telegram.ResultTypePhoto,
		ID:           id,
		PhotoURL:     photo,
		ThumbnailURL: thumb,
		PhotoWidth:   photoWidth,
		PhotoHeight:  photoHeight,
		Title:        card.Name,
		Description:  card.TypeLine,
		ReplyMarkup:  markup,
	}
}

// ResultsFromCards maps cards in order and stops at limit.
func ResultsFromCards(cards []scryfall.Card, limit int) []telegram.InlineQueryResult {
	if limit <= 0 || limit > telegram.MaxInlineResults {
		limit = telegram.MaxInlineResults
	}
	if len(cards) > limit {
		cards = cards[:limit]
	}

	results := make([]telegram.InlineQueryResult, 0, len(cards))
	for _, card := range cards {
		results = append(results, ResultFromCard(card))
	}
	return results
}

func photoURL(images scryfall.ImageURIs) string {
	switch {
	case images.Large != "":
		return images.Large
	case images.PNG != "":
		return images.PNG
	case images.Normal != "":
		return images.Normal
	default:
		return images.Small
	}
}

func resultID(card scryfall.Card) string {
	if card.ID != "" && len(card.ID) <= maxResultIDBytes {
		return card.ID
	}
	return uuid.New().String()
}

func cardButton(name, uri string) *telegram.InlineKeyboardMarkup {
	if uri == "" {
		return nil
	}
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: name, URL: uri}},
		},
	}
}
