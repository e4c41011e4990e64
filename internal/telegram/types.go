package telegram

import "encoding/json"

// Result types understood by answerInlineQuery.
const (
	ResultTypePhoto   = "photo"
	ResultTypeArticle = "article"
)

// MaxInlineResults is the most results Telegram accepts per answer.
const MaxInlineResults = 50

// User is the sender of an update. Only the fields used for logging are decoded.
type User struct {
	ID           int64  `json:"id"`
	IsBot        bool   `json:"is_bot"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// InlineQuery is what Telegram forwards when a user types "@bot text".
type InlineQuery struct {
	ID       string `json:"id"`
	From     User   `json:"from"`
	Query    string `json:"query"`
	Offset   string `json:"offset"`
	ChatType string `json:"chat_type,omitempty"`
}

// Update is the webhook payload. Message updates are carried opaquely.
type Update struct {
	UpdateID    int64           `json:"update_id"`
	InlineQuery *InlineQuery    `json:"inline_query,omitempty"`
	Message     json.RawMessage `json:"message,omitempty"`
}

// InlineKeyboardButton is a button that opens a URL.
type InlineKeyboardButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// InlineKeyboardMarkup is attached below the message a user sends from a result.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InputTextMessageContent is the message sent when an article result is chosen.
type InputTextMessageContent struct {
	MessageText string `json:"message_text"`
}

// InlineQueryResult is one entry of an inline answer.
type InlineQueryResult interface {
	ResultID() string
	ResultType() string
}

// InlineQueryResultPhoto shows a card image.
type InlineQueryResultPhoto struct {
	Type         string                `json:"type"`
	ID           string                `json:"id"`
	PhotoURL     string                `json:"photo_url"`
	ThumbnailURL string                `json:"thumbnail_url"`
	PhotoWidth   int                   `json:"photo_width,omitempty"`
	PhotoHeight  int                   `json:"photo_height,omitempty"`
	Title        string                `json:"title,omitempty"`
	Description  string                `json:"description,omitempty"`
	Caption      string                `json:"caption,omitempty"`
	ReplyMarkup  *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

func (r InlineQueryResultPhoto) ResultID() string   { return r.ID }
func (r InlineQueryResultPhoto) ResultType() string { return ResultTypePhoto }

// InlineQueryResultArticle is used for cards Scryfall has no image for.
type InlineQueryResultArticle struct {
	Type                string                  `json:"type"`
	ID                  string                  `json:"id"`
	Title               string                  `json:"title"`
	Description         string                  `json:"description,omitempty"`
	URL                 string                  `json:"url,omitempty"`
	InputMessageContent InputTextMessageContent `json:"input_message_content"`
	ReplyMarkup         *InlineKeyboardMarkup   `json:"reply_markup,omitempty"`
}

func (r InlineQueryResultArticle) ResultID() string   { return r.ID }
func (r InlineQueryResultArticle) ResultType() string { return ResultTypeArticle }

// AnswerInlineQueryRequest is the answerInlineQuery payload.
type AnswerInlineQueryRequest struct {
	InlineQueryID string              `json:"inline_query_id"`
	Results       []InlineQueryResult `json:"results"`
	CacheTime     int                 `json:"cache_time"`
	IsPersonal    bool                `json:"is_personal,omitempty"`
	NextOffset    string              `json:"next_offset,omitempty"`
}
