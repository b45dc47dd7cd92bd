package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MarcGrol/shopperbot/services/chat"
)

// The keyboard types of the bot library cannot carry web app buttons, so markup is built here.

type webAppInfo struct {
	URL string `json:"url"`
}

type inlineButton struct {
	Text         string      `json:"text"`
	CallbackData string      `json:"callback_data,omitempty"`
	WebApp       *webAppInfo `json:"web_app,omitempty"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type menuButton struct {
	Text   string      `json:"text"`
	WebApp *webAppInfo `json:"web_app,omitempty"`
}

type menuKeyboard struct {
	Keyboard       [][]menuButton `json:"keyboard"`
	ResizeKeyboard bool           `json:"resize_keyboard"`
}

func parseMode(r chat.Reply) string {
	if r.Markdown {
		return tgbotapi.ModeMarkdown
	}
	return ""
}

func toInlineKeyboard(rows [][]chat.Button) *inlineKeyboard {
	if len(rows) == 0 {
		return nil
	}
	keyboard := &inlineKeyboard{InlineKeyboard: make([][]inlineButton, 0, len(rows))}
	for _, row := range rows {
		buttons := make([]inlineButton, 0, len(row))
		for _, b := range row {
			button := inlineButton{Text: b.Label, CallbackData: b.Data}
			if b.WebAppURL != "" {
				button.WebApp = &webAppInfo{URL: b.WebAppURL}
			}
			buttons = append(buttons, button)
		}
		keyboard.InlineKeyboard = append(keyboard.InlineKeyboard, buttons)
	}
	return keyboard
}

func toMenuKeyboard(rows [][]chat.Button) *menuKeyboard {
	keyboard := &menuKeyboard{Keyboard: make([][]menuButton, 0, len(rows)), ResizeKeyboard: true}
	for _, row := range rows {
		buttons := make([]menuButton, 0, len(row))
		for _, b := range row {
			button := menuButton{Text: b.Label}
			if b.WebAppURL != "" {
				button.WebApp = &webAppInfo{URL: b.WebAppURL}
			}
			buttons = append(buttons, button)
		}
		keyboard.Keyboard = append(keyboard.Keyboard, buttons)
	}
	return keyboard
}

// replyMarkup picks the single keyboard a message can carry: inline buttons win over a menu.
func replyMarkup(r chat.Reply) interface{} {
	switch {
	case len(r.Inline) > 0:
		return toInlineKeyboard(r.Inline)
	case len(r.Menu) > 0:
		return toMenuKeyboard(r.Menu)
	case r.RemoveMenu:
		return tgbotapi.NewRemoveKeyboard(false)
	default:
		return nil
	}
}

func newMessage(chatID int64, r chat.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, r.Text)
	msg.ParseMode = parseMode(r)
	msg.ReplyMarkup = replyMarkup(r)
	return msg
}

// editParams builds an editMessageText call. Edits can only carry inline keyboards.
func editParams(chatID int64, messageID int, r chat.Reply) (tgbotapi.Params, error) {
	params := tgbotapi.Params{}
	params.AddNonZero64("chat_id", chatID)
	params.AddNonZero("message_id", messageID)
	params["text"] = r.Text
	params.AddNonEmpty("parse_mode", parseMode(r))

	keyboard := toInlineKeyboard(r.Inline)
	if keyboard != nil {
		err := params.AddInterface("reply_markup", keyboard)
		if err != nil {
			return nil, err
		}
	}
	return params, nil
}

// canEdit reports whether r can replace the message that carried the pressed button.
func canEdit(ev chat.Event, r chat.Reply) bool {
	return r.Edit && ev.MessageID != 0 && len(r.Menu) == 0 && !r.RemoveMenu
}
