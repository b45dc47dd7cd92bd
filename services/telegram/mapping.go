package telegram

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MarcGrol/shopperbot/services/chat"
)

// inbound is a chat event plus what the transport needs to acknowledge it.
type inbound struct {
	event      chat.Event
	callbackID string
}

// webAppUpdate picks the web app payload from a raw update; the bot library predates web apps.
type webAppUpdate struct {
	Message *struct {
		WebAppData *struct {
			Data string `json:"data"`
		} `json:"web_app_data"`
	} `json:"message"`
}

func (u webAppUpdate) data() (string, bool) {
	if u.Message == nil || u.Message.WebAppData == nil {
		return "", false
	}
	return u.Message.WebAppData.Data, true
}

func decodeUpdates(raw json.RawMessage) ([]inbound, int, error) {
	updates := []tgbotapi.Update{}
	err := json.Unmarshal(raw, &updates)
	if err != nil {
		return nil, 0, fmt.Errorf("error decoding updates: %w", err)
	}

	webApps := []webAppUpdate{}
	err = json.Unmarshal(raw, &webApps)
	if err != nil {
		return nil, 0, fmt.Errorf("error decoding web app data: %w", err)
	}

	lastID := 0
	result := []inbound{}
	for i, u := range updates {
		lastID = u.UpdateID
		in, ok := toInbound(u, webApps[i])
		if ok {
			result = append(result, in)
		}
	}
	return result, lastID, nil
}

// toInbound classifies an update. Updates without a human sender are skipped.
func toInbound(u tgbotapi.Update, webApp webAppUpdate) (inbound, bool) {
	if cq := u.CallbackQuery; cq != nil {
		if cq.From == nil {
			return inbound{}, false
		}
		ev := chat.Event{
			ID:     u.UpdateID,
			Kind:   chat.KindCallback,
			User:   toUser(cq.From),
			ChatID: cq.From.ID,
			Data:   cq.Data,
		}
		if cq.Message != nil && cq.Message.Chat != nil {
			ev.ChatID = cq.Message.Chat.ID
			ev.MessageID = cq.Message.MessageID
		}
		return inbound{event: ev, callbackID: cq.ID}, true
	}

	msg := u.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.From.IsBot {
		return inbound{}, false
	}

	ev := chat.Event{
		ID:        u.UpdateID,
		User:      toUser(msg.From),
		ChatID:    msg.Chat.ID,
		MessageID: msg.MessageID,
	}

	if data, found := webApp.data(); found {
		ev.Kind = chat.KindWebAppData
		ev.Data = data
		return inbound{event: ev}, true
	}

	switch {
	case msg.Document != nil:
		ev.Kind = chat.KindDocument
		ev.Document = &chat.Document{
			FileID:   msg.Document.FileID,
			FileName: msg.Document.FileName,
			Size:     msg.Document.FileSize,
		}
	case msg.IsCommand():
		ev.Kind = chat.KindCommand
		ev.Command = strings.ToLower(msg.Command())
		ev.Args = msg.CommandArguments()
	case strings.TrimSpace(msg.Text) != "":
		ev.Kind = chat.KindText
		ev.Text = strings.TrimSpace(msg.Text)
	default:
		return inbound{}, false
	}
	return inbound{event: ev}, true
}

func toUser(u *tgbotapi.User) chat.User {
	return chat.User{
		ID:       u.ID,
		Username: u.UserName,
		FullName: strings.TrimSpace(u.FirstName + " " + u.LastName),
	}
}
