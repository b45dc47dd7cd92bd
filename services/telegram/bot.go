package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MarcGrol/shopperbot/lib/mycontext"
	"github.com/MarcGrol/shopperbot/lib/myhttpclient"
	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/lib/myuuid"
	"github.com/MarcGrol/shopperbot/services/chat"
)

const (
	pollTimeoutSeconds = 30
	pollRetryDelay     = 3 * time.Second
	downloadTimeout    = 30 * time.Second
)

type Handler interface {
	Handle(c context.Context, ev chat.Event) []chat.Reply
}

// Bot is the Telegram transport: it long-polls for updates, hands them to the handler one user at a
// time and delivers the replies.
type Bot struct {
	api          *tgbotapi.BotAPI
	fileEndpoint string
	downloader   myhttpclient.HTTPSender
	dispatcher   *Dispatcher
	uuider       myuuid.UUIDer
	logger       mylog.Logger
	handler      Handler
}

// Connect verifies the token with Telegram. This is the only call that makes startup fail.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("error connecting to telegram: %w", err)
	}
	return api, nil
}

func NewBot(api *tgbotapi.BotAPI, dispatcher *Dispatcher, uuider myuuid.UUIDer, logger mylog.Logger) *Bot {
	return &Bot{
		api:          api,
		fileEndpoint: tgbotapi.FileEndpoint,
		downloader:   myhttpclient.New(downloadTimeout),
		dispatcher:   dispatcher,
		uuider:       uuider,
		logger:       logger,
	}
}

// SetHandler completes the wiring; the bot doubles as file fetcher for the services behind the handler.
func (b *Bot) SetHandler(handler Handler) {
	b.handler = handler
}

// Fetch downloads a file that a user sent to the bot.
func (b *Bot) Fetch(c context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("error resolving file %s: %w", fileID, err)
	}

	status, body, err := b.downloader.Send(c, http.MethodGet, fmt.Sprintf(b.fileEndpoint, b.api.Token, file.FilePath), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("error downloading file %s: %w", fileID, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("error downloading file %s: status %d", fileID, status)
	}
	return body, nil
}

// Run polls until c is cancelled and then waits for the queued events to be handled.
func (b *Bot) Run(c context.Context) error {
	if b.handler == nil {
		return errors.New("telegram bot has no handler")
	}
	defer b.dispatcher.Close()

	_, err := b.api.Request(tgbotapi.DeleteWebhookConfig{})
	if err != nil {
		// polling fails later on if a webhook is still active
		b.logger.Log(c, "", mylog.SeverityWarn, "Error clearing webhook: %s", err)
	}

	b.logger.Log(c, "", mylog.SeverityInfo, "Bot @%s is polling for updates", b.api.Self.UserName)

	offset := 0
	for {
		select {
		case <-c.Done():
			b.logger.Log(c, "", mylog.SeverityInfo, "Bot stops polling")
			return nil
		default:
		}

		updates, lastID, err := b.poll(offset)
		if err != nil {
			b.logger.Log(c, "", mylog.SeverityWarn, "Error polling for updates: %s", err)
			select {
			case <-c.Done():
			case <-time.After(pollRetryDelay):
			}
			continue
		}
		if lastID > 0 {
			offset = lastID + 1
		}

		for _, in := range updates {
			b.dispatcher.Dispatch(in.event.User.ID, func() {
				b.process(context.WithoutCancel(c), in)
			})
		}
	}
}

func (b *Bot) poll(offset int) ([]inbound, int, error) {
	resp, err := b.api.Request(tgbotapi.UpdateConfig{
		Offset:  offset,
		Timeout: pollTimeoutSeconds,
	})
	if err != nil {
		return nil, 0, err
	}
	return decodeUpdates(resp.Result)
}

func (b *Bot) process(parent context.Context, in inbound) {
	c := mycontext.ContextFromEvent(parent, in.event.ID, b.uuider.Create())

	if in.callbackID != "" {
		_, err := b.api.Request(tgbotapi.NewCallback(in.callbackID, ""))
		if err != nil {
			b.logger.Log(c, label(in.event), mylog.SeverityWarn, "Error answering callback: %s", err)
		}
	}

	for _, reply := range b.handler.Handle(c, in.event) {
		err := b.deliver(in.event, reply)
		if err != nil {
			b.logger.Log(c, label(in.event), mylog.SeverityError, "Error delivering reply: %s", err)
		}
	}
}

func (b *Bot) deliver(ev chat.Event, r chat.Reply) error {
	if canEdit(ev, r) {
		err := b.edit(ev, r)
		if err == nil {
			return nil
		}
		var tgErr *tgbotapi.Error
		if !errors.As(err, &tgErr) {
			return err
		}
		if strings.Contains(tgErr.Message, "message is not modified") {
			return nil
		}
		// too old to edit; a new message still reaches the user
	}

	_, err := b.api.Send(newMessage(ev.ChatID, r))
	if err != nil && r.Markdown {
		var tgErr *tgbotapi.Error
		if errors.As(err, &tgErr) && tgErr.Code == http.StatusBadRequest {
			// unparsable markdown, e.g. from user supplied names
			r.Markdown = false
			_, err = b.api.Send(newMessage(ev.ChatID, r))
		}
	}
	return err
}

func (b *Bot) edit(ev chat.Event, r chat.Reply) error {
	params, err := editParams(ev.ChatID, ev.MessageID, r)
	if err != nil {
		return fmt.Errorf("error building edit: %w", err)
	}
	_, err = b.api.MakeRequest("editMessageText", params)
	return err
}

func label(ev chat.Event) string {
	return strconv.FormatInt(ev.User.ID, 10)
}
