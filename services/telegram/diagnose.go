package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Diagnosis struct {
	BotID            int64
	BotName          string
	Username         string
	WebhookURL       string
	PendingUpdates   int
	LastWebhookError string
	WebhookCleared   bool
}

// Diagnose reports what Telegram knows about the bot and optionally removes a webhook that
// would block polling.
func Diagnose(api *tgbotapi.BotAPI, clearWebhook bool) (Diagnosis, error) {
	me, err := api.GetMe()
	if err != nil {
		return Diagnosis{}, fmt.Errorf("error fetching bot identity: %w", err)
	}

	info, err := api.GetWebhookInfo()
	if err != nil {
		return Diagnosis{}, fmt.Errorf("error fetching webhook info: %w", err)
	}

	d := Diagnosis{
		BotID:            me.ID,
		BotName:          me.FirstName,
		Username:         me.UserName,
		WebhookURL:       info.URL,
		PendingUpdates:   info.PendingUpdateCount,
		LastWebhookError: info.LastErrorMessage,
	}

	if clearWebhook {
		_, err = api.Request(tgbotapi.DeleteWebhookConfig{})
		if err != nil {
			return d, fmt.Errorf("error clearing webhook: %w", err)
		}
		d.WebhookCleared = true
	}

	return d, nil
}
