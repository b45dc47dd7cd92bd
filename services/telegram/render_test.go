package telegram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/shopperbot/services/chat"
)

func markupJSON(t *testing.T, r chat.Reply) string {
	data, err := json.Marshal(replyMarkup(r))
	require.NoError(t, err)
	return string(data)
}

func TestReplyMarkup(t *testing.T) {
	t.Run("Inline with web app", func(t *testing.T) {
		r := chat.Text("hi").WithInline(
			chat.Row(chat.CallbackButton("🛒 View Cart", "view_cart")),
			chat.Row(chat.WebAppButton("🧾 Receipt", "https://shop.example.com/history?orderId=ORD-1")),
		)
		assert.JSONEq(t, `{"inline_keyboard":[
			[{"text":"🛒 View Cart","callback_data":"view_cart"}],
			[{"text":"🧾 Receipt","web_app":{"url":"https://shop.example.com/history?orderId=ORD-1"}}]]}`,
			markupJSON(t, r))
	})

	t.Run("Menu", func(t *testing.T) {
		r := chat.Text("hi").WithMenu(
			chat.Row(chat.WebAppButton("📸 Scan Item", "https://shop.example.com/scanner.html?userId=42")),
			chat.Row(chat.TextButton("🛒 My Cart")),
		)
		assert.JSONEq(t, `{"resize_keyboard":true,"keyboard":[
			[{"text":"📸 Scan Item","web_app":{"url":"https://shop.example.com/scanner.html?userId=42"}}],
			[{"text":"🛒 My Cart"}]]}`,
			markupJSON(t, r))
	})

	t.Run("Remove menu", func(t *testing.T) {
		r := chat.Reply{Text: "bye", RemoveMenu: true}
		assert.Contains(t, markupJSON(t, r), `"remove_keyboard":true`)
	})

	t.Run("Plain", func(t *testing.T) {
		assert.Nil(t, replyMarkup(chat.Text("hi")))
	})
}

func TestEditParams(t *testing.T) {
	// given
	r := chat.Markdown("✅ *Added*").AsEdit().WithInline(chat.Row(chat.CallbackButton("🛒 VIEW CART", "view_cart")))

	// when
	params, err := editParams(4242, 7, r)

	// then
	require.NoError(t, err)
	assert.Equal(t, "4242", params["chat_id"])
	assert.Equal(t, "7", params["message_id"])
	assert.Equal(t, "✅ *Added*", params["text"])
	assert.Equal(t, "Markdown", params["parse_mode"])
	assert.JSONEq(t, `{"inline_keyboard":[[{"text":"🛒 VIEW CART","callback_data":"view_cart"}]]}`, params["reply_markup"])
}

func TestCanEdit(t *testing.T) {
	callbackEvent := chat.Event{Kind: chat.KindCallback, MessageID: 7}

	assert.True(t, canEdit(callbackEvent, chat.Text("x").AsEdit()))
	assert.False(t, canEdit(callbackEvent, chat.Text("x")))
	assert.False(t, canEdit(chat.Event{Kind: chat.KindCallback}, chat.Text("x").AsEdit()))
	assert.False(t, canEdit(callbackEvent, chat.Text("x").AsEdit().WithMenu(chat.Row(chat.TextButton("m")))))
}
