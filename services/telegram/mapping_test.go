package telegram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/shopperbot/services/chat"
)

const rawUpdates = `[
  {"update_id": 100, "message": {"message_id": 1, "date": 1677542339,
    "from": {"id": 42, "is_bot": false, "first_name": "Ada", "last_name": "Lovelace", "username": "ada"},
    "chat": {"id": 42, "type": "private"},
    "text": "/start now", "entities": [{"type": "bot_command", "offset": 0, "length": 6}]}},
  {"update_id": 101, "message": {"message_id": 2, "date": 1677542339,
    "from": {"id": 42, "is_bot": false, "first_name": "Ada"},
    "chat": {"id": 42, "type": "private"},
    "text": " 🛒 My Cart "}},
  {"update_id": 102, "callback_query": {"id": "cb-1", "data": "add_5449000000996", "chat_instance": "x",
    "from": {"id": 42, "is_bot": false, "first_name": "Ada"},
    "message": {"message_id": 7, "date": 1677542339, "chat": {"id": 4242, "type": "private"}}}},
  {"update_id": 103, "message": {"message_id": 3, "date": 1677542339,
    "from": {"id": 1, "is_bot": false, "first_name": "Origi", "username": "origichidiah"},
    "chat": {"id": 1, "type": "private"},
    "document": {"file_id": "file-1", "file_unique_id": "u1", "file_name": "products.csv", "file_size": 2048}}},
  {"update_id": 104, "message": {"message_id": 4, "date": 1677542339,
    "from": {"id": 42, "is_bot": false, "first_name": "Ada"},
    "chat": {"id": 42, "type": "private"},
    "web_app_data": {"data": "5449000000996", "button_text": "📸 Scan Item"}}},
  {"update_id": 105, "message": {"message_id": 5, "date": 1677542339,
    "from": {"id": 99, "is_bot": true, "first_name": "Other bot"},
    "chat": {"id": 42, "type": "private"},
    "text": "hello"}},
  {"update_id": 106, "message": {"message_id": 6, "date": 1677542339,
    "from": {"id": 42, "is_bot": false, "first_name": "Ada"},
    "chat": {"id": 42, "type": "private"}}}
]`

func TestDecodeUpdates(t *testing.T) {
	// when
	updates, lastID, err := decodeUpdates(json.RawMessage(rawUpdates))

	// then
	require.NoError(t, err)
	assert.Equal(t, 106, lastID)
	require.Len(t, updates, 5)

	t.Run("Command", func(t *testing.T) {
		ev := updates[0].event
		assert.Equal(t, chat.KindCommand, ev.Kind)
		assert.Equal(t, "start", ev.Command)
		assert.Equal(t, "now", ev.Args)
		assert.Equal(t, chat.User{ID: 42, Username: "ada", FullName: "Ada Lovelace"}, ev.User)
		assert.Equal(t, 100, ev.ID)
	})

	t.Run("Text", func(t *testing.T) {
		ev := updates[1].event
		assert.Equal(t, chat.KindText, ev.Kind)
		assert.Equal(t, "🛒 My Cart", ev.Text)
	})

	t.Run("Callback", func(t *testing.T) {
		in := updates[2]
		assert.Equal(t, "cb-1", in.callbackID)
		assert.Equal(t, chat.KindCallback, in.event.Kind)
		assert.Equal(t, "add_5449000000996", in.event.Data)
		assert.Equal(t, int64(4242), in.event.ChatID)
		assert.Equal(t, 7, in.event.MessageID)
	})

	t.Run("Document", func(t *testing.T) {
		ev := updates[3].event
		assert.Equal(t, chat.KindDocument, ev.Kind)
		assert.Equal(t, &chat.Document{FileID: "file-1", FileName: "products.csv", Size: 2048}, ev.Document)
		assert.Equal(t, "origichidiah", ev.User.Username)
	})

	t.Run("Web app data", func(t *testing.T) {
		ev := updates[4].event
		assert.Equal(t, chat.KindWebAppData, ev.Kind)
		assert.Equal(t, "5449000000996", ev.Data)
		assert.Empty(t, updates[4].callbackID)
	})
}

func TestDecodeInvalidUpdates(t *testing.T) {
	_, _, err := decodeUpdates(json.RawMessage(`{"not": "a list"}`))
	assert.Error(t, err)
}
