package session

import (
	"time"

	"github.com/MarcGrol/shopperbot/services/backend"
)

type ConversationState string

const (
	StateNone               ConversationState = "NONE"
	StateAwaitingName       ConversationState = "AWAITING_NAME"
	StateAwaitingPhone      ConversationState = "AWAITING_PHONE"
	StateAwaitingEmail      ConversationState = "AWAITING_EMAIL"
	StateAwaitingLoginCode  ConversationState = "AWAITING_LOGIN_CODE"
	StateAwaitingStockQuery ConversationState = "AWAITING_STOCK_QUERY"
)

// Registration collects the answers of the sign-up conversation.
type Registration struct {
	Name  string
	Phone string
	Email string
}

type Session struct {
	UserID int64
	// State is the position in the registration/login conversation
	State ConversationState
	Draft Registration
	// Cart mirrors what was added through this chat; the backend cart is authoritative
	Cart               []backend.CartItem
	AwaitingStockQuery bool
	CreatedAt          time.Time
	LastModified       time.Time
}

func (s Session) Pending() bool {
	return s.State != "" && s.State != StateNone
}

// Conversation reports the effective state: a pending registration/login step wins over the
// stock lookup flag.
func (s Session) Conversation() ConversationState {
	if s.Pending() {
		return s.State
	}
	if s.AwaitingStockQuery {
		return StateAwaitingStockQuery
	}
	return StateNone
}

func (s *Session) ResetConversation() {
	s.State = StateNone
	s.Draft = Registration{}
	s.AwaitingStockQuery = false
}
