package identity

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/services/backend"
	"github.com/MarcGrol/shopperbot/services/chat"
	"github.com/MarcGrol/shopperbot/services/session"
)

const (
	MenuScan    = "📸 Scan Item"
	MenuCart    = "🛒 My Cart"
	MenuHistory = "📜 History"
	MenuProfile = "👤 Profile"
)

var loginCodePattern = regexp.MustCompile(`^\d{6}$`)

// Service drives the registration and login conversation.
type Service struct {
	api      backend.API
	sessions *session.Store
	links    *chat.WebLinks
	logger   mylog.Logger
}

func NewService(api backend.API, sessions *session.Store, links *chat.WebLinks, logger mylog.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		links:    links,
		logger:   logger,
	}
}

// Start discards any pending conversation and decides, based on the backend, whether the user
// has to register, log in or can start shopping.
func (s *Service) Start(c context.Context, user chat.User) chat.Reply {
	_, err := s.sessions.Reset(c, user.ID)
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityError, "Error resetting session: %s", err)
		return chat.ErrorReply(err, "starting")
	}

	status, err := s.api.CheckUser(c, user.ID)
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityWarn, "Error checking user status: %s", err)
		return chat.ErrorReply(err, "checking your account")
	}

	switch {
	case !status.Registered:
		err = s.moveTo(c, user.ID, session.StateAwaitingName)
		if err != nil {
			return chat.ErrorReply(err, "starting registration")
		}
		return chat.Markdown("🔴🔵🟠 *Priceless Smart Shopper* 🔴🔵🟠\n\n" +
			"Welcome! To start shopping, please complete a quick registration.\n\n" +
			"What is your *Full Name*?")

	case !status.LoggedIn:
		err = s.moveTo(c, user.ID, session.StateAwaitingLoginCode)
		if err != nil {
			return chat.ErrorReply(err, "starting login")
		}
		return chat.Markdown("🔐 *Secure Login Required*\n" +
			"Please enter your *6-digit security code* to unlock your shopper account.")

	default:
		return chat.Markdown("Welcome back, *%s*! Ready to shop? 🛍️", chat.Escape(status.Name)).
			WithMenu(s.ShoppingMenu(user.ID)...)
	}
}

// HandleText feeds text to a pending registration or login step. It reports false when the text
// was not meant for this conversation.
func (s *Service) HandleText(c context.Context, user chat.User, text string) (chat.Reply, bool) {
	sess, err := s.sessions.Get(c, user.ID)
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityError, "Error fetching session: %s", err)
		return chat.ErrorReply(err, "loading your session"), true
	}

	switch sess.State {
	case session.StateAwaitingName:
		return s.collect(c, user, text, session.StateAwaitingPhone, func(d *session.Registration, v string) { d.Name = v },
			"Great! Now, what is your *Phone Number*? (with country code)", "Please tell me your *Full Name*."), true

	case session.StateAwaitingPhone:
		return s.collect(c, user, text, session.StateAwaitingEmail, func(d *session.Registration, v string) { d.Phone = v },
			"Finally, what is your *Email Address*?", "Please tell me your *Phone Number*."), true

	case session.StateAwaitingEmail:
		return s.register(c, user, text), true

	case session.StateAwaitingLoginCode:
		if !loginCodePattern.MatchString(text) {
			return chat.Reply{}, false
		}
		return s.login(c, user, text), true

	default:
		return chat.Reply{}, false
	}
}

func (s *Service) collect(c context.Context, user chat.User, text string, next session.ConversationState, set func(*session.Registration, string), prompt string, retry string) chat.Reply {
	value := strings.TrimSpace(text)
	if value == "" {
		return chat.Markdown("%s", retry)
	}

	_, err := s.sessions.Update(c, user.ID, func(sess *session.Session) error {
		set(&sess.Draft, value)
		sess.State = next
		return nil
	})
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityError, "Error storing registration step: %s", err)
		return chat.ErrorReply(err, "saving your answer")
	}

	return chat.Markdown("%s", prompt)
}

func (s *Service) register(c context.Context, user chat.User, text string) chat.Reply {
	email := strings.TrimSpace(text)
	if email == "" {
		return chat.Markdown("Please tell me your *Email Address*.")
	}

	var draft session.Registration
	_, err := s.sessions.Update(c, user.ID, func(sess *session.Session) error {
		draft = sess.Draft
		draft.Email = email
		// the conversation ends here, whatever the backend says
		sess.ResetConversation()
		return nil
	})
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityError, "Error ending registration: %s", err)
		return chat.ErrorReply(err, "registering")
	}

	result, err := s.api.Register(c, backend.Registration{
		UserID: user.ID,
		Name:   draft.Name,
		Phone:  draft.Phone,
		Email:  draft.Email,
	})
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityWarn, "Error registering: %s", err)
		if !myerrors.IsInvalidInput(err) {
			return chat.ErrorReply(err, "registering")
		}
		return chat.Text("❌ Registration failed: %s\n\nPlease send /start to try again.", backend.Message(err))
	}

	s.logger.Log(c, label(user.ID), mylog.SeverityInfo, "Registered %s", draft.Name)

	return chat.Markdown("🎉 *Registration Successful!* 🎉\n\n"+
		"Your unique 6-digit security code is:\n"+
		"👉 `%s` 👈\n\n"+
		"⚠️ *IMPORTANT:* Keep this code safe. You will need it to login every time you shop.\n\n"+
		"You are now logged in! Tap 'Scan Item' to start. 🛍️", result.LoginCode).
		WithMenu(s.ShoppingMenu(user.ID)...)
}

func (s *Service) login(c context.Context, user chat.User, code string) chat.Reply {
	result, err := s.api.Login(c, user.ID, code)
	if err != nil {
		var netErr *backend.NetworkError
		if errors.As(err, &netErr) {
			s.logger.Log(c, label(user.ID), mylog.SeverityWarn, "Login aborted: %s", err)
			_, resetErr := s.sessions.Reset(c, user.ID)
			if resetErr != nil {
				s.logger.Log(c, label(user.ID), mylog.SeverityError, "Error resetting session: %s", resetErr)
			}
			return chat.Text("⚠️ Service error during login. Please send /start to try again.")
		}
		s.logger.Log(c, label(user.ID), mylog.SeverityInfo, "Login rejected: %s", err)
		return chat.Markdown("❌ *Invalid Code.* Please try again or check your records.")
	}

	_, err = s.sessions.Reset(c, user.ID)
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityError, "Error ending login: %s", err)
	}

	return chat.Markdown("✅ *Login Verified!*\nWelcome back, %s.", chat.Escape(result.Name)).
		WithMenu(s.ShoppingMenu(user.ID)...)
}

// IsAuthenticated asks the backend on every call; the answer is never cached.
func (s *Service) IsAuthenticated(c context.Context, userID int64) (bool, error) {
	status, err := s.api.CheckUser(c, userID)
	if err != nil {
		return false, err
	}
	return status.Authenticated(), nil
}

// Logout ends the backend session and forgets everything kept locally.
func (s *Service) Logout(c context.Context, user chat.User) chat.Reply {
	err := s.api.Logout(c, user.ID)
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityWarn, "Error logging out: %s", err)
		return chat.ErrorReply(err, "logging out")
	}

	err = s.sessions.Forget(c, user.ID)
	if err != nil {
		s.logger.Log(c, label(user.ID), mylog.SeverityError, "Error clearing session: %s", err)
	}

	return chat.Reply{
		Text:       "👋 You are logged out. Send /start to log in again.",
		RemoveMenu: true,
	}
}

func (s *Service) ShoppingMenu(userID int64) [][]chat.Button {
	return [][]chat.Button{
		chat.Row(chat.WebAppButton(MenuScan, s.links.Scanner(userID))),
		chat.Row(chat.TextButton(MenuCart)),
		chat.Row(chat.TextButton(MenuHistory), chat.TextButton(MenuProfile)),
	}
}

func (s *Service) moveTo(c context.Context, userID int64, state session.ConversationState) error {
	_, err := s.sessions.Update(c, userID, func(sess *session.Session) error {
		sess.State = state
		return nil
	})
	return err
}

func label(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
