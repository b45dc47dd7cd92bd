package chat

import (
	"github.com/MarcGrol/shopperbot/lib/myerrors"
)

const (
	LoginFirstText   = "🔒 Please run /start to login first."
	UnavailableText  = "⚠️ Our service is temporarily unavailable. Please try again in a moment."
	AccessDeniedText = "⛔ *Access Denied:* You are not allowed to do this."
)

// ErrorReply converts a failure into the message shown to the user. doing describes the
// interrupted activity, e.g. "fetching cart".
func ErrorReply(err error, doing string) Reply {
	switch {
	case myerrors.IsUnavailable(err):
		return Text(UnavailableText)
	case myerrors.IsAuthRequired(err):
		return Text(LoginFirstText)
	case myerrors.IsForbidden(err):
		return Markdown(AccessDeniedText)
	case myerrors.IsInvalidInput(err):
		return Text("⚠️ That did not work: %s", err)
	default:
		return Text("⚠️ Error %s. Please try again.", doing)
	}
}
