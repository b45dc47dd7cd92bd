package router

import (
	"context"

	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/services/chat"
)

type handlerFunc func(c context.Context, ev chat.Event) chat.Reply

const (
	superAdminDeniedText = "⛔ *Access Denied:* This command is reserved for the Super Admin."
	staffDeniedText      = "🚫 *Access Denied:* You are not registered as a staff member."
)

// asShopper runs h only for users the backend reports as registered and logged in.
func (r *Router) asShopper(c context.Context, ev chat.Event, h handlerFunc) []chat.Reply {
	ok, err := r.services.Identity.IsAuthenticated(c, ev.User.ID)
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Error checking authentication: %s", err)
		return replies(chat.ErrorReply(err, "checking your login"))
	}
	if !ok {
		return replies(chat.Text(chat.LoginFirstText))
	}
	return replies(h(c, ev))
}

func (r *Router) isSuperAdmin(user chat.User) bool {
	return user.Username != "" && user.Username == r.superAdmin
}

func (r *Router) asSuperAdmin(c context.Context, ev chat.Event, h handlerFunc) []chat.Reply {
	if !r.isSuperAdmin(ev.User) {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Denied super-admin %s to @%s", ev.Kind, ev.User.Username)
		return replies(chat.Markdown(superAdminDeniedText))
	}
	return replies(h(c, ev))
}

// asStaff runs h for the super-admin and for users on the backend staff list.
func (r *Router) asStaff(c context.Context, ev chat.Event, h handlerFunc) []chat.Reply {
	if r.isSuperAdmin(ev.User) {
		return replies(h(c, ev))
	}
	if ev.User.Username == "" {
		return replies(chat.Markdown(staffDeniedText))
	}

	staff, err := r.api.ListStaff(c, r.superAdmin)
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Error fetching staff list: %s", err)
		return replies(chat.Text("⚠️ Error connecting to staff database."))
	}
	for _, s := range staff {
		if s.Username == ev.User.Username {
			return replies(h(c, ev))
		}
	}

	r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Denied staff %s to @%s", ev.Kind, ev.User.Username)
	return replies(chat.Markdown(staffDeniedText))
}
