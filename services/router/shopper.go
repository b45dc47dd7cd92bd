package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/services/chat"
)

const maxHistoryOrders = 10

func (r *Router) profile(c context.Context, ev chat.Event) chat.Reply {
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "👤 *PROFILE*\n🆔 ID: `%d`\n👤 Name: %s\n", ev.User.ID, chat.Escape(ev.User.FullName))
	if !r.isSuperAdmin(ev.User) {
		return chat.Markdown("%s", sb.String())
	}

	sb.WriteString("👑 SUPER ADMIN")
	return chat.Markdown("%s", sb.String()).
		WithInline(chat.Row(chat.WebAppButton("🛠️ Admin Console", r.links.Admin(""))))
}

func (r *Router) history(c context.Context, ev chat.Event) chat.Reply {
	orders, err := r.api.ListUserOrders(c, ev.User.ID)
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Error fetching order history: %s", err)
		return chat.ErrorReply(err, "fetching your order history")
	}
	if len(orders) == 0 {
		return chat.Markdown("📜 *PURCHASE HISTORY*\n\nNo orders yet. Scan an item to get started!")
	}

	sb := strings.Builder{}
	sb.WriteString("📜 *PURCHASE HISTORY*\n\n")
	// the backend lists a user's orders oldest first
	for i := 0; i < len(orders) && i < maxHistoryOrders; i++ {
		writeOrderLine(&sb, i+1, orders[len(orders)-1-i])
	}

	latest := orders[len(orders)-1]
	return chat.Markdown("%s", strings.TrimRight(sb.String(), "\n")).
		WithInline(chat.Row(chat.WebAppButton("🧾 View Latest Receipt", r.links.Receipt(latest.OrderID))))
}
