package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/services/actions"
	"github.com/MarcGrol/shopperbot/services/backend"
	"github.com/MarcGrol/shopperbot/services/chat"
	"github.com/MarcGrol/shopperbot/services/session"
)

const (
	maxStockMatches = 5
	maxRecentOrders = 5
)

func (r *Router) adminConsole(c context.Context, ev chat.Event) chat.Reply {
	return chat.Markdown("👑 *SUPER ADMIN CONSOLE*\n\n"+
		"1. *Bulk Upload*: Send me a `.csv`, `.xlsx`, or `.json` file to update inventory.\n"+
		"2. *Manual*: Use the dashboard for fine-grained control.\n"+
		"3. *Samples*: Download templates from the dashboard.").
		WithInline(
			chat.Row(chat.WebAppButton("🖥️ Open Full Dashboard", r.links.Admin(""))),
			chat.Row(chat.WebAppButton("📦 Manual Inventory", r.links.Admin(chat.AdminTabInventory))),
			chat.Row(chat.WebAppButton("👥 Manage Staff Roles", r.links.Admin(chat.AdminTabStaff))),
			chat.Row(chat.CallbackButton("📊 Refresh Analytics", actions.RefreshAnalytics{}.Payload())),
		)
}

func (r *Router) analytics(c context.Context, ev chat.Event) chat.Reply {
	stats, err := r.api.GetAnalytics(c, ev.User.Username)
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Error fetching analytics: %s", err)
		return chat.ErrorReply(err, "fetching analytics").AsEdit()
	}

	return chat.Markdown("📊 *REAL-TIME ANALYTICS*\n\n"+
		"💰 Total Sales: %s\n"+
		"📦 Orders: %d\n"+
		"👥 Users: %d\n"+
		"🏪 Products in Stock: %d",
		chat.Naira(int(stats.TotalSales)), stats.TotalOrders, stats.TotalUsers, stats.TotalProducts).
		AsEdit().
		WithInline(chat.Row(chat.CallbackButton("⬅️ Back to Admin", actions.AdminMenu{}.Payload())))
}

// staffMenu offers the recent orders only to the super-admin: the backend serves the order list
// to that role alone.
func (r *Router) staffMenu(c context.Context, ev chat.Event) chat.Reply {
	rows := [][]chat.Button{
		chat.Row(chat.WebAppButton("📸 Exit Verification", r.links.Staff())),
		chat.Row(chat.CallbackButton("📦 Check Product Stock", actions.StaffStockLookup{}.Payload())),
	}
	if r.isSuperAdmin(ev.User) {
		rows = append(rows, chat.Row(chat.CallbackButton("🗂️ View Recent Orders", actions.StaffRecentOrders{}.Payload())))
	}
	return chat.Markdown("🛠️ *STAFF COMMAND CENTER*\nUse the buttons below for store operations.").
		WithInline(rows...)
}

func (r *Router) startStockLookup(c context.Context, ev chat.Event) chat.Reply {
	_, err := r.sessions.Update(c, ev.User.ID, func(sess *session.Session) error {
		sess.AwaitingStockQuery = true
		return nil
	})
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityError, "Error starting stock lookup: %s", err)
		return chat.ErrorReply(err, "starting the stock lookup")
	}
	return chat.Markdown("🔍 To check stock, please send the *Barcode* or *Name* of the item you're looking for.").AsEdit()
}

// stockLookup answers the single message that follows a stock lookup request. The request is
// consumed whatever the outcome.
func (r *Router) stockLookup(c context.Context, ev chat.Event) chat.Reply {
	_, err := r.sessions.Update(c, ev.User.ID, func(sess *session.Session) error {
		sess.AwaitingStockQuery = false
		return nil
	})
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityError, "Error ending stock lookup: %s", err)
	}

	query := strings.TrimSpace(ev.Text)
	product, err := r.api.GetProduct(c, query)
	if err == nil {
		return chat.Markdown("🔍 *STOCK FOUND (Barcode)*\n📦 *%s*\n💰 Price: %s\n📂 Category: %s",
			chat.Escape(product.Name), chat.Naira(product.Price), chat.Escape(product.Category))
	}
	if !myerrors.IsNotFound(err) {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Error looking up %q: %s", query, err)
		return chat.Text("⚠️ Error searching inventory.")
	}

	products, err := r.api.ListProducts(c)
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Error listing products: %s", err)
		return chat.Text("⚠️ Error searching inventory.")
	}

	matches := matchByName(products, query, maxStockMatches)
	if len(matches) == 0 {
		return chat.Text("❌ No items found matching that name or barcode.")
	}

	sb := strings.Builder{}
	sb.WriteString("🔍 *STOCK FOUND (Name Match)*\n\n")
	for _, p := range matches {
		fmt.Fprintf(&sb, "📦 *%s*\n💰 Price: %s\n🔗 Barcode: `%s`\n\n",
			chat.Escape(p.Name), chat.Naira(p.Price), p.Barcode)
	}
	return chat.Markdown("%s", strings.TrimRight(sb.String(), "\n"))
}

func matchByName(products []backend.Product, query string, limit int) []backend.Product {
	needle := strings.ToLower(query)
	matches := []backend.Product{}
	for _, p := range products {
		if len(matches) == limit {
			break
		}
		if needle != "" && strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	return matches
}

func (r *Router) recentOrders(c context.Context, ev chat.Event) chat.Reply {
	orders, err := r.api.ListOrders(c, ev.User.Username)
	if err != nil {
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Error fetching orders: %s", err)
		return chat.ErrorReply(err, "fetching orders").AsEdit()
	}
	if len(orders) == 0 {
		return chat.Markdown("📜 *RECENT ORDERS*\n\nNo orders yet.").AsEdit()
	}

	// newest first
	if len(orders) > maxRecentOrders {
		orders = orders[:maxRecentOrders]
	}

	sb := strings.Builder{}
	sb.WriteString("📜 *RECENT ORDERS*\n\n")
	for i, o := range orders {
		writeOrderLine(&sb, i+1, o)
	}
	return chat.Markdown("%s", strings.TrimRight(sb.String(), "\n")).AsEdit()
}

func writeOrderLine(sb *strings.Builder, position int, o backend.Order) {
	fmt.Fprintf(sb, "%d. `%s` %s (%s) %s\n",
		position, o.OrderID, chat.Naira(int(o.Total)), chat.Escape(o.PaymentMethod), o.CreatedAt.Format("02 Jan 2006"))
}
