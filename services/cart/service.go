package cart

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

// Service renders products and carts. The backend cart is authoritative; the session cart only
// remembers what was added through this chat.
type Service struct {
	api      backend.API
	sessions *session.Store
	logger   mylog.Logger
}

func NewService(api backend.API, sessions *session.Store, logger mylog.Logger) *Service {
	return &Service{
		api:      api,
		sessions: sessions,
		logger:   logger,
	}
}

// ShowProduct answers a scanned barcode with a product card and related suggestions.
func (s *Service) ShowProduct(c context.Context, userID int64, barcode string) chat.Reply {
	barcode = strings.TrimSpace(barcode)
	if strings.HasPrefix(barcode, "http") {
		return chat.Text("🌐 Website link detected. Please scan a product barcode! 🛍️")
	}

	product, err := s.api.GetProduct(c, barcode)
	if err != nil {
		if myerrors.IsNotFound(err) {
			return chat.Markdown("🤔 *Item not in database.* (`%s`)", barcode)
		}
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error fetching product %s: %s", barcode, err)
		return chat.ErrorReply(err, "fetching product")
	}

	catalog, err := s.api.ListProducts(c)
	if err != nil {
		// suggestions are optional
		s.logger.Log(c, label(userID), mylog.SeverityInfo, "No suggestions for %s: %s", barcode, err)
		catalog = nil
	}

	sess, err := s.sessions.Get(c, userID)
	if err != nil {
		return chat.ErrorReply(err, "loading your session")
	}

	msg := strings.Builder{}
	fmt.Fprintf(&msg, "📦 *%s*\n💰 *Price:* %s\n", chat.Escape(product.Name), chat.Naira(product.Price))
	if product.Description != "" {
		fmt.Fprintf(&msg, "_%s_\n", chat.Escape(product.Description))
	}
	recommendations := Recommend(product, catalog)
	if len(recommendations) > 0 {
		msg.WriteString("\n✨ *You may also like:*\n")
		for _, p := range recommendations {
			fmt.Fprintf(&msg, "• %s - %s\n", chat.Escape(p.Name), chat.Naira(p.Price))
		}
	}

	rows := [][]chat.Button{}
	if count := Count(sess.Cart, product.Barcode); count > 0 {
		rows = append(rows,
			chat.Row(chat.CallbackButton(fmt.Sprintf("❌ Remove %s (%d in cart)", product.Name, count), actions.RemoveItem{Barcode: product.Barcode}.Payload())),
			chat.Row(chat.CallbackButton("➕ Add Another", actions.AddItem{Barcode: product.Barcode}.Payload())))
	} else {
		rows = append(rows, chat.Row(chat.CallbackButton("✅ Add to Cart", actions.AddItem{Barcode: product.Barcode}.Payload())))
	}
	for _, p := range recommendations {
		rows = append(rows, chat.Row(chat.CallbackButton("➕ "+p.Name, actions.AddItem{Barcode: p.Barcode}.Payload())))
	}
	rows = append(rows, chat.Row(chat.CallbackButton("🛒 View Cart", actions.ViewCart{}.Payload())))

	return chat.Markdown("%s", msg.String()).WithInline(rows...)
}

// AddItem adds one unit to the backend cart and records it in the session.
func (s *Service) AddItem(c context.Context, userID int64, barcode string) chat.Reply {
	product, err := s.api.GetProduct(c, barcode)
	if err != nil {
		if myerrors.IsNotFound(err) {
			return chat.Markdown("🤔 *Item not in database.* (`%s`)", barcode).AsEdit()
		}
		return chat.ErrorReply(err, "adding to cart")
	}

	err = s.api.AddToCart(c, userID, product.Barcode, 1)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error adding %s to cart: %s", product.Barcode, err)
		return chat.ErrorReply(err, "adding to cart")
	}

	_, err = s.sessions.Update(c, userID, func(sess *session.Session) error {
		sess.Cart = Add(sess.Cart, product)
		return nil
	})
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityError, "Error recording %s in session: %s", product.Barcode, err)
	}

	return chat.Markdown("✅ Added *%s* to your cart.", chat.Escape(product.Name)).
		AsEdit().
		WithInline(chat.Row(chat.CallbackButton("🛒 VIEW CART", actions.ViewCart{}.Payload())))
}

// RemoveItem takes one unit of barcode out of the backend cart and drops the matching entry from
// the session cart. The backend only adds quantities, so a line with more than one unit is
// decremented and the last unit is removed by rebuilding the cart without it.
func (s *Service) RemoveItem(c context.Context, userID int64, barcode string) chat.Reply {
	items, err := s.api.GetCart(c, userID)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error fetching cart: %s", err)
		return chat.ErrorReply(err, "removing from cart").AsEdit()
	}

	line, found := Find(items, barcode)
	if found {
		if line.Units() > 1 {
			err = s.api.AddToCart(c, userID, barcode, -1)
		} else {
			err = s.rebuildWithout(c, userID, items, barcode)
		}
		if err != nil {
			s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error removing %s from cart: %s", barcode, err)
			return chat.ErrorReply(err, "removing from cart").AsEdit()
		}
	}

	_, err = s.sessions.Update(c, userID, func(sess *session.Session) error {
		sess.Cart, _, _ = Remove(sess.Cart, barcode)
		return nil
	})
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityError, "Error removing %s from session: %s", barcode, err)
	}

	if !found {
		return chat.Text("🤷 That item is not in your cart.").AsEdit()
	}

	return chat.Markdown("❌ Removed *%s* from your cart.", chat.Escape(line.Name)).
		AsEdit().
		WithInline(chat.Row(chat.CallbackButton("🛒 VIEW CART", actions.ViewCart{}.Payload())))
}

func (s *Service) rebuildWithout(c context.Context, userID int64, items []Item, barcode string) error {
	err := s.api.ClearCart(c, userID)
	if err != nil {
		return err
	}
	for _, item := range Live(items) {
		if item.Barcode == barcode {
			continue
		}
		err = s.api.AddToCart(c, userID, item.Barcode, item.Units())
		if err != nil {
			return fmt.Errorf("error restoring %s: %w", item.Barcode, err)
		}
	}
	return nil
}

// ViewCart shows the backend cart. With edit set the message holding the pressed button is replaced.
func (s *Service) ViewCart(c context.Context, userID int64, edit bool) chat.Reply {
	items, err := s.api.GetCart(c, userID)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error fetching cart: %s", err)
		return withEdit(chat.ErrorReply(err, "fetching cart"), edit)
	}
	items = Live(items)

	if len(items) == 0 {
		return withEdit(chat.Text("🛒 Your cart is empty! Start scanning items to add them. 🛍️"), edit)
	}

	msg := strings.Builder{}
	msg.WriteString("🛒 *YOUR PRICELESS CART*\n\n")
	for i, item := range items {
		fmt.Fprintf(&msg, "%d. *%s* x%d - %s\n", i+1, chat.Escape(item.Name), item.Units(), chat.Naira(item.Subtotal()))
	}
	fmt.Fprintf(&msg, "\n💰 *TOTAL:* %s", chat.Naira(Total(items)))

	return withEdit(chat.Markdown("%s", msg.String()).WithInline(
		chat.Row(chat.CallbackButton("💳 PROCEED TO PAYMENT", actions.BeginCheckout{}.Payload())),
		chat.Row(chat.CallbackButton("🗑️ CLEAR CART", actions.ClearCart{}.Payload())),
	), edit)
}

func withEdit(r chat.Reply, edit bool) chat.Reply {
	r.Edit = edit
	return r
}

func label(userID int64) string {
	return fmt.Sprintf("%d", userID)
}
