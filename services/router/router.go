package router

import (
	"context"
	"errors"
	"strconv"

	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/services/actions"
	"github.com/MarcGrol/shopperbot/services/backend"
	"github.com/MarcGrol/shopperbot/services/cart"
	"github.com/MarcGrol/shopperbot/services/chat"
	"github.com/MarcGrol/shopperbot/services/checkout"
	"github.com/MarcGrol/shopperbot/services/identity"
	"github.com/MarcGrol/shopperbot/services/inventory"
	"github.com/MarcGrol/shopperbot/services/session"
)

const viewCartWebAppData = "VIEW_CART"

type Services struct {
	Identity  *identity.Service
	Cart      *cart.Service
	Checkout  *checkout.Service
	Inventory *inventory.Service
}

// Router classifies inbound chat events and dispatches them to the services, enforcing the role
// gates on the way.
type Router struct {
	api        backend.API
	sessions   *session.Store
	services   Services
	links      *chat.WebLinks
	superAdmin string
	logger     mylog.Logger
}

func New(api backend.API, sessions *session.Store, services Services, links *chat.WebLinks, superAdmin string, logger mylog.Logger) *Router {
	return &Router{
		api:        api,
		sessions:   sessions,
		services:   services,
		links:      links,
		superAdmin: superAdmin,
		logger:     logger,
	}
}

// Handle processes one event and returns the replies to send. Failures are always turned into
// replies.
func (r *Router) Handle(c context.Context, ev chat.Event) []chat.Reply {
	r.logger.Log(c, label(ev.User.ID), mylog.SeverityDebug, "Handling %s event", ev.Kind)

	switch ev.Kind {
	case chat.KindCommand:
		return r.onCommand(c, ev)
	case chat.KindText:
		return r.onText(c, ev)
	case chat.KindCallback:
		return r.onCallback(c, ev)
	case chat.KindDocument:
		return r.onDocument(c, ev)
	case chat.KindWebAppData:
		return r.onWebAppData(c, ev)
	default:
		return nil
	}
}

func (r *Router) onCommand(c context.Context, ev chat.Event) []chat.Reply {
	switch ev.Command {
	case "start":
		return replies(r.services.Identity.Start(c, ev.User))
	case "logout":
		return replies(r.services.Identity.Logout(c, ev.User))
	case "admin":
		return r.asSuperAdmin(c, ev, r.adminConsole)
	case "staff":
		return r.asStaff(c, ev, r.staffMenu)
	case "cart":
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Cart.ViewCart(c, ev.User.ID, false)
		})
	default:
		return nil
	}
}

// onText offers text to the registration/login conversation first, then to a pending stock
// lookup and finally to the menu.
func (r *Router) onText(c context.Context, ev chat.Event) []chat.Reply {
	reply, consumed := r.services.Identity.HandleText(c, ev.User, ev.Text)
	if consumed {
		return replies(reply)
	}

	sess, err := r.sessions.Get(c, ev.User.ID)
	if err != nil {
		return replies(chat.ErrorReply(err, "loading your session"))
	}
	if sess.AwaitingStockQuery {
		return replies(r.stockLookup(c, ev))
	}

	switch ev.Text {
	case identity.MenuCart:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Cart.ViewCart(c, ev.User.ID, false)
		})
	case identity.MenuProfile:
		return r.asShopper(c, ev, r.profile)
	case identity.MenuHistory:
		return r.asShopper(c, ev, r.history)
	default:
		return nil
	}
}

func (r *Router) onCallback(c context.Context, ev chat.Event) []chat.Reply {
	action, err := actions.Decode(ev.Data)
	if err != nil {
		if errors.Is(err, actions.ErrUnknownAction) {
			r.logger.Log(c, label(ev.User.ID), mylog.SeverityInfo, "Ignoring callback: %s", err)
			return nil
		}
		r.logger.Log(c, label(ev.User.ID), mylog.SeverityWarn, "Malformed callback: %s", err)
		return replies(chat.Text("⚠️ This button is no longer valid. Please open your cart again."))
	}

	userID := ev.User.ID
	switch a := action.(type) {
	case actions.AddItem:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Cart.AddItem(c, userID, a.Barcode)
		})
	case actions.RemoveItem:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Cart.RemoveItem(c, userID, a.Barcode)
		})
	case actions.ViewCart:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Cart.ViewCart(c, userID, true)
		})
	case actions.BeginCheckout:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Checkout.Review(c, userID)
		})
	case actions.ClearCart:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Checkout.ClearCart(c, userID)
		})
	case actions.SelectPayment:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Checkout.SelectMethod(c, userID, a.Method, a.Amount)
		})
	case actions.ConfirmBankTransfer:
		return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.services.Checkout.ConfirmBankTransfer(c, userID, a.Reference)
		})
	case actions.RefreshAnalytics:
		return r.asSuperAdmin(c, ev, r.analytics)
	case actions.AdminMenu:
		return r.asSuperAdmin(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
			return r.adminConsole(c, ev).AsEdit()
		})
	case actions.StaffStockLookup:
		return r.asStaff(c, ev, r.startStockLookup)
	case actions.StaffRecentOrders:
		return r.asSuperAdmin(c, ev, r.recentOrders)
	default:
		return nil
	}
}

func (r *Router) onDocument(c context.Context, ev chat.Event) []chat.Reply {
	if ev.Document == nil {
		return nil
	}
	return r.asSuperAdmin(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
		return r.services.Inventory.Upload(c, ev.User.Username, *ev.Document)
	})
}

func (r *Router) onWebAppData(c context.Context, ev chat.Event) []chat.Reply {
	return r.asShopper(c, ev, func(c context.Context, ev chat.Event) chat.Reply {
		if ev.Data == viewCartWebAppData {
			return r.services.Cart.ViewCart(c, ev.User.ID, false)
		}
		return r.services.Cart.ShowProduct(c, ev.User.ID, ev.Data)
	})
}

func replies(rs ...chat.Reply) []chat.Reply {
	return rs
}

func label(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
