package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/lib/mypublisher"
	"github.com/MarcGrol/shopperbot/lib/mystore"
	"github.com/MarcGrol/shopperbot/lib/mytime"
	"github.com/MarcGrol/shopperbot/services/actions"
	"github.com/MarcGrol/shopperbot/services/backend"
	"github.com/MarcGrol/shopperbot/services/cart"
	"github.com/MarcGrol/shopperbot/services/chat"
	"github.com/MarcGrol/shopperbot/services/checkout/checkoutevents"
	"github.com/MarcGrol/shopperbot/services/session"
)

const starsPerNaira = 50

type Service struct {
	api        backend.API
	sessions   *session.Store
	references mystore.Store[PaymentReference]
	publisher  mypublisher.Publisher
	nower      mytime.Nower
	links      *chat.WebLinks
	cfg        Config
	logger     mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(api backend.API, sessions *session.Store, references mystore.Store[PaymentReference], pub mypublisher.Publisher, nower mytime.Nower, links *chat.WebLinks, cfg Config, logger mylog.Logger) *Service {
	return &Service{
		api:        api,
		sessions:   sessions,
		references: references,
		publisher:  pub,
		nower:      nower,
		links:      links,
		cfg:        cfg,
		logger:     logger,
	}
}

// Review shows the backend cart total and the available payment methods.
func (s *Service) Review(c context.Context, userID int64) chat.Reply {
	items, err := s.api.GetCart(c, userID)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error loading checkout: %s", err)
		return chat.ErrorReply(err, "loading checkout").AsEdit()
	}
	items = cart.Live(items)
	if len(items) == 0 {
		return chat.Text("🛒 Your cart is empty! Start scanning items to add them. 🛍️").AsEdit()
	}

	total := cart.Total(items)
	return chat.Markdown("💳 *SELECT PAYMENT METHOD*\n\n"+
		"📦 Items: %d\n"+
		"💰 Total: %s\n\n"+
		"Choose how you want to pay:", len(items), chat.Naira(total)).
		AsEdit().
		WithInline(
			chat.Row(chat.CallbackButton("⭐ Telegram Stars", actions.SelectPayment{Method: actions.PaymentStars, Amount: total}.Payload())),
			chat.Row(chat.CallbackButton("💳 Debit/Credit Card", actions.SelectPayment{Method: actions.PaymentCard, Amount: total}.Payload())),
			chat.Row(chat.CallbackButton("🏦 Paystack", actions.SelectPayment{Method: actions.PaymentPaystack, Amount: total}.Payload())),
			chat.Row(chat.CallbackButton("🏧 Bank Transfer", actions.SelectPayment{Method: actions.PaymentBank, Amount: total}.Payload())),
			chat.Row(chat.CallbackButton("⬅️ Back to Cart", actions.ViewCart{}.Payload())),
		)
}

// SelectMethod shows the screen of the chosen payment method. Only a bank transfer leaves a trace:
// a reference code that the shopper quotes in the transfer.
func (s *Service) SelectMethod(c context.Context, userID int64, method actions.PaymentMethod, amount int) chat.Reply {
	backToMethods := chat.Row(chat.CallbackButton("⬅️ Back to Payment Methods", actions.BeginCheckout{}.Payload()))

	switch method {
	case actions.PaymentStars:
		return chat.Markdown("⭐ *TELEGRAM STARS PAYMENT*\n\n"+
			"💰 Amount: %s\n"+
			"⭐ Stars Required: %d Stars\n\n"+
			"🔧 _This payment method is coming soon!_\n"+
			"_Telegram Stars integration requires bot payment setup with @BotFather._", chat.Naira(amount), amount/starsPerNaira).
			AsEdit().WithInline(backToMethods)

	case actions.PaymentCard:
		return chat.Markdown("💳 *DEBIT/CREDIT CARD PAYMENT*\n\n"+
			"💰 Amount: %s\n\n"+
			"🔧 _This payment method is coming soon!_\n"+
			"_Card payments will be processed via Paystack._\n\n"+
			"Supported Cards:\n• Visa\n• Mastercard\n• Verve", chat.Naira(amount)).
			AsEdit().WithInline(backToMethods)

	case actions.PaymentPaystack:
		return chat.Markdown("🏦 *PAYSTACK PAYMENT*\n\n"+
			"💰 Amount: %s\n\n"+
			"🔧 _This payment method is coming soon!_\n"+
			"_Paystack supports Cards, Bank Transfer, USSD, and QR._", chat.Naira(amount)).
			AsEdit().WithInline(backToMethods)

	case actions.PaymentBank:
		reference := s.issueReference(c, userID, amount)
		return chat.Markdown("🏧 *BANK TRANSFER PAYMENT*\n\n"+
			"💰 Amount: %s\n\n"+
			"*Bank Details:*\n"+
			"🏦 Bank: %s\n"+
			"📋 Account: %s\n"+
			"👤 Name: %s\n\n"+
			"*Your Reference:* `%s`\n\n"+
			"⚠️ _Please include the reference code in your transfer narration._\n\n"+
			"_After payment, tap \"I've Paid\" and an admin will verify your order._",
			chat.Naira(amount), chat.Escape(s.cfg.Bank.BankName), chat.Escape(s.cfg.Bank.AccountNumber), chat.Escape(s.cfg.Bank.AccountName), reference).
			AsEdit().
			WithInline(
				chat.Row(chat.CallbackButton("✅ I've Paid", actions.ConfirmBankTransfer{Reference: reference}.Payload())),
				backToMethods,
			)

	default:
		return chat.Text("⚠️ Unsupported payment method.").AsEdit()
	}
}

func (s *Service) issueReference(c context.Context, userID int64, amount int) string {
	now := s.nower.Now()
	ref := PaymentReference{
		Code:      fmt.Sprintf("%s-%d-%d", s.cfg.ReferencePrefix, userID, now.Unix()),
		UserID:    userID,
		Amount:    amount,
		CreatedAt: now,
	}

	err := s.references.Put(c, ref.Code, ref)
	if err != nil {
		// the code itself carries everything needed to confirm
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error recording reference %s: %s", ref.Code, err)
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.BankTransferRequested{
		Reference:   ref.Code,
		UserID:      userID,
		Amount:      amount,
		RequestedAt: now,
	})
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error publishing bank transfer request %s: %s", ref.Code, err)
	}

	s.logger.Log(c, label(userID), mylog.SeverityInfo, "Issued reference %s for %d", ref.Code, amount)

	return ref.Code
}

// ConfirmBankTransfer creates the order for the current backend cart once the shopper reports
// the transfer. Repeated confirmations create repeated orders unless ConfirmDedup is set.
func (s *Service) ConfirmBankTransfer(c context.Context, userID int64, reference string) chat.Reply {
	if !s.ownsReference(userID, reference) {
		return chat.Text("⚠️ This payment reference does not belong to you.").AsEdit()
	}

	ref, found, err := s.references.Get(c, reference)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error looking up reference %s: %s", reference, err)
		found = false
	}
	if !found {
		ref = PaymentReference{Code: reference, UserID: userID, CreatedAt: s.nower.Now()}
	}
	if s.cfg.ConfirmDedup && ref.Confirmations > 0 {
		return chat.Markdown("✅ *PAYMENT ALREADY CONFIRMED*\n\n"+
			"Reference: `%s`\n"+
			"Order: `%s`", reference, lastOf(ref.OrderIDs)).AsEdit()
	}

	items, err := s.api.GetCart(c, userID)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error fetching cart for %s: %s", reference, err)
		return s.processingError(err)
	}
	items = cart.Live(items)
	if len(items) == 0 {
		return chat.Text("🛒 Your cart is empty, so there is nothing to confirm. Scan some items first.").AsEdit()
	}

	total := cart.Total(items)
	order, err := s.api.CreateOrder(c, backend.OrderRequest{
		UserID:        userID,
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: bankTransferMethod,
		PaymentRef:    reference,
	})
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error creating order for %s: %s", reference, err)
		return s.processingError(err)
	}

	s.logger.Log(c, label(userID), mylog.SeverityInfo, "Order %s created for reference %s (%d)", order.OrderID, reference, total)

	_, err = s.sessions.Update(c, userID, func(sess *session.Session) error {
		sess.Cart = nil
		return nil
	})
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityError, "Error clearing session cart: %s", err)
	}

	ref.Confirmations++
	ref.OrderIDs = append(ref.OrderIDs, order.OrderID)
	err = s.references.Put(c, ref.Code, ref)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error recording confirmation of %s: %s", reference, err)
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.OrderSubmitted{
		OrderID:     order.OrderID,
		Reference:   reference,
		UserID:      userID,
		Amount:      total,
		ItemCount:   len(items),
		SubmittedAt: s.nower.Now(),
	})
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error publishing order %s: %s", order.OrderID, err)
	}

	receipt := s.links.Receipt(order.OrderID)
	return chat.Markdown("✅ *PAYMENT CONFIRMATION RECEIVED*\n\n"+
		"Reference: `%s`\n"+
		"Order: `%s`\n"+
		"💰 Total: %s\n\n"+
		"🕐 Your payment is being verified.\n"+
		"_Verification usually takes 5-15 minutes during business hours._\n\n"+
		"🧾 Receipt: %s", reference, order.OrderID, chat.Naira(total), receipt).
		AsEdit().
		WithInline(chat.Row(chat.WebAppButton("🧾 View Receipt", receipt)))
}

// ClearCart empties the backend cart and the session cart.
func (s *Service) ClearCart(c context.Context, userID int64) chat.Reply {
	err := s.api.ClearCart(c, userID)
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityWarn, "Error clearing cart: %s", err)
		return chat.ErrorReply(err, "clearing cart").AsEdit()
	}

	_, err = s.sessions.Update(c, userID, func(sess *session.Session) error {
		sess.Cart = nil
		return nil
	})
	if err != nil {
		s.logger.Log(c, label(userID), mylog.SeverityError, "Error clearing session cart: %s", err)
	}

	return chat.Text("🗑️ Cart cleared!").AsEdit()
}

func (s *Service) ownsReference(userID int64, reference string) bool {
	return strings.HasPrefix(reference, fmt.Sprintf("%s-%d-", s.cfg.ReferencePrefix, userID))
}

func (s *Service) processingError(err error) chat.Reply {
	reply := chat.ErrorReply(err, "processing your payment confirmation")
	reply.Text += "\nYou can tap \"I've Paid\" again."
	return reply.AsEdit()
}

func lastOf(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return values[len(values)-1]
}

func label(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
