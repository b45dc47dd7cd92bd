// Package actions defines the closed set of button actions and their callback payload encoding.
// Payloads are decoded once, when the callback arrives, so handlers only see typed values.
package actions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
)

// ErrUnknownAction is returned for payloads with a tag this bot does not know, typically
// buttons sent by an older version.
var ErrUnknownAction = errors.New("unknown action")

type PaymentMethod string

const (
	PaymentStars    PaymentMethod = "stars"
	PaymentCard     PaymentMethod = "card"
	PaymentPaystack PaymentMethod = "paystack"
	PaymentBank     PaymentMethod = "bank"
)

var PaymentMethods = []PaymentMethod{PaymentStars, PaymentCard, PaymentPaystack, PaymentBank}

func (m PaymentMethod) valid() bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

type Action interface {
	Payload() string
}

type AddItem struct {
	Barcode string
}

func (a AddItem) Payload() string { return "add_" + a.Barcode }

type RemoveItem struct {
	Barcode string
}

func (a RemoveItem) Payload() string { return "rem_" + a.Barcode }

type ViewCart struct{}

func (a ViewCart) Payload() string { return "view_cart" }

type BeginCheckout struct{}

func (a BeginCheckout) Payload() string { return "checkout" }

type ClearCart struct{}

func (a ClearCart) Payload() string { return "clear_cart" }

type SelectPayment struct {
	Method PaymentMethod
	Amount int
}

func (a SelectPayment) Payload() string {
	return fmt.Sprintf("pay_%s_%d", a.Method, a.Amount)
}

type ConfirmBankTransfer struct {
	Reference string
}

func (a ConfirmBankTransfer) Payload() string { return "confirm_bank_" + a.Reference }

type RefreshAnalytics struct{}

func (a RefreshAnalytics) Payload() string { return "admin_stats" }

type AdminMenu struct{}

func (a AdminMenu) Payload() string { return "back_admin" }

type StaffStockLookup struct{}

func (a StaffStockLookup) Payload() string { return "staff_stock" }

type StaffRecentOrders struct{}

func (a StaffRecentOrders) Payload() string { return "staff_orders" }

// Decode turns a callback payload into an action. The tag is the text before the first '_';
// the remainder belongs to the action and may itself contain '_'.
func Decode(payload string) (Action, error) {
	tag, rest, _ := strings.Cut(payload, "_")

	switch tag {
	case "add":
		if rest == "" {
			return nil, myerrors.NewInvalidInputErrorf("missing barcode in %q", payload)
		}
		return AddItem{Barcode: rest}, nil
	case "rem":
		if rest == "" {
			return nil, myerrors.NewInvalidInputErrorf("missing barcode in %q", payload)
		}
		return RemoveItem{Barcode: rest}, nil
	case "checkout":
		if rest == "" {
			return BeginCheckout{}, nil
		}
	case "view":
		if rest == "cart" {
			return ViewCart{}, nil
		}
	case "clear":
		if rest == "cart" {
			return ClearCart{}, nil
		}
	case "pay":
		return decodeSelectPayment(payload, rest)
	case "confirm":
		reference, found := strings.CutPrefix(rest, "bank_")
		if !found {
			break
		}
		if reference == "" {
			return nil, myerrors.NewInvalidInputErrorf("missing reference in %q", payload)
		}
		return ConfirmBankTransfer{Reference: reference}, nil
	case "admin":
		if rest == "stats" {
			return RefreshAnalytics{}, nil
		}
	case "back":
		if rest == "admin" {
			return AdminMenu{}, nil
		}
	case "staff":
		switch rest {
		case "stock":
			return StaffStockLookup{}, nil
		case "orders":
			return StaffRecentOrders{}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, payload)
}

func decodeSelectPayment(payload string, rest string) (Action, error) {
	method, amountText, found := strings.Cut(rest, "_")
	if !found {
		return nil, myerrors.NewInvalidInputErrorf("missing amount in %q", payload)
	}
	if !PaymentMethod(method).valid() {
		return nil, myerrors.NewInvalidInputErrorf("unsupported payment method %q", method)
	}
	amount, err := strconv.Atoi(amountText)
	if err != nil || amount < 0 {
		return nil, myerrors.NewInvalidInputErrorf("invalid amount in %q", payload)
	}
	return SelectPayment{Method: PaymentMethod(method), Amount: amount}, nil
}
