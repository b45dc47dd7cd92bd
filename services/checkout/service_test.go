package checkout

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/lib/mypublisher"
	"github.com/MarcGrol/shopperbot/lib/mystore"
	"github.com/MarcGrol/shopperbot/lib/mytime"
	"github.com/MarcGrol/shopperbot/services/actions"
	"github.com/MarcGrol/shopperbot/services/backend"
	"github.com/MarcGrol/shopperbot/services/chat"
	"github.com/MarcGrol/shopperbot/services/checkout/checkoutevents"
	"github.com/MarcGrol/shopperbot/services/session"
)

const (
	userID    = int64(42)
	reference = "PSS-42-1677542339"
)

var (
	cartItems = []backend.CartItem{
		{Product: backend.Product{Barcode: "1", Name: "Nestlé Milo", Price: 1000}, Quantity: 2},
		{Product: backend.Product{Barcode: "2", Name: "Peak Milk", Price: 500}, Quantity: 1},
	}
	bank = BankDetails{BankName: "Moniepoint MFB", AccountNumber: "0123456789", AccountName: "Smart Shopping Ltd"}
)

type fixture struct {
	c          context.Context
	sut        *Service
	api        *backend.MockAPI
	publisher  *mypublisher.MockPublisher
	sessions   *session.Store
	references *mystore.InMemoryStore[PaymentReference]
}

func setup(t *testing.T, ctrl *gomock.Controller, dedup bool) fixture {
	c := context.TODO()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	sessionStore, cleanup, err := mystore.NewInMemoryStore[session.Session](c)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	sessions := session.NewStore(sessionStore, nower)

	references, cleanup, err := mystore.NewInMemoryStore[PaymentReference](c)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	api := backend.NewMockAPI(ctrl)
	publisher := mypublisher.NewMockPublisher(ctrl)

	sut := NewService(api, sessions, references, publisher, nower, chat.NewWebLinks("https://shop.example.com"),
		Config{ReferencePrefix: "PSS", ConfirmDedup: dedup, Bank: bank}, mylog.New("checkout"))

	return fixture{c: c, sut: sut, api: api, publisher: publisher, sessions: sessions, references: references}
}

func TestReview(t *testing.T) {
	t.Run("Methods carry the total", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return(cartItems, nil)

		// when
		reply := f.sut.Review(f.c, userID)

		// then
		assert.True(t, reply.Edit)
		assert.Contains(t, reply.Text, "📦 Items: 2")
		assert.Contains(t, reply.Text, "💰 Total: ₦2,500")
		assert.Equal(t, "pay_stars_2500", reply.Inline[0][0].Data)
		assert.Equal(t, "pay_card_2500", reply.Inline[1][0].Data)
		assert.Equal(t, "pay_paystack_2500", reply.Inline[2][0].Data)
		assert.Equal(t, "pay_bank_2500", reply.Inline[3][0].Data)
		assert.Equal(t, "view_cart", reply.Inline[4][0].Data)
	})

	t.Run("Lines without units are not charged", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		withEmptyLine := append([]backend.CartItem{{Product: backend.Product{Barcode: "3", Name: "Agege Bread", Price: 800}, Quantity: 0}}, cartItems...)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return(withEmptyLine, nil)

		// when
		reply := f.sut.Review(f.c, userID)

		// then
		assert.Contains(t, reply.Text, "📦 Items: 2")
		assert.Contains(t, reply.Text, "💰 Total: ₦2,500")
	})

	t.Run("Backend down", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return(nil, myerrors.NewUnavailableError(fmt.Errorf("down")))

		// when
		reply := f.sut.Review(f.c, userID)

		// then
		assert.Equal(t, chat.UnavailableText, reply.Text)
	})
}

func TestSelectMethod(t *testing.T) {
	t.Run("Stars", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(t, ctrl, false)

		reply := f.sut.SelectMethod(f.c, userID, actions.PaymentStars, 2500)

		assert.Contains(t, reply.Text, "Stars Required: 50 Stars")
		assert.Equal(t, "checkout", reply.Inline[0][0].Data)
	})

	t.Run("Card and paystack are informational", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := setup(t, ctrl, false)

		assert.Contains(t, f.sut.SelectMethod(f.c, userID, actions.PaymentCard, 2500).Text, "CARD PAYMENT")
		assert.Contains(t, f.sut.SelectMethod(f.c, userID, actions.PaymentPaystack, 2500).Text, "PAYSTACK PAYMENT")
		refs, err := f.references.List(f.c)
		require.NoError(t, err)
		assert.Empty(t, refs)
	})

	t.Run("Bank transfer issues a reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.BankTransferRequested{
			Reference:   reference,
			UserID:      userID,
			Amount:      2500,
			RequestedAt: mytime.ExampleTime,
		}).Return(nil)

		// when
		reply := f.sut.SelectMethod(f.c, userID, actions.PaymentBank, 2500)

		// then
		assert.Contains(t, reply.Text, "*Your Reference:* `PSS-42-1677542339`")
		assert.Contains(t, reply.Text, "Moniepoint MFB")
		assert.Equal(t, "confirm_bank_PSS-42-1677542339", reply.Inline[0][0].Data)
		assert.Equal(t, "checkout", reply.Inline[1][0].Data)

		ref, found, err := f.references.Get(f.c, reference)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2500, ref.Amount)
	})
}

func TestConfirmBankTransfer(t *testing.T) {
	t.Run("Order created with reference", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		_, err := f.sessions.Update(f.c, userID, func(sess *session.Session) error {
			sess.Cart = cartItems
			return nil
		})
		require.NoError(t, err)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return(cartItems, nil)
		f.api.EXPECT().CreateOrder(gomock.Any(), backend.OrderRequest{
			UserID:        userID,
			Items:         cartItems,
			TotalAmount:   2500,
			PaymentMethod: "Bank Transfer",
			PaymentRef:    reference,
		}).Return(backend.OrderResponse{OrderID: "ORD-1-42"}, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

		// when
		reply := f.sut.ConfirmBankTransfer(f.c, userID, reference)

		// then
		assert.Contains(t, reply.Text, "PAYMENT CONFIRMATION RECEIVED")
		assert.Contains(t, reply.Text, "https://shop.example.com/history?orderId=ORD-1-42")
		assert.Equal(t, "https://shop.example.com/history?orderId=ORD-1-42", reply.Inline[0][0].WebAppURL)
		sess, err := f.sessions.Get(f.c, userID)
		require.NoError(t, err)
		assert.Empty(t, sess.Cart)
	})

	t.Run("Repeated confirmation creates a second order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return(cartItems, nil).Times(2)
		f.api.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(backend.OrderResponse{OrderID: "ORD-1-42"}, nil).Times(2)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

		// when
		f.sut.ConfirmBankTransfer(f.c, userID, reference)
		f.sut.ConfirmBankTransfer(f.c, userID, reference)

		// then
		ref, found, err := f.references.Get(f.c, reference)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2, ref.Confirmations)
	})

	t.Run("Repeated confirmation with dedup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, true)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return(cartItems, nil).Times(1)
		f.api.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(backend.OrderResponse{OrderID: "ORD-1-42"}, nil).Times(1)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
		f.sut.ConfirmBankTransfer(f.c, userID, reference)

		// when
		reply := f.sut.ConfirmBankTransfer(f.c, userID, reference)

		// then
		assert.Contains(t, reply.Text, "ALREADY CONFIRMED")
		assert.Contains(t, reply.Text, "ORD-1-42")
	})

	t.Run("Empty backend cart fails closed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return([]backend.CartItem{}, nil)
		f.api.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Times(0)

		// when
		reply := f.sut.ConfirmBankTransfer(f.c, userID, reference)

		// then
		assert.Contains(t, reply.Text, "cart is empty")
	})

	t.Run("Order failure keeps session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		_, err := f.sessions.Update(f.c, userID, func(sess *session.Session) error {
			sess.Cart = cartItems
			return nil
		})
		require.NoError(t, err)
		f.api.EXPECT().GetCart(gomock.Any(), userID).Return(cartItems, nil)
		f.api.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(backend.OrderResponse{}, myerrors.NewUnavailableError(fmt.Errorf("down")))

		// when
		reply := f.sut.ConfirmBankTransfer(f.c, userID, reference)

		// then
		assert.Contains(t, reply.Text, "I've Paid")
		sess, err := f.sessions.Get(f.c, userID)
		require.NoError(t, err)
		assert.Len(t, sess.Cart, 2)
	})

	t.Run("Reference of another user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		// given
		f := setup(t, ctrl, false)
		f.api.EXPECT().GetCart(gomock.Any(), gomock.Any()).Times(0)

		// when
		reply := f.sut.ConfirmBankTransfer(f.c, userID, "PSS-7-1677542339")

		// then
		assert.Contains(t, reply.Text, "does not belong to you")
	})
}

func TestClearCart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// given
	f := setup(t, ctrl, false)
	_, err := f.sessions.Update(f.c, userID, func(sess *session.Session) error {
		sess.Cart = cartItems
		return nil
	})
	require.NoError(t, err)
	f.api.EXPECT().ClearCart(gomock.Any(), userID).Return(nil)

	// when
	reply := f.sut.ClearCart(f.c, userID)

	// then
	assert.Equal(t, "🗑️ Cart cleared!", reply.Text)
	sess, err := f.sessions.Get(f.c, userID)
	require.NoError(t, err)
	assert.Empty(t, sess.Cart)
}
