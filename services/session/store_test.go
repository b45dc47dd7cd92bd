package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarcGrol/shopperbot/lib/mystore"
	"github.com/MarcGrol/shopperbot/lib/mytime"
	"github.com/MarcGrol/shopperbot/services/backend"
)

type fixedNower struct{}

func (n fixedNower) Now() time.Time {
	return mytime.ExampleTime
}

func newStore(t *testing.T) *Store {
	store, cleanup, err := mystore.NewInMemoryStore[Session](context.TODO())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return NewStore(store, fixedNower{})
}

func TestStore(t *testing.T) {
	ctx := context.TODO()

	t.Run("Created on first use", func(t *testing.T) {
		sut := newStore(t)

		sess, err := sut.Get(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, int64(42), sess.UserID)
		assert.Equal(t, StateNone, sess.Conversation())
		assert.Equal(t, mytime.ExampleTime, sess.CreatedAt)
	})

	t.Run("Update", func(t *testing.T) {
		sut := newStore(t)

		_, err := sut.Update(ctx, 42, func(sess *Session) error {
			sess.State = StateAwaitingPhone
			sess.Draft.Name = "Ada"
			return nil
		})
		require.NoError(t, err)

		sess, err := sut.Get(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingPhone, sess.Conversation())
		assert.Equal(t, "Ada", sess.Draft.Name)
	})

	t.Run("Failed update is not stored", func(t *testing.T) {
		sut := newStore(t)

		_, err := sut.Update(ctx, 42, func(sess *Session) error {
			sess.State = StateAwaitingName
			return fmt.Errorf("boom")
		})
		assert.EqualError(t, err, "boom")

		sess, err := sut.Get(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, StateNone, sess.State)
	})

	t.Run("Reset keeps cart", func(t *testing.T) {
		sut := newStore(t)

		_, err := sut.Update(ctx, 42, func(sess *Session) error {
			sess.State = StateAwaitingEmail
			sess.Draft = Registration{Name: "Ada", Phone: "08011112222"}
			sess.AwaitingStockQuery = true
			sess.Cart = append(sess.Cart, backend.CartItem{Product: backend.Product{Barcode: "1"}})
			return nil
		})
		require.NoError(t, err)

		sess, err := sut.Reset(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, StateNone, sess.Conversation())
		assert.Equal(t, Registration{}, sess.Draft)
		assert.False(t, sess.AwaitingStockQuery)
		assert.Len(t, sess.Cart, 1)
	})

	t.Run("Forget", func(t *testing.T) {
		sut := newStore(t)

		_, err := sut.Update(ctx, 42, func(sess *Session) error {
			sess.Cart = append(sess.Cart, backend.CartItem{Product: backend.Product{Barcode: "1"}})
			return nil
		})
		require.NoError(t, err)

		err = sut.Forget(ctx, 42)
		require.NoError(t, err)

		sess, err := sut.Get(ctx, 42)
		require.NoError(t, err)
		assert.Empty(t, sess.Cart)
	})
}

func TestConversation(t *testing.T) {
	assert.Equal(t, StateNone, Session{}.Conversation())
	assert.Equal(t, StateAwaitingStockQuery, Session{State: StateNone, AwaitingStockQuery: true}.Conversation())
	assert.Equal(t, StateAwaitingLoginCode, Session{State: StateAwaitingLoginCode, AwaitingStockQuery: true}.Conversation())
}
