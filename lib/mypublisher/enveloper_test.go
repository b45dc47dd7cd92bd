package mypublisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopperbot/lib/mytime"
)

type orderPlaced struct {
	OrderUID string
	Total    int
}

func (e orderPlaced) GetEventTypeName() string {
	return "order.placed"
}

func (e orderPlaced) GetAggregateName() string {
	return e.OrderUID
}

func TestEnveloper(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).Times(3)

	sut := newEnveloper(nower)

	t.Run("Envelope fields", func(t *testing.T) {
		envelope, err := sut.do("orders", orderPlaced{OrderUID: "ORD-1", Total: 2500})
		assert.NoError(t, err)
		assert.Equal(t, "orders", envelope.Topic)
		assert.Equal(t, "ORD-1", envelope.AggregateUID)
		assert.Equal(t, "order.placed", envelope.EventTypeName)
		assert.Equal(t, `{"OrderUID":"ORD-1","Total":2500}`, envelope.EventPayload)
		assert.Equal(t, mytime.ExampleTime, envelope.CreatedAt)
		assert.Equal(t, "orders.order.placed.ORD-1", envelope.String())
	})

	t.Run("Same event gives same uid", func(t *testing.T) {
		first, err := sut.do("orders", orderPlaced{OrderUID: "ORD-1", Total: 2500})
		assert.NoError(t, err)
		second, err := sut.do("orders", orderPlaced{OrderUID: "ORD-1", Total: 2500})
		assert.NoError(t, err)
		assert.Equal(t, first.UID, second.UID)
	})
}

func TestLoggingPublisher(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	publisher, cleanup, err := New(context.TODO(), mytime.RealNower{})
	assert.NoError(t, err)
	defer cleanup()

	err = publisher.Publish(context.TODO(), "orders", orderPlaced{OrderUID: "ORD-1", Total: 2500})
	assert.NoError(t, err)
}
