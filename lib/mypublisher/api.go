package mypublisher

import (
	"context"
	"time"
)

type EventEnvelope struct {
	UID           string
	CreatedAt     time.Time
	Topic         string
	AggregateUID  string
	EventTypeName string
	EventPayload  string `datastore:",noindex"`
}

func (e EventEnvelope) String() string {
	return e.Topic + "." + e.EventTypeName + "." + e.AggregateUID
}

type Event interface {
	GetEventTypeName() string
	GetAggregateName() string
}

//go:generate mockgen -source=api.go -package mypublisher -destination publisher_mock.go Publisher
type Publisher interface {
	Publish(c context.Context, topic string, event Event) error
}
