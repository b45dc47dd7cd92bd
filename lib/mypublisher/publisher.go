package mypublisher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"cloud.google.com/go/pubsub"

	"github.com/MarcGrol/shopperbot/lib/mylog"
	"github.com/MarcGrol/shopperbot/lib/mytime"
)

// New returns a Cloud Pub/Sub publisher when running in a Google Cloud project and a publisher
// that only logs the envelopes otherwise.
func New(c context.Context, nower mytime.Nower) (Publisher, func(), error) {
	logger := mylog.New("publisher")

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		return &loggingPublisher{
			enveloper: newEnveloper(nower),
			logger:    logger,
		}, func() {}, nil
	}

	client, err := pubsub.NewClient(c, projectID)
	if err != nil {
		return nil, func() {}, fmt.Errorf("error creating pubsub-client: %w", err)
	}

	return &gcloudPublisher{
			client:    client,
			topics:    map[string]*pubsub.Topic{},
			enveloper: newEnveloper(nower),
			logger:    logger,
		}, func() {
			client.Close()
		}, nil
}

type loggingPublisher struct {
	enveloper enveloper
	logger    mylog.Logger
}

func (p *loggingPublisher) Publish(c context.Context, topic string, event Event) error {
	envelope, err := p.enveloper.do(topic, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %w", err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Published event %s: %s", envelope.String(), envelope.EventPayload)

	return nil
}

type gcloudPublisher struct {
	sync.Mutex
	client    *pubsub.Client
	topics    map[string]*pubsub.Topic
	enveloper enveloper
	logger    mylog.Logger
}

func (p *gcloudPublisher) topic(c context.Context, topicName string) (*pubsub.Topic, error) {
	p.Lock()
	defer p.Unlock()

	topic, found := p.topics[topicName]
	if found {
		return topic, nil
	}

	topic = p.client.Topic(topicName)
	exists, err := topic.Exists(c)
	if err != nil {
		return nil, fmt.Errorf("error checking if topic %s exists: %w", topicName, err)
	}
	if !exists {
		topic, err = p.client.CreateTopic(c, topicName)
		if err != nil {
			return nil, fmt.Errorf("error creating topic %s: %w", topicName, err)
		}
	}
	p.topics[topicName] = topic

	return topic, nil
}

func (p *gcloudPublisher) Publish(c context.Context, topicName string, event Event) error {
	envelope, err := p.enveloper.do(topicName, event)
	if err != nil {
		return fmt.Errorf("error creating envelope: %w", err)
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("error serializing envelope: %w", err)
	}

	topic, err := p.topic(c, topicName)
	if err != nil {
		return err
	}

	_, err = topic.Publish(c, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"eventType": envelope.EventTypeName},
	}).Get(c)
	if err != nil {
		return fmt.Errorf("error publishing event on topic %s: %w", topicName, err)
	}

	p.logger.Log(c, envelope.AggregateUID, mylog.SeverityInfo, "Published event %s", envelope.String())

	return nil
}
