package mypublisher

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/shopperbot/lib/mytime"
)

type enveloper struct {
	nower mytime.Nower
}

func newEnveloper(nower mytime.Nower) enveloper {
	return enveloper{
		nower: nower,
	}
}

func (e enveloper) do(topic string, event Event) (EventEnvelope, error) {
	jsonPayload, err := json.Marshal(event)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("error marshalling event-payload: %w", err)
	}
	envelope := EventEnvelope{
		Topic:         topic,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(jsonPayload),
	}

	// In order to be idempotent, we do NOT use an uuid to identify the event
	envelope.UID, err = checksum(envelope)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("error checksumming event-payload: %w", err)
	}
	// In order to be idempotent, we exclude timestamp from the checksum
	envelope.CreatedAt = e.nower.Now()

	return envelope, nil
}

func checksum(envlp EventEnvelope) (string, error) {
	asJSON, err := json.Marshal(envlp)
	if err != nil {
		return "", err
	}

	sha2 := sha256.New()
	_, err = io.WriteString(sha2, string(asJSON))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sha2.Sum(nil)), nil
}
