package mystore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"cloud.google.com/go/datastore"
)

const maxTransactionAttempts = 3

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
}

func newGcloudStore[T any](c context.Context) (*gcloudStore[T], func(), error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %w", err)
	}

	return &gcloudStore[T]{
			client: client,
			kind:   kindOf[T](),
		}, func() {
			client.Close()
		}, nil
}

// kindOf derives the datastore kind from the unqualified type name.
func kindOf[T any]() string {
	val := new(T)
	kind := fmt.Sprintf("%T", *val)
	if strings.Contains(kind, ".") {
		kind = strings.Split(kind, ".")[1]
	}
	return kind
}

func (s *gcloudStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	var err error
	for i := 1; i <= maxTransactionAttempts; i++ {
		err = s.runInTransaction(c, f)
		if err != nil {
			if errors.Is(err, datastore.ErrConcurrentTransaction) {
				log.Printf("Concurrent transaction error, retrying (%d of %d): %s", i, maxTransactionAttempts, err)
				// force retry: this approach requires idempotency of the business logic
				continue
			}

			return err
		}
		return nil
	}
	return err
}

func (s *gcloudStore[T]) runInTransaction(c context.Context, f func(c context.Context) error) error {
	t, err := s.client.NewTransaction(c)
	if err != nil {
		return fmt.Errorf("error creating transaction: %w", err)
	}

	// Shadow original context with new transactional context
	ctx := context.WithValue(c, ctxTransactionKey{}, t)

	err = f(ctx)
	if err != nil {
		rollbackError := t.Rollback()
		if rollbackError != nil {
			log.Printf("error rolling-back transaction %p: %s", t, rollbackError)
		}
		return err
	}

	_, err = t.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	key := datastore.NameKey(s.kind, uid, nil)

	if transaction, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction); ok {
		_, err := transaction.Put(key, &value)
		if err != nil {
			return fmt.Errorf("error transactionally storing entity %s with uid %s: %w", s.kind, uid, err)
		}
		return nil
	}

	_, err := s.client.Put(c, key, &value)
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %w", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	value := new(T)
	key := datastore.NameKey(s.kind, uid, nil)

	var err error
	if transaction, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction); ok {
		err = transaction.Get(key, value)
	} else {
		err = s.client.Get(c, key, value)
	}
	if err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return *value, false, nil
		}
		return *value, false, fmt.Errorf("error fetching entity %s with uid %s: %w", s.kind, uid, err)
	}

	return *value, true, nil
}

func (s *gcloudStore[T]) List(c context.Context) ([]T, error) {
	objectsToFetch := []T{}

	q := datastore.NewQuery(s.kind).Limit(100)
	if transaction, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction); ok {
		q = q.Transaction(transaction)
	}

	_, err := s.client.GetAll(c, q, &objectsToFetch)
	if err != nil {
		return nil, fmt.Errorf("error fetching all entities %s: %w", s.kind, err)
	}
	return objectsToFetch, nil
}
