package session

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/MarcGrol/shopperbot/lib/mystore"
	"github.com/MarcGrol/shopperbot/lib/mytime"
)

// Store keeps one session per user. Sessions are created on first use.
type Store struct {
	store mystore.Store[Session]
	nower mytime.Nower
}

func NewStore(store mystore.Store[Session], nower mytime.Nower) *Store {
	return &Store{
		store: store,
		nower: nower,
	}
}

func (s *Store) Get(c context.Context, userID int64) (Session, error) {
	var sess Session
	err := s.store.RunInTransaction(c, func(c context.Context) error {
		var err error
		sess, err = s.getOrCreate(c, userID)
		return err
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Update applies f to the session of userID and stores the result. Nothing is stored when f fails.
func (s *Store) Update(c context.Context, userID int64, f func(sess *Session) error) (Session, error) {
	var sess Session
	err := s.store.RunInTransaction(c, func(c context.Context) error {
		var err error
		sess, err = s.getOrCreate(c, userID)
		if err != nil {
			return err
		}

		err = f(&sess)
		if err != nil {
			return err
		}

		sess.LastModified = s.nower.Now()
		err = s.store.Put(c, key(userID), sess)
		if err != nil {
			return fmt.Errorf("error storing session of user %d: %w", userID, err)
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Reset discards any pending conversation and draft. The cart is kept.
func (s *Store) Reset(c context.Context, userID int64) (Session, error) {
	return s.Update(c, userID, func(sess *Session) error {
		sess.ResetConversation()
		return nil
	})
}

// Forget replaces the session of userID with a fresh one.
func (s *Store) Forget(c context.Context, userID int64) error {
	now := s.nower.Now()
	err := s.store.Put(c, key(userID), Session{
		UserID:       userID,
		State:        StateNone,
		CreatedAt:    now,
		LastModified: now,
	})
	if err != nil {
		return fmt.Errorf("error clearing session of user %d: %w", userID, err)
	}
	return nil
}

func (s *Store) getOrCreate(c context.Context, userID int64) (Session, error) {
	sess, found, err := s.store.Get(c, key(userID))
	if err != nil {
		return Session{}, fmt.Errorf("error fetching session of user %d: %w", userID, err)
	}
	if !found {
		now := s.nower.Now()
		return Session{
			UserID:       userID,
			State:        StateNone,
			CreatedAt:    now,
			LastModified: now,
		}, nil
	}
	sess.Cart = slices.Clone(sess.Cart)
	return sess, nil
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
