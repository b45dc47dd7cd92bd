package telegram

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/shopperbot/lib/mylog"
)

func TestDispatcher(t *testing.T) {
	t.Run("Tasks of one user run in order", func(t *testing.T) {
		// given
		sut := NewDispatcher(time.Minute, mylog.New("dispatcher"))
		mutex := sync.Mutex{}
		seen := []int{}

		// when
		for i := 0; i < 100; i++ {
			sut.Dispatch(42, func() {
				mutex.Lock()
				defer mutex.Unlock()
				seen = append(seen, i)
			})
		}
		sut.Close()

		// then
		assert.Len(t, seen, 100)
		for i, v := range seen {
			assert.Equal(t, i, v)
		}
	})

	t.Run("Users do not wait for each other", func(t *testing.T) {
		// given
		sut := NewDispatcher(time.Minute, mylog.New("dispatcher"))
		release := make(chan struct{})
		otherDone := make(chan struct{})

		// when
		sut.Dispatch(1, func() { <-release })
		sut.Dispatch(2, func() { close(otherDone) })

		// then
		select {
		case <-otherDone:
		case <-time.After(5 * time.Second):
			t.Fatal("second user was blocked by the first")
		}
		close(release)
		sut.Close()
	})

	t.Run("Panic does not stop the worker", func(t *testing.T) {
		// given
		sut := NewDispatcher(time.Minute, mylog.New("dispatcher"))
		done := false

		// when
		sut.Dispatch(42, func() { panic("boom") })
		sut.Dispatch(42, func() { done = true })
		sut.Close()

		// then
		assert.True(t, done)
	})

	t.Run("Idle worker retires", func(t *testing.T) {
		// given
		sut := NewDispatcher(10*time.Millisecond, mylog.New("dispatcher"))

		// when
		sut.Dispatch(42, func() {})

		// then
		assert.Eventually(t, func() bool { return sut.activeWorkers() == 0 }, 5*time.Second, 5*time.Millisecond)

		// when
		ran := make(chan struct{})
		sut.Dispatch(42, func() { close(ran) })

		// then
		select {
		case <-ran:
		case <-time.After(5 * time.Second):
			t.Fatal("task after retirement did not run")
		}
		sut.Close()
	})

	t.Run("Rejected after close", func(t *testing.T) {
		// given
		sut := NewDispatcher(time.Minute, mylog.New("dispatcher"))
		sut.Close()

		// when
		accepted := sut.Dispatch(42, func() {})

		// then
		assert.False(t, accepted)
	})
}
