package telegram

import (
	"context"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/MarcGrol/shopperbot/lib/mylog"
)

const defaultIdleTimeout = 2 * time.Minute

type worker struct {
	tasks chan func()
	// dispatched but not yet finished; guarded by Dispatcher.mu
	pending int
}

// Dispatcher runs the tasks of one user in arrival order on a dedicated goroutine, while tasks of
// different users run concurrently. A worker exits once it has been idle for idleTimeout.
type Dispatcher struct {
	idleTimeout time.Duration
	logger      mylog.Logger

	mu      sync.Mutex
	workers map[int64]*worker
	closed  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

func NewDispatcher(idleTimeout time.Duration, logger mylog.Logger) *Dispatcher {
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	return &Dispatcher{
		idleTimeout: idleTimeout,
		logger:      logger,
		workers:     map[int64]*worker{},
		stop:        make(chan struct{}),
	}
}

// Dispatch queues task for key. It reports false after Close.
func (d *Dispatcher) Dispatch(key int64, task func()) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	w, found := d.workers[key]
	if !found {
		w = &worker{tasks: make(chan func(), 16)}
		d.workers[key] = w
		d.wg.Add(1)
		go d.run(key, w)
	}
	w.pending++
	d.mu.Unlock()

	// the worker cannot retire while pending > 0, so this send always gets a reader
	w.tasks <- task
	return true
}

// Close stops accepting tasks and waits until every queued task has run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) activeWorkers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.workers)
}

func (d *Dispatcher) run(key int64, w *worker) {
	defer d.wg.Done()

	timer := time.NewTimer(d.idleTimeout)
	defer timer.Stop()

	for {
		select {
		case task := <-w.tasks:
			d.execute(key, w, task)
			timer.Reset(d.idleTimeout)

		case <-timer.C:
			if d.retire(key, w) {
				return
			}
			timer.Reset(d.idleTimeout)

		case <-d.stop:
			for !d.retire(key, w) {
				d.execute(key, w, <-w.tasks)
			}
			return
		}
	}
}

func (d *Dispatcher) retire(key int64, w *worker) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if w.pending > 0 {
		return false
	}
	delete(d.workers, key)
	return true
}

func (d *Dispatcher) execute(key int64, w *worker, task func()) {
	defer func() {
		d.mu.Lock()
		w.pending--
		d.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Log(context.Background(), strconv.FormatInt(key, 10), mylog.SeverityError,
				"Recovered from panic while handling event: %v\n%s", r, debug.Stack())
		}
	}()

	task()
}
