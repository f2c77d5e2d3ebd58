package hotkeys

import (
	"context"
	"log"
	"runtime/debug"
	"sync"
)

const defaultQueueSize = 16

// Dispatcher runs hotkey work on a single goroutine. The OS backend delivers
// key presses from its own goroutines; posting them here keeps mapping
// switches, the cycle prompt and actions strictly sequential.
type Dispatcher struct {
	queue   chan func()
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	running bool
}

// NewDispatcher creates a dispatcher with the given queue capacity.
func NewDispatcher(size int) *Dispatcher {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Dispatcher{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Post queues fn without blocking. If the queue is full the work is dropped
// and Post returns false.
func (d *Dispatcher) Post(fn func()) bool {
	select {
	case <-d.done:
		return false
	default:
	}

	select {
	case d.queue <- fn:
		return true
	default:
		log.Printf("[HOTKEY] dispatch queue full, dropping event")
		return false
	}
}

// Wrap returns a registration callback that posts fn to the dispatcher.
func (d *Dispatcher) Wrap(fn func(args ...any)) func(args ...any) {
	return func(args ...any) {
		d.Post(func() { fn(args...) })
	}
}

// Run executes queued work until ctx is cancelled or Stop is called.
func (d *Dispatcher) Run(ctx context.Context) {
	d.mu.Lock()
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	for {
		select {
		case fn := <-d.queue:
			d.execute(fn)
		case <-ctx.Done():
			return
		case <-d.done:
			return
		}
	}
}

// Running reports whether Run is currently executing.
func (d *Dispatcher) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Stop makes Run return. Safe to call more than once.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.done)
	})
}

func (d *Dispatcher) execute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[HOTKEY] dispatched work panicked: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}
