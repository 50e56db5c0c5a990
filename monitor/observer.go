package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"pinquiz/models"
	"pinquiz/store"
)

// Callbacks receive what each poll of the store turned up. OnChange
// gets the fresh snapshot whenever it differs from the last delivered
// one; OnMissing fires when the game has disappeared from the store.
// Both run on the observer's own goroutine and must not call Stop.
type Callbacks struct {
	OnChange  func(game *models.Game)
	OnMissing func()
}

// Observer gives one client an up-to-date view of one game without a
// push channel: it re-reads the game on a fixed interval and invokes
// the callbacks when something happened. A missing game is terminal;
// the observer reports it once and shuts itself down, mirroring the
// "game no longer exists" path in the player client.
type Observer struct {
	store    store.GameStore
	pin      string
	interval time.Duration
	detector ChangeDetector
	cb       Callbacks

	last      *models.Game
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stopc     chan struct{}
	done      chan struct{}
}

type Option func(*Observer)

// WithDetector swaps the change-detection strategy.
func WithDetector(d ChangeDetector) Option {
	return func(o *Observer) {
		o.detector = d
	}
}

func NewObserver(st store.GameStore, pin string, interval time.Duration, cb Callbacks, opts ...Option) *Observer {
	o := &Observer{
		store:    st,
		pin:      pin,
		interval: interval,
		detector: SnapshotDetector{},
		cb:       cb,
		stopc:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start begins polling. Calling it again is a no-op.
func (o *Observer) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		o.started.Store(true)
		go o.run(ctx)
	})
}

// Stop cancels the observer and returns once no further callback can
// fire. It is safe to call multiple times.
func (o *Observer) Stop() {
	o.stopOnce.Do(func() {
		close(o.stopc)
	})
	if o.started.Load() {
		<-o.done
	}
}

func (o *Observer) run(ctx context.Context) {
	defer close(o.done)

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		select {
		case <-o.stopc:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !o.tick(ctx) {
				return
			}
		}
	}
}

// tick polls the store once. It reports false when the observer should
// shut down.
func (o *Observer) tick(ctx context.Context) bool {
	game, err := o.store.Get(ctx, o.pin)
	if errors.Is(err, store.ErrGameNotFound) {
		if o.cb.OnMissing != nil {
			o.cb.OnMissing()
		}
		return false
	}
	if err != nil {
		log.Printf("Failed to poll game %s: %v", o.pin, err)
		return true
	}

	if o.detector.Changed(o.last, game) {
		o.last = game
		if o.cb.OnChange != nil {
			o.cb.OnChange(game)
		}
	}
	return true
}
