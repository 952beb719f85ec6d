package geoloc

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spec-kit/attendance-agent/internal/events"
	"github.com/spec-kit/attendance-agent/internal/geo"
)

// ErrAlreadyWatching is returned when Start is called on a watcher that
// already holds a live subscription.
var ErrAlreadyWatching = errors.New("geoloc: watcher already has an active subscription")

// State models the watcher lifecycle.
type State int32

const (
	StateIdle State = iota
	StateWatching
	StateStopped
)

// Watcher consumes a position source and derives geofence eligibility from
// each fix. Fixes are applied in arrival order by a single consumer
// goroutine; the latest fix wins.
type Watcher struct {
	src        Source
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu       sync.Mutex
	state    State
	eligible atomic.Bool
}

// NewWatcher builds a watcher. The dispatcher may be nil.
func NewWatcher(src Source, dispatcher events.Dispatcher, logger *zap.Logger) *Watcher {
	return &Watcher{src: src, dispatcher: dispatcher, logger: logger}
}

// Subscription is the cancel handle for an active watch. Stop is idempotent
// and waits for the consumer goroutine to finish, so no eligibility update is
// delivered after it returns.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop releases the underlying position stream.
func (s *Subscription) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Done is closed when the watch loop has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Start begins watching and invokes onChange whenever eligibility flips.
// Eligibility starts out false and keeps its last value across source errors
// and stream exhaustion. Only one subscription may be live at a time.
func (w *Watcher) Start(onChange func(eligible bool)) (*Subscription, error) {
	w.mu.Lock()
	if w.state == StateWatching {
		w.mu.Unlock()
		return nil, ErrAlreadyWatching
	}
	w.state = StateWatching
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	fixes, err := w.src.Watch(ctx)
	if err != nil {
		cancel()
		w.setState(StateIdle)
		return nil, err
	}

	sub := &Subscription{cancel: cancel, done: make(chan struct{})}
	go w.run(ctx, fixes, onChange, sub.done)
	return sub, nil
}

// Eligible reads the latest derived eligibility.
func (w *Watcher) Eligible() bool {
	return w.eligible.Load()
}

// CurrentState reports the lifecycle state.
func (w *Watcher) CurrentState() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) run(ctx context.Context, fixes <-chan Fix, onChange func(bool), done chan struct{}) {
	defer close(done)
	defer w.setState(StateStopped)

	for {
		select {
		case <-ctx.Done():
			return
		case fix, ok := <-fixes:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				// cancelled while a fix was in flight; discard it
				return
			}
			w.apply(ctx, fix, onChange)
		}
	}
}

func (w *Watcher) apply(ctx context.Context, fix Fix, onChange func(bool)) {
	distance := geo.Distance(fix.Latitude, fix.Longitude, geo.ReferenceLatitude, geo.ReferenceLongitude)
	next := distance < geo.RadiusMeters

	prev := w.eligible.Swap(next)
	w.logger.Debug("position fix",
		zap.Float64("latitude", fix.Latitude),
		zap.Float64("longitude", fix.Longitude),
		zap.Float64("distance_meters", distance),
		zap.Bool("eligible", next))

	if prev == next {
		return
	}
	if onChange != nil {
		onChange(next)
	}
	if w.dispatcher != nil {
		_ = w.dispatcher.Publish(ctx, events.New(events.EventEligibilityChanged,
			events.EligibilityChangedPayload{Eligible: next, DistanceMeters: distance}))
	}
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}
