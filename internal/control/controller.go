package control

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Applier is the slice of the selection applier the controller needs.
type Applier interface {
	Apply(ctx context.Context, application, option string) error
}

// Result reports the outcome of one applied selection event.
type Result struct {
	Application string
	Option      string

	// PriorOption is the last successfully applied option for the
	// application, "" if none. On failure the UI reverts to it.
	PriorOption string

	Err     error
	Elapsed time.Duration
}

// Snapshot is a read-only view of controller state for diagnostics.
type Snapshot struct {
	// Pending maps applications to selections waiting out the debounce.
	Pending map[string]string

	// Applied maps applications to their last successfully applied option.
	Applied map[string]string

	Applies  int
	Failures int
}

// Controller debounces and serializes selection events.
type Controller struct {
	applier  Applier
	delay    time.Duration
	log      *zap.Logger
	onResult func(Result)

	ctx    context.Context
	cancel context.CancelFunc

	applyMu sync.Mutex // serializes applies across all applications
	wg      sync.WaitGroup

	mu       sync.Mutex
	timers   map[string]*time.Timer
	pending  map[string]string
	applied  map[string]string
	applies  int
	failures int
	closed   bool
}

// New creates a Controller applying selections after the given debounce
// delay.
func New(applier Applier, delay time.Duration, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		applier: applier,
		delay:   delay,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		timers:  make(map[string]*time.Timer),
		pending: make(map[string]string),
		applied: make(map[string]string),
	}
}

// OnResult registers a callback invoked after every executed apply, success
// or failure. Must be set before the first Select.
func (c *Controller) OnResult(fn func(Result)) { c.onResult = fn }

// Select schedules a selection event. Only the last event per application
// within the debounce window is applied.
func (c *Controller) Select(application, option string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending[application] = option
	// Reset only a timer that was still waiting. A Stop that returns false
	// means the timer already fired and fire is racing for c.mu; resetting
	// it would schedule a second fire against the single wg.Add below, so
	// a fresh timer with its own accounting takes over instead. The stale
	// fire consumes the pending entry or no-ops on an empty map, either
	// way pairing its Done with its own Add.
	if t, ok := c.timers[application]; ok && t.Stop() {
		t.Reset(c.delay)
		return
	}
	c.wg.Add(1)
	c.timers[application] = time.AfterFunc(c.delay, func() { c.fire(application) })
}

// fire runs the pending selection for one application to completion.
func (c *Controller) fire(application string) {
	defer c.wg.Done()

	c.mu.Lock()
	option, ok := c.pending[application]
	delete(c.pending, application)
	delete(c.timers, application)
	prior := c.applied[application]
	closed := c.closed
	c.mu.Unlock()

	if !ok || closed {
		return
	}

	c.applyMu.Lock()
	start := time.Now()
	err := c.applier.Apply(c.ctx, application, option)
	elapsed := time.Since(start)
	c.applyMu.Unlock()

	c.mu.Lock()
	c.applies++
	if err != nil {
		c.failures++
	} else {
		c.applied[application] = option
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error("selection failed",
			zap.String("application", application),
			zap.String("option", option),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	} else {
		c.log.Debug("selection done",
			zap.String("application", application),
			zap.String("option", option),
			zap.Duration("elapsed", elapsed))
	}

	if c.onResult != nil {
		c.onResult(Result{
			Application: application,
			Option:      option,
			PriorOption: prior,
			Err:         err,
			Elapsed:     elapsed,
		})
	}
}

// Snapshot returns a copy of the controller's current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Pending:  make(map[string]string, len(c.pending)),
		Applied:  make(map[string]string, len(c.applied)),
		Applies:  c.applies,
		Failures: c.failures,
	}
	for k, v := range c.pending {
		s.Pending[k] = v
	}
	for k, v := range c.applied {
		s.Applied[k] = v
	}
	return s
}

// Close drops pending selections, cancels the in-flight apply's context and
// waits for scheduled work to finish. The controller accepts no selections
// afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	for app, t := range c.timers {
		if t.Stop() {
			c.wg.Done()
		}
		delete(c.timers, app)
	}
	c.pending = make(map[string]string)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}
