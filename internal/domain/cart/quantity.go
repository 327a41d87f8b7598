// internal/domain/cart/quantity.go
package cart

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// LineWriter is the slice of the cart store the quantity controller writes
// through. *Service implements it.
type LineWriter interface {
	AddItem(payload AddItemPayload, quantity int) (uint, error)
	UpdateQuantity(lineID uint, quantity int) error
	RemoveItem(lineID uint) error
}

// CancelFunc cancels a scheduled callback that has not fired yet.
type CancelFunc func()

// FrameScheduler defers a callback to the next tick. The controller
// schedules at most one flush per tick; which primitive backs the tick is
// an implementation choice, the contract is only "coalesce until next tick".
type FrameScheduler interface {
	Schedule(fn func()) CancelFunc
}

// TimerScheduler is the production FrameScheduler, ticking on a short timer.
type TimerScheduler struct {
	Interval time.Duration
}

// Schedule runs fn after one frame interval unless cancelled first.
func (s TimerScheduler) Schedule(fn func()) CancelFunc {
	interval := s.Interval
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	t := time.AfterFunc(interval, fn)
	return func() { t.Stop() }
}

// TimerFunc starts a one-shot timer; used for the flyout indicator.
type TimerFunc func(d time.Duration, fn func()) CancelFunc

func afterFunc(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

const (
	// DefaultMaxIncrement bounds how far the displayed "+N" badge may run
	// ahead of the committed quantity.
	DefaultMaxIncrement = 10

	// DefaultFlyoutDuration is how long the flyout indicator stays visible.
	DefaultFlyoutDuration = 800 * time.Millisecond
)

// QuantityControllerConfig configures a controller for one cart line.
type QuantityControllerConfig struct {
	LineID         uint            // 0 when the line is not in the cart yet
	Committed      int             // last quantity acknowledged by the store
	AddPayload     *AddItemPayload // enables the immediate add-to-cart path from zero
	Scheduler      FrameScheduler  // defaults to TimerScheduler
	Timer          TimerFunc       // defaults to time.AfterFunc
	FlyoutDuration time.Duration   // defaults to DefaultFlyoutDuration
	MaxIncrement   int             // defaults to DefaultMaxIncrement
	Logger         *logrus.Logger  // defaults to logrus.StandardLogger
}

// QuantityController absorbs rapid quantity changes on a single cart line.
// It keeps an optimistic target the UI reads immediately and coalesces
// writes to the store into at most one flush per tick. It never returns
// errors; invalid input is clamped and store failures are only logged.
type QuantityController struct {
	mu    sync.Mutex
	store LineWriter
	log   *logrus.Entry

	sched          FrameScheduler
	timer          TimerFunc
	flyoutDuration time.Duration
	maxIncrement   int
	addPayload     *AddItemPayload

	lineID           uint
	committed        int
	target           int
	pendingIncrement int
	flyoutAmount     int

	flushCancel  CancelFunc // non-nil while a flush is scheduled
	flyoutCancel CancelFunc
	closed       bool
}

// NewQuantityController creates a controller writing through the given store.
func NewQuantityController(store LineWriter, cfg QuantityControllerConfig) *QuantityController {
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	if cfg.Timer == nil {
		cfg.Timer = afterFunc
	}
	if cfg.FlyoutDuration <= 0 {
		cfg.FlyoutDuration = DefaultFlyoutDuration
	}
	if cfg.MaxIncrement <= 0 {
		cfg.MaxIncrement = DefaultMaxIncrement
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Committed < 0 {
		cfg.Committed = 0
	}

	return &QuantityController{
		store:          store,
		log:            cfg.Logger.WithField("component", "quantity_controller"),
		sched:          cfg.Scheduler,
		timer:          cfg.Timer,
		flyoutDuration: cfg.FlyoutDuration,
		maxIncrement:   cfg.MaxIncrement,
		addPayload:     cfg.AddPayload,
		lineID:         cfg.LineID,
		committed:      cfg.Committed,
		target:         cfg.Committed,
	}
}

// RequestQuantity sets the requested quantity for the line. The displayed
// quantity updates synchronously; the store write is batched, except for
// the first add from zero which happens immediately so the store never
// holds a zero-quantity ghost line.
func (c *QuantityController) RequestQuantity(next int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if next < 0 {
		next = 0
	}
	if next == c.target {
		return
	}

	increase := next > c.target
	c.target = next
	c.pendingIncrement = clampInt(next-c.committed, -c.maxIncrement, c.maxIncrement)

	if increase && c.pendingIncrement > 0 {
		c.restartFlyoutLocked(c.pendingIncrement)
	}

	// First add from zero writes through immediately so the backend cart
	// never sees a zero-quantity line.
	if c.committed == 0 && next > 0 && c.addPayload != nil {
		lineID, err := c.store.AddItem(*c.addPayload, next)
		if err != nil {
			c.log.WithError(err).WithField("quantity", next).Warn("immediate add to cart failed")
		} else {
			c.lineID = lineID
		}
		c.committed = next
		c.pendingIncrement = 0
		c.cancelFlushLocked()
		return
	}

	if c.flushCancel == nil {
		c.flushCancel = c.sched.Schedule(c.flush)
	}
}

// Remove requests removal of the line.
func (c *QuantityController) Remove() {
	c.RequestQuantity(0)
}

// ReconcileExternal absorbs an authoritative quantity change that did not
// originate from this controller. A matching value is adopted, a divergent
// value becomes the new baseline only when no local update is in flight;
// local intent wins until the flush completes.
func (c *QuantityController) ReconcileExternal(quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if quantity < 0 {
		quantity = 0
	}

	switch {
	case quantity == c.target:
		// The store already holds what we wanted; any scheduled flush
		// would be a redundant write.
		c.committed = c.target
		c.pendingIncrement = 0
		c.cancelFlushLocked()
	case c.target == c.committed:
		c.committed = quantity
		c.target = quantity
	default:
		// In flight: keep the user's target.
	}
}

// Quantity returns the optimistic quantity the UI should display.
func (c *QuantityController) Quantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Committed returns the last quantity acknowledged by the store.
func (c *QuantityController) Committed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed
}

// PendingIncrement returns the bounded divergence shown as a "+N" badge.
func (c *QuantityController) PendingIncrement() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingIncrement
}

// FlyoutAmount returns the current flyout indicator size, 0 when hidden.
func (c *QuantityController) FlyoutAmount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flyoutAmount
}

// CanIncrease reports whether another increment click should be accepted.
func (c *QuantityController) CanIncrease() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingIncrement < c.maxIncrement
}

// Settled reports whether the store has caught up with the target.
func (c *QuantityController) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target == c.committed
}

// LineID returns the store line id, 0 while the line is not in the cart.
func (c *QuantityController) LineID() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lineID
}

// Close cancels any scheduled flush and the flyout timer. No writes happen
// after Close returns.
func (c *QuantityController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.cancelFlushLocked()
	if c.flyoutCancel != nil {
		c.flyoutCancel()
		c.flyoutCancel = nil
	}
	c.flyoutAmount = 0
}

// flush writes the shared target to the store. Rapid requests before the
// tick land here exactly once with the latest target.
func (c *QuantityController) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.flushCancel = nil

	if c.target == c.committed {
		c.pendingIncrement = 0
		return
	}

	var err error
	if c.target > 0 {
		err = c.store.UpdateQuantity(c.lineID, c.target)
	} else {
		err = c.store.RemoveItem(c.lineID)
	}
	if err != nil {
		// Not retried; the store read path or external reconciliation
		// restores truth if the write was lost.
		c.log.WithError(err).WithFields(logrus.Fields{
			"line_id":  c.lineID,
			"quantity": c.target,
		}).Warn("cart quantity flush failed")
	}

	c.committed = c.target
	c.pendingIncrement = 0
}

func (c *QuantityController) restartFlyoutLocked(amount int) {
	if c.flyoutCancel != nil {
		c.flyoutCancel()
	}
	c.flyoutAmount = amount
	c.flyoutCancel = c.timer(c.flyoutDuration, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.flyoutAmount = 0
		c.flyoutCancel = nil
	})
}

func (c *QuantityController) cancelFlushLocked() {
	if c.flushCancel != nil {
		c.flushCancel()
		c.flushCancel = nil
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
