// internal/domain/cart/quantity_test.go
package cart

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLineWriter records store writes.
type fakeLineWriter struct {
	adds     []int
	updates  []int
	removes  int
	nextID   uint
	failNext error
}

func (f *fakeLineWriter) AddItem(payload AddItemPayload, quantity int) (uint, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return 0, err
	}
	f.adds = append(f.adds, quantity)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeLineWriter) UpdateQuantity(lineID uint, quantity int) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.updates = append(f.updates, quantity)
	return nil
}

func (f *fakeLineWriter) RemoveItem(lineID uint) error {
	f.removes++
	return nil
}

func (f *fakeLineWriter) writeCount() int {
	return len(f.adds) + len(f.updates) + f.removes
}

// manualScheduler collects scheduled callbacks and fires them on demand,
// standing in for the frame tick.
type manualScheduler struct {
	pending   []func()
	cancelled int
}

func (m *manualScheduler) Schedule(fn func()) CancelFunc {
	i := len(m.pending)
	m.pending = append(m.pending, fn)
	done := false
	return func() {
		if !done && m.pending[i] != nil {
			m.pending[i] = nil
			m.cancelled++
		}
		done = true
	}
}

// Tick fires all callbacks scheduled so far.
func (m *manualScheduler) Tick() {
	due := m.pending
	m.pending = nil
	for _, fn := range due {
		if fn != nil {
			fn()
		}
	}
}

// manualTimer collects flyout timers.
type manualTimer struct {
	callbacks []func()
	cancelled int
}

func (m *manualTimer) TimerFunc(d time.Duration, fn func()) CancelFunc {
	i := len(m.callbacks)
	m.callbacks = append(m.callbacks, fn)
	return func() {
		if m.callbacks[i] != nil {
			m.callbacks[i] = nil
			m.cancelled++
		}
	}
}

// Fire runs all timers that have not been cancelled.
func (m *manualTimer) Fire() {
	due := m.callbacks
	m.callbacks = nil
	for _, fn := range due {
		if fn != nil {
			fn()
		}
	}
}

func newTestController(store *fakeLineWriter, sched *manualScheduler, timer *manualTimer, cfg QuantityControllerConfig) *QuantityController {
	cfg.Scheduler = sched
	if timer != nil {
		cfg.Timer = timer.TimerFunc
	}
	return NewQuantityController(store, cfg)
}

func TestRequestQuantityCoalescesRapidClicks(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 7, Committed: 0})

	c.RequestQuantity(1)
	assert.Equal(t, 1, c.Quantity())
	c.RequestQuantity(2)
	assert.Equal(t, 2, c.Quantity())
	c.RequestQuantity(3)
	assert.Equal(t, 3, c.Quantity())

	// No writes before the tick, the optimistic value moved synchronously.
	require.Equal(t, 0, store.writeCount())
	assert.Equal(t, 0, c.Committed())
	assert.False(t, c.Settled())

	sched.Tick()

	require.Equal(t, []int{3}, store.updates)
	assert.Equal(t, 1, store.writeCount())
	assert.Equal(t, 3, c.Committed())
	assert.Equal(t, 0, c.PendingIncrement())
	assert.True(t, c.Settled())
}

func TestRequestQuantityImmediateAddFromZero(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	payload := &AddItemPayload{SupplierID: "sup-1", SupplierItemID: "item-1"}
	c := newTestController(store, sched, nil, QuantityControllerConfig{AddPayload: payload})

	c.RequestQuantity(2)

	// The add must not wait for the tick.
	require.Equal(t, []int{2}, store.adds)
	assert.Equal(t, 2, c.Committed())
	assert.Equal(t, uint(1), c.LineID())
	assert.True(t, c.Settled())

	// A later change goes through the batched path against the new line.
	c.RequestQuantity(5)
	assert.Equal(t, 0, store.writeCount()-len(store.adds))
	sched.Tick()
	assert.Equal(t, []int{5}, store.updates)
}

func TestRequestQuantityWithoutPayloadBatchesFromZero(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3})

	c.RequestQuantity(4)
	assert.Empty(t, store.adds)
	sched.Tick()
	assert.Equal(t, []int{4}, store.updates)
}

func TestRemoveFlushesAsRemoveItem(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 5})

	c.Remove()
	assert.Equal(t, 0, c.Quantity())
	sched.Tick()

	assert.Equal(t, 1, store.removes)
	assert.Empty(t, store.updates)
	assert.Equal(t, 0, c.Committed())
}

func TestNegativeInputClampedToZero(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 2})

	c.RequestQuantity(-7)
	assert.Equal(t, 0, c.Quantity())
	sched.Tick()
	assert.Equal(t, 1, store.removes)
}

func TestPendingIncrementBoundAndCanIncrease(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 0})

	for i := 1; i <= 25; i++ {
		c.RequestQuantity(i)
	}

	// The badge is bounded even though the target keeps following clicks.
	assert.Equal(t, 25, c.Quantity())
	assert.Equal(t, DefaultMaxIncrement, c.PendingIncrement())
	assert.False(t, c.CanIncrease())

	sched.Tick()
	assert.Equal(t, []int{25}, store.updates)
	assert.True(t, c.CanIncrease())
}

func TestOnlyOneFlushScheduledPerLine(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 1})

	c.RequestQuantity(2)
	c.RequestQuantity(3)
	c.RequestQuantity(4)

	fired := 0
	for _, fn := range sched.pending {
		if fn != nil {
			fired++
		}
	}
	assert.Equal(t, 1, fired)
}

func TestFlyoutRestartsOnIncreaseAndSelfClears(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	timer := &manualTimer{}
	c := newTestController(store, sched, timer, QuantityControllerConfig{LineID: 3, Committed: 1})

	c.RequestQuantity(3)
	assert.Equal(t, 2, c.FlyoutAmount())

	c.RequestQuantity(6)
	assert.Equal(t, 5, c.FlyoutAmount())
	assert.Equal(t, 1, timer.cancelled)

	// Decreases never start a flyout.
	c.RequestQuantity(4)
	assert.Equal(t, 5, c.FlyoutAmount())

	timer.Fire()
	assert.Equal(t, 0, c.FlyoutAmount())
}

func TestReconcileExternal(t *testing.T) {
	t.Run("matching value settles and cancels the flush", func(t *testing.T) {
		store := &fakeLineWriter{}
		sched := &manualScheduler{}
		c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 1})

		c.RequestQuantity(4)
		c.ReconcileExternal(4)

		assert.Equal(t, 4, c.Committed())
		assert.True(t, c.Settled())

		sched.Tick()
		assert.Equal(t, 0, store.writeCount())
	})

	t.Run("divergent value adopted when settled", func(t *testing.T) {
		store := &fakeLineWriter{}
		sched := &manualScheduler{}
		c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 2})

		c.ReconcileExternal(9)
		assert.Equal(t, 9, c.Quantity())
		assert.Equal(t, 9, c.Committed())
	})

	t.Run("local intent wins while in flight", func(t *testing.T) {
		store := &fakeLineWriter{}
		sched := &manualScheduler{}
		c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 2})

		c.RequestQuantity(5)
		c.ReconcileExternal(1)

		assert.Equal(t, 5, c.Quantity())
		sched.Tick()
		assert.Equal(t, []int{5}, store.updates)
	})
}

func TestCloseCancelsScheduledWork(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	timer := &manualTimer{}
	c := newTestController(store, sched, timer, QuantityControllerConfig{LineID: 3, Committed: 1})

	c.RequestQuantity(4)
	c.Close()

	sched.Tick()
	timer.Fire()

	assert.Equal(t, 0, store.writeCount())
	assert.Equal(t, 0, c.FlyoutAmount())

	// Requests after close are ignored.
	c.RequestQuantity(9)
	sched.Tick()
	assert.Equal(t, 0, store.writeCount())
}

func TestFlushErrorIsNotRetried(t *testing.T) {
	store := &fakeLineWriter{failNext: fmt.Errorf("store unavailable")}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 1})

	c.RequestQuantity(2)
	sched.Tick()

	// The write failed but the controller moves on; reconciliation is the
	// recovery path, not a retry loop.
	assert.Empty(t, store.updates)
	assert.Equal(t, 2, c.Committed())

	sched.Tick()
	assert.Equal(t, 0, store.writeCount())
}

func TestRequestSameTargetIsNoOp(t *testing.T) {
	store := &fakeLineWriter{}
	sched := &manualScheduler{}
	c := newTestController(store, sched, nil, QuantityControllerConfig{LineID: 3, Committed: 2})

	c.RequestQuantity(2)
	assert.Empty(t, sched.pending)
	sched.Tick()
	assert.Equal(t, 0, store.writeCount())
}
