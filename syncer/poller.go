package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/yeremiapane/table-ordering/models"
	"github.com/yeremiapane/table-ordering/services"
	"github.com/yeremiapane/table-ordering/utils"
)

// Refresh intervals of the dashboard views.
const (
	OrdersInterval        = 3 * time.Second
	RegistrationsInterval = 2 * time.Second
	SessionsInterval      = 5 * time.Second
	PerformanceInterval   = 3 * time.Second
	WaiterCallsInterval   = 2 * time.Second
	OrderDetailInterval   = 5 * time.Second
)

// View is a polled snapshot that can be switched on and off.
type View interface {
	Name() string
	Activate(ctx context.Context)
	Deactivate()
}

// Feed polls fetch every interval while active and keeps the latest result.
// Every successful fetch replaces the snapshot; nothing is merged.
type Feed[T any] struct {
	name     string
	interval time.Duration
	fetch    func(context.Context) (T, error)

	// OnUpdate, when set, receives every accepted snapshot.
	OnUpdate func(T)

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	value   T
	updated time.Time
	err     error
}

func NewFeed[T any](name string, interval time.Duration, fetch func(context.Context) (T, error)) *Feed[T] {
	return &Feed[T]{name: name, interval: interval, fetch: fetch}
}

func (f *Feed[T]) Name() string { return f.name }

// Activate starts polling, replacing any previous polling task. The first
// fetch runs immediately.
func (f *Feed[T]) Activate(ctx context.Context) {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.gen++
	gen := f.gen
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	go f.run(ctx, gen)
}

// Deactivate stops polling. A fetch already in flight is discarded when it
// completes.
func (f *Feed[T]) Deactivate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
}

func (f *Feed[T]) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

func (f *Feed[T]) run(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.tick(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.tick(ctx, gen)
		}
	}
}

func (f *Feed[T]) tick(ctx context.Context, gen uint64) {
	value, err := f.fetch(ctx)

	f.mu.Lock()
	if f.gen != gen {
		f.mu.Unlock()
		return
	}
	if err != nil {
		f.err = err
		f.mu.Unlock()
		if ctx.Err() == nil {
			utils.ErrorLogger.Warnf("Refreshing %s: %v", f.name, err)
		}
		return
	}
	f.value = value
	f.updated = time.Now()
	f.err = nil
	onUpdate := f.OnUpdate
	f.mu.Unlock()

	if onUpdate != nil {
		onUpdate(value)
	}
}

// Snapshot returns the latest value, when it was fetched, and the error of
// the most recent failed fetch since then.
func (f *Feed[T]) Snapshot() (T, time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.updated, f.err
}

// Poller owns a set of named views.
type Poller struct {
	mu    sync.Mutex
	views map[string]View
}

func NewPoller(views ...View) *Poller {
	p := &Poller{views: make(map[string]View)}
	for _, v := range views {
		p.views[v.Name()] = v
	}
	return p
}

func (p *Poller) Add(v View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views[v.Name()] = v
}

func (p *Poller) View(name string) (View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.views[name]
	return v, ok
}

// Activate starts the named view. It reports false for unknown names.
func (p *Poller) Activate(ctx context.Context, name string) bool {
	v, ok := p.View(name)
	if ok {
		v.Activate(ctx)
	}
	return ok
}

func (p *Poller) Deactivate(name string) {
	if v, ok := p.View(name); ok {
		v.Deactivate()
	}
}

// Stop deactivates every view.
func (p *Poller) Stop() {
	p.mu.Lock()
	views := make([]View, 0, len(p.views))
	for _, v := range p.views {
		views = append(views, v)
	}
	p.mu.Unlock()

	for _, v := range views {
		v.Deactivate()
	}
}

// Views over the API, one per dashboard screen.

func OrdersFeed(c *Client) *Feed[[]models.Order] {
	return NewFeed("orders", OrdersInterval, c.ActiveOrders)
}

func MyOrdersFeed(c *Client) *Feed[[]models.Order] {
	return NewFeed("my_orders", OrdersInterval, c.MyOrders)
}

func RegistrationsFeed(c *Client) *Feed[[]models.User] {
	return NewFeed("registrations", RegistrationsInterval, c.PendingRegistrations)
}

func SessionsFeed(c *Client) *Feed[[]models.ActiveSession] {
	return NewFeed("sessions", SessionsInterval, c.Sessions)
}

func PerformanceFeed(c *Client) *Feed[[]services.EmployeePerformance] {
	return NewFeed("performance", PerformanceInterval, c.Performance)
}

func WaiterCallsFeed(c *Client) *Feed[[]models.WaiterCall] {
	return NewFeed("waiter_calls", WaiterCallsInterval, c.PendingCalls)
}

func OrderDetailFeed(c *Client, orderID string) *Feed[*models.Order] {
	return NewFeed("order:"+orderID, OrderDetailInterval, func(ctx context.Context) (*models.Order, error) {
		return c.Order(ctx, orderID)
	})
}
