// Package terminal keeps one checkout flow per signed-in session.
package terminal

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/caja-pos/internal/cart"
	"github.com/MikeMC777/caja-pos/internal/checkout"
)

// Persister stores cart snapshots so a session's cart outlives the process.
// Load returns (nil, nil) when nothing is stored for the token.
type Persister interface {
	Load(ctx context.Context, token string) (*cart.Cart, error)
	Save(ctx context.Context, token string, c *cart.Cart) error
	Delete(ctx context.Context, token string) error
}

// DefaultIdleTimeout matches the default session lifetime.
const DefaultIdleTimeout = 12 * time.Hour

type entry struct {
	flow     *checkout.Flow
	lastUsed time.Time
}

type Registry struct {
	mu      sync.Mutex
	flows   map[string]*entry
	store   checkout.OrderWriter
	persist Persister
	logger  *zap.Logger
	idle    time.Duration
	now     func() time.Time
}

type Option func(*Registry)

// WithIdleTimeout sets how long an unused flow is kept in memory. A flow
// unused for longer than the session lifetime belongs to an expired session.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.idle = d
		}
	}
}

// NewRegistry builds a registry. persist may be nil for memory-only carts.
func NewRegistry(store checkout.OrderWriter, persist Persister, logger *zap.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		flows:   make(map[string]*entry),
		store:   store,
		persist: persist,
		logger:  logger,
		idle:    DefaultIdleTimeout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Flow returns the session's flow, creating it (and restoring a persisted
// cart) on first use. Creating a flow also evicts idle ones.
func (r *Registry) Flow(ctx context.Context, token string) *checkout.Flow {
	if f := r.lookup(token); f != nil {
		return f
	}

	var restored *cart.Cart
	var opts []checkout.Option
	if r.persist != nil {
		c, err := r.persist.Load(ctx, token)
		if err != nil {
			r.logger.Warn("cart restore failed", zap.Error(err))
		}
		restored = c
		opts = append(opts, checkout.WithCartObserver(r.saver(token)))
	}
	f := checkout.New(r.store, restored, opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if e, ok := r.flows[token]; ok {
		e.lastUsed = now
		return e.flow
	}
	r.evictLocked(now)
	r.flows[token] = &entry{flow: f, lastUsed: now}
	return f
}

func (r *Registry) lookup(token string) *checkout.Flow {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.flows[token]
	if !ok {
		return nil
	}
	e.lastUsed = r.now()
	return e.flow
}

// evictLocked drops flows idle for longer than r.idle. Their persisted
// carts are left to expire with the session.
func (r *Registry) evictLocked(now time.Time) {
	for token, e := range r.flows {
		if now.Sub(e.lastUsed) <= r.idle || e.flow.Busy() {
			continue
		}
		delete(r.flows, token)
		r.logger.Debug("idle flow evicted", zap.Duration("idle", now.Sub(e.lastUsed)))
	}
}

func (r *Registry) saver(token string) func(*cart.Cart) {
	return func(c *cart.Cart) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		var err error
		if c.IsEmpty() {
			err = r.persist.Delete(ctx, token)
		} else {
			err = r.persist.Save(ctx, token, c)
		}
		if err != nil {
			r.logger.Warn("cart persist failed", zap.Error(err))
		}
	}
}

// Drop forgets the session's flow and its persisted cart.
func (r *Registry) Drop(ctx context.Context, token string) {
	r.mu.Lock()
	delete(r.flows, token)
	r.mu.Unlock()

	if r.persist != nil {
		if err := r.persist.Delete(ctx, token); err != nil {
			r.logger.Warn("cart delete failed", zap.Error(err))
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}
