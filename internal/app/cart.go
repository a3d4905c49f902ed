package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/jaakkos/storefront/internal/domain"
)

// CartStore owns the cart aggregate. Mutations never fail: when persistence is
// enabled a failed write is logged and kept in LastPersistError, and the
// in-memory change stands.
type CartStore struct {
	store  KeyValueStore // nil disables persistence
	logger *log.Logger
	opts   options

	pubMu      sync.Mutex
	mu         sync.Mutex
	cart       *domain.Cart
	persistErr error

	subs subscribers[*domain.Cart]
}

// NewCartStore returns an empty cart. Pass a nil store to keep the cart in memory only.
func NewCartStore(store KeyValueStore, logger *log.Logger, opts ...Option) *CartStore {
	return &CartStore{
		store:  store,
		logger: logger,
		opts:   applyOptions(opts),
		cart:   domain.NewCart(),
	}
}

// Subscribe registers fn to run after every committed mutation. fn receives a
// copy of the cart and must not mutate the store synchronously.
func (c *CartStore) Subscribe(fn func(*domain.Cart)) (unsubscribe func()) {
	return c.subs.add(fn)
}

// Reset empties the cart in memory and drops all listeners. Storage is untouched.
func (c *CartStore) Reset() {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	c.cart = domain.NewCart()
	c.persistErr = nil
	c.mu.Unlock()
	c.subs.reset()
}

// Add puts one unit of p into the cart. Products with a negative price are ignored.
func (c *CartStore) Add(p domain.Product) {
	c.mutate(func(cart *domain.Cart) bool {
		return cart.Add(p)
	})
}

// Remove drops the whole line for productID. Unknown ids are ignored.
func (c *CartStore) Remove(productID int) {
	c.mutate(func(cart *domain.Cart) bool {
		return cart.Remove(productID)
	})
}

// Clear empties the cart.
func (c *CartStore) Clear() {
	c.mutate(func(cart *domain.Cart) bool {
		cart.Clear()
		return true
	})
}

// Checkout ends the shopping flow. No order is submitted; the cart is cleared
// exactly like Clear. It returns the cart as it was just before clearing.
func (c *CartStore) Checkout() *domain.Cart {
	var done *domain.Cart
	c.mutate(func(cart *domain.Cart) bool {
		done = cart.Clone()
		cart.Clear()
		return true
	})
	logf(c.logger, "Checkout: %d unit(s), total %s", done.Count(), domain.FormatAmount(done.Total()))
	return done
}

// Snapshot returns a copy of the whole cart taken under one lock, so lines,
// count and total read from it always agree.
func (c *CartStore) Snapshot() *domain.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Clone()
}

// Items returns a copy of the cart lines in insertion order.
func (c *CartStore) Items() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Clone().Lines
}

// Total returns Σ unit price × quantity over the current lines.
func (c *CartStore) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Total()
}

// FormattedTotal returns Total with two decimals.
func (c *CartStore) FormattedTotal() string {
	return domain.FormatAmount(c.Total())
}

// Count returns the number of units in the cart.
func (c *CartStore) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.Count()
}

// LastPersistError returns the error of the most recent durable write, or nil.
func (c *CartStore) LastPersistError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistErr
}

// Restore loads the persisted cart. Read or decode failures are logged and the
// cart stays as it is.
func (c *CartStore) Restore(ctx context.Context) {
	if c.store == nil {
		return
	}
	raw, ok, err := c.store.Get(ctx, CartKey)
	if err != nil {
		logf(c.logger, "Warning: cart read failed: %v", err)
		return
	}
	loaded := domain.NewCart()
	if ok {
		if err := json.Unmarshal([]byte(raw), loaded); err != nil {
			logf(c.logger, "Warning: cart decode failed: %v (starting empty)", err)
			loaded = domain.NewCart()
		}
		loaded.Normalize()
	}

	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	c.cart = loaded
	snap := loaded.Clone()
	c.mu.Unlock()
	c.subs.publish(snap)
}

// mutate applies fn to the cart, persists and publishes when fn reports a change.
func (c *CartStore) mutate(fn func(*domain.Cart) bool) {
	c.pubMu.Lock()
	defer c.pubMu.Unlock()
	c.mu.Lock()
	changed := fn(c.cart)
	snap := c.cart.Clone()
	c.mu.Unlock()
	if !changed {
		return
	}
	c.persist(snap)
	c.subs.publish(snap)
}

func (c *CartStore) persist(cart *domain.Cart) {
	if c.store == nil {
		return
	}
	err := c.write(cart)
	if err != nil {
		logf(c.logger, "Warning: cart persist failed: %v", err)
	} else if terr := TouchNotifySignal(c.opts.signalPath); terr != nil {
		logf(c.logger, "Warning: touch notify signal: %v", terr)
	}
	c.mu.Lock()
	c.persistErr = err
	c.mu.Unlock()
}

func (c *CartStore) write(cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.store.Set(context.Background(), CartKey, string(data)); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
