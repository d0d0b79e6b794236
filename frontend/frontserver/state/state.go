// Package state holds the application-wide context shared by every page: a
// read-only store and the actions that refresh it.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"golang.org/x/sync/singleflight"
)

// Catalog is the source of the product catalogue.
type Catalog interface {
	Catalog(ctx context.Context) ([]canaima.Product, error)
}

// Store is an immutable snapshot of the shared state. A zero Store has never
// been loaded.
type Store struct {
	Products []canaima.Product
	LoadedAt time.Time
	// Err is the error of the last load. Products are kept from the last
	// successful load.
	Err error
}

// IsZero returns true if the store was never loaded.
func (s Store) IsZero() bool {
	return s.LoadedAt.IsZero() && s.Err == nil
}

// LoadTimeout bounds a single catalogue fetch. The fetch is shared by every
// waiting caller, so it does not inherit any one caller's context.
const LoadTimeout = 15 * time.Second

// Context is the goroutine-safe holder of the store.
type Context struct {
	catalog Catalog
	group   singleflight.Group

	mutex sync.RWMutex
	store Store

	now func() time.Time
}

func New(catalog Catalog) *Context {
	return &Context{
		catalog: catalog,
		now:     time.Now,
	}
}

// Store returns the current snapshot.
func (c *Context) Store() Store {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.store
}

// Stale returns true if the store was never loaded, the last load failed or it
// is older than maxAge.
func (c *Context) Stale(maxAge time.Duration) bool {
	s := c.Store()
	return s.LoadedAt.IsZero() || s.Err != nil || c.now().Sub(s.LoadedAt) > maxAge
}

// Actions returns the operations that mutate the store.
func (c *Context) Actions() Actions {
	return Actions{c}
}

// Actions mutate the store of a Context.
type Actions struct {
	c *Context
}

// LoadProducts fetches the catalogue and swaps it into the store. Concurrent
// calls share a single fetch. A caller whose ctx is done stops waiting without
// cancelling the fetch for the others.
func (a Actions) LoadProducts(ctx context.Context) error {
	ch := a.c.group.DoChan("products", func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.Background(), LoadTimeout)
		defer cancel()

		products, err := a.c.catalog.Catalog(fetchCtx)

		a.c.mutex.Lock()
		defer a.c.mutex.Unlock()

		if err != nil {
			a.c.store.Err = err
			return nil, err
		}

		a.c.store = Store{
			Products: products,
			LoadedAt: a.c.now(),
		}

		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
