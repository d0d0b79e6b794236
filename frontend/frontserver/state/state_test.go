package state

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cafecanaima/canaima/canaima"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

type mockCatalog struct {
	calls    uint32
	products []canaima.Product
	err      error
	wait     chan struct{}
}

func (m *mockCatalog) Catalog(ctx context.Context) ([]canaima.Product, error) {
	atomic.AddUint32(&m.calls, 1)
	if m.wait != nil {
		select {
		case <-m.wait:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.products, m.err
}

var testProducts = []canaima.Product{
	{ID: 1, Name: "Arepa", Price: 2.5},
	{ID: 2, Name: "Cachapa", Price: 3},
}

func TestLoadProducts(t *testing.T) {
	c := New(&mockCatalog{products: testProducts})

	if !c.Store().IsZero() {
		t.Fatal("New store is not zero")
	}
	if !c.Stale(time.Hour) {
		t.Fatal("Unloaded store is not stale")
	}

	if err := c.Actions().LoadProducts(context.Background()); err != nil {
		t.Fatal("Failed to load:", err)
	}

	if diff := deep.Equal(testProducts, c.Store().Products); diff != nil {
		t.Fatal("Products mismatch:", diff)
	}

	if c.Stale(time.Hour) {
		t.Fatal("Fresh store is stale")
	}

	c.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if !c.Stale(time.Hour) {
		t.Fatal("Old store is not stale")
	}
}

func TestLoadProductsError(t *testing.T) {
	m := &mockCatalog{products: testProducts}
	c := New(m)

	if err := c.Actions().LoadProducts(context.Background()); err != nil {
		t.Fatal("Failed to load:", err)
	}

	m.err = errors.New("database is on fire")

	if err := c.Actions().LoadProducts(context.Background()); !errors.Is(err, m.err) {
		t.Fatal("Unexpected error:", err)
	}

	s := c.Store()

	if !errors.Is(s.Err, m.err) {
		t.Fatal("Store is missing the error:", s.Err)
	}

	// The last good catalogue is kept.
	if diff := deep.Equal(testProducts, s.Products); diff != nil {
		t.Fatal("Products mismatch:", diff)
	}

	if !c.Stale(time.Hour) {
		t.Fatal("Failed store is not stale")
	}
}

func TestLoadProductsCollapse(t *testing.T) {
	m := &mockCatalog{products: testProducts, wait: make(chan struct{})}
	c := New(m)

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Actions().LoadProducts(context.Background()); err != nil {
				t.Error("Failed to load:", err)
			}
		}()
	}

	// Wait for the first fetch to start before releasing it.
	for atomic.LoadUint32(&m.calls) == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(10 * time.Millisecond)
	close(m.wait)

	wg.Wait()

	// Late goroutines may start a second fetch after the first one returned,
	// but never one each while the first is in flight.
	if calls := atomic.LoadUint32(&m.calls); calls == 0 || calls == 8 {
		t.Fatal("Fetches were not collapsed:", calls)
	}
}

func TestLoadProductsCallerCancel(t *testing.T) {
	m := &mockCatalog{products: testProducts, wait: make(chan struct{})}
	c := New(m)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() { first <- c.Actions().LoadProducts(ctx) }()

	for atomic.LoadUint32(&m.calls) == 0 {
		time.Sleep(time.Millisecond)
	}

	second := make(chan error, 1)
	go func() { second <- c.Actions().LoadProducts(context.Background()) }()
	time.Sleep(10 * time.Millisecond)

	// The first visitor leaves while the fetch is still running.
	cancel()

	if err := <-first; !errors.Is(err, context.Canceled) {
		t.Fatal("Unexpected error for the cancelled caller:", err)
	}

	close(m.wait)

	if err := <-second; err != nil {
		t.Fatal("Cancelled caller broke the shared fetch:", err)
	}

	s := c.Store()
	if s.Err != nil {
		t.Fatal("Store recorded an error:", s.Err)
	}
	if diff := deep.Equal(testProducts, s.Products); diff != nil {
		t.Fatal("Products mismatch:", diff)
	}
}
