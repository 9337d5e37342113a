package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ProductDash/internal/mockstore"
	"ProductDash/internal/product"
)

// Mock answers both audiences from the persisted mock store. Every mutation
// loads the full collection, changes it and writes it back whole.
type Mock struct {
	mu      sync.Mutex
	store   *mockstore.Store
	latency time.Duration
}

func NewMock(store *mockstore.Store, latency time.Duration) *Mock {
	return &Mock{store: store, latency: latency}
}

func (m *Mock) Ping(ctx context.Context) error { return m.store.Ping(ctx) }

func (m *Mock) ListProducts(ctx context.Context) ([]product.Product, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.Load(ctx)
}

func (m *Mock) CreateProduct(ctx context.Context, d product.Draft) (product.Product, error) {
	if err := m.wait(ctx); err != nil {
		return product.Product{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.store.Load(ctx)
	if err != nil {
		return product.Product{}, err
	}

	p := product.Product{
		ID:    product.NextID(products),
		Title: d.Title,
		Image: d.Image,
	}
	if err := m.store.Save(ctx, append(products, p)); err != nil {
		return product.Product{}, fmt.Errorf("%w: %v", product.ErrNotSaved, err)
	}
	return p, nil
}

func (m *Mock) UpdateProduct(ctx context.Context, id int64, patch product.Patch) (product.Product, error) {
	return m.mutate(ctx, id, patch.Apply)
}

func (m *Mock) LikeProduct(ctx context.Context, id int64) (product.Product, error) {
	return m.mutate(ctx, id, func(p product.Product) product.Product {
		p.Likes++
		return p
	})
}

// DeleteProduct is a no-op for an unknown id; nothing is written then.
func (m *Mock) DeleteProduct(ctx context.Context, id int64) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.store.Load(ctx)
	if err != nil {
		return err
	}

	i := product.Index(products, id)
	if i < 0 {
		return nil
	}

	kept := append(products[:i:i], products[i+1:]...)
	if err := m.store.Save(ctx, kept); err != nil {
		return fmt.Errorf("%w: %v", product.ErrNotSaved, err)
	}
	return nil
}

func (m *Mock) mutate(ctx context.Context, id int64, fn func(product.Product) product.Product) (product.Product, error) {
	if err := m.wait(ctx); err != nil {
		return product.Product{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	products, err := m.store.Load(ctx)
	if err != nil {
		return product.Product{}, err
	}

	i := product.Index(products, id)
	if i < 0 {
		return product.Product{}, product.ErrNotFound
	}

	products[i] = fn(products[i])
	if err := m.store.Save(ctx, products); err != nil {
		return product.Product{}, fmt.Errorf("%w: %v", product.ErrNotSaved, err)
	}
	return products[i], nil
}

func (m *Mock) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(m.latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
