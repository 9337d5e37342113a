package mockstore

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"ProductDash/internal/product"
)

// DefaultKey is the slot the product collection lives under.
const DefaultKey = "products_data"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Slot is a persistent key-value cell. Values are replaced wholesale.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Store keeps the whole product collection as one JSON array in a slot.
type Store struct {
	slot Slot
	key  string
}

func New(slot Slot, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{slot: slot, key: key}
}

// Load returns the stored collection, or the seed set when nothing was saved
// yet. The seed is not written back; the first Save persists it.
func (s *Store) Load(ctx context.Context) ([]product.Product, error) {
	raw, ok, err := s.slot.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.key, err)
	}
	if !ok {
		return Seed(), nil
	}

	var out []product.Product
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.key, err)
	}
	if out == nil {
		out = []product.Product{}
	}
	return out, nil
}

// Save overwrites the stored collection.
func (s *Store) Save(ctx context.Context, products []product.Product) error {
	if products == nil {
		products = []product.Product{}
	}

	raw, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if err := s.slot.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.slot.Ping(ctx) }

func (s *Store) Close() error { return s.slot.Close() }

func Seed() []product.Product {
	return []product.Product{
		{
			ID:    1,
			Title: "Wireless Bluetooth Headphones",
			Image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500",
			Likes: 42,
		},
		{
			ID:    2,
			Title: "Smart Watch Series 5",
			Image: "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500",
			Likes: 38,
		},
		{
			ID:    3,
			Title: "Premium Coffee Maker",
			Image: "https://images.unsplash.com/photo-1517668808822-9ebb02f2a0e6?w=500",
			Likes: 25,
		},
	}
}
