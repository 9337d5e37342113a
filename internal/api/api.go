// Package api is the data-access layer of the dashboard. Each audience (admin,
// end-user catalog) gets an interface; a mock strategy over the persisted mock
// store and an HTTP strategy over the two backend services implement them.
package api

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ProductDash/internal/mockstore"
	"ProductDash/internal/product"
)

type AdminAPI interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	CreateProduct(ctx context.Context, d product.Draft) (product.Product, error)
	UpdateProduct(ctx context.Context, id int64, p product.Patch) (product.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type CatalogAPI interface {
	ListProducts(ctx context.Context) ([]product.Product, error)
	LikeProduct(ctx context.Context, id int64) (product.Product, error)
}

// Pinger is implemented by every strategy and backs the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Mode string

const (
	ModeRemote Mode = "remote"
	ModeMock   Mode = "mock"
)

type Options struct {
	Mode Mode

	AdminURL   string
	CatalogURL string
	Timeout    time.Duration

	Store   *mockstore.Store
	Latency time.Duration

	Log *zap.Logger
}

// Client bundles both audiences built from the same Options.
type Client struct {
	Admin   AdminAPI
	Catalog CatalogAPI

	AdminPing   Pinger
	CatalogPing Pinger
}

func New(opts Options) (*Client, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	switch opts.Mode {
	case ModeMock:
		if opts.Store == nil {
			return nil, fmt.Errorf("mock mode needs a store")
		}
		m := NewMock(opts.Store, opts.Latency)
		return &Client{Admin: m, Catalog: m, AdminPing: m, CatalogPing: m}, nil

	case ModeRemote, "":
		admin, err := NewAdminClient(opts.AdminURL, opts.Timeout, log)
		if err != nil {
			return nil, err
		}
		catalog, err := NewCatalogClient(opts.CatalogURL, opts.Timeout, log)
		if err != nil {
			return nil, err
		}
		return &Client{Admin: admin, Catalog: catalog, AdminPing: admin, CatalogPing: catalog}, nil

	default:
		return nil, fmt.Errorf("unknown backend mode %q", opts.Mode)
	}
}
