package view

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"ProductDash/internal/api"
	"ProductDash/internal/product"
)

// Form is the shared create/edit form. ID zero means create.
type Form struct {
	ID    int64
	Title string
	Image string
}

func (f Form) Draft() product.Draft {
	return product.Draft{Title: f.Title, Image: f.Image}.Normalize()
}

type AdminState struct {
	Products []product.Product
	Loading  bool
	Error    string
}

// AdminView backs the admin page. Every successful mutation is followed by a
// full reload rather than a local patch.
type AdminView struct {
	api     api.AdminAPI
	notify  Notifier
	metrics *Metrics
	log     *zap.Logger

	mu       sync.Mutex
	products []product.Product
	loading  bool
	errMsg   string
}

func NewAdminView(a api.AdminAPI, n Notifier, m *Metrics, log *zap.Logger) *AdminView {
	if n == nil {
		n = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminView{api: a, notify: n, metrics: m, log: log, loading: true}
}

func (v *AdminView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	products, err := v.api.ListProducts(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false

	if err != nil {
		v.errMsg = api.Message(err)
		v.metrics.load("admin", outcomeError)
		v.log.Warn("admin load failed", zap.Error(err))
		return err
	}

	v.products = products
	v.errMsg = ""
	v.metrics.load("admin", outcomeOK)
	return nil
}

// Submit validates the form and creates or updates the product. An invalid
// form returns a *product.ValidationError and never reaches the backend.
func (v *AdminView) Submit(ctx context.Context, f Form) (product.Product, error) {
	d := f.Draft()
	if err := d.Validate(); err != nil {
		return product.Product{}, err
	}

	var (
		p   product.Product
		err error
		msg string
	)
	if f.ID == 0 {
		p, err = v.api.CreateProduct(ctx, d)
		msg = "Product created"
	} else {
		p, err = v.api.UpdateProduct(ctx, f.ID, product.Patch{Title: &d.Title, Image: &d.Image})
		msg = "Product updated"
	}
	if err != nil {
		v.log.Warn("save product failed", zap.Int64("product_id", f.ID), zap.Error(err))
		v.notify.Error(api.Message(err))
		return product.Product{}, err
	}

	v.notify.Success(msg)
	_ = v.Load(ctx)
	return p, nil
}

func (v *AdminView) Delete(ctx context.Context, id int64) error {
	if err := v.api.DeleteProduct(ctx, id); err != nil {
		v.log.Warn("delete product failed", zap.Int64("product_id", id), zap.Error(err))
		v.notify.Error("Failed to delete product: " + api.Message(err))
		return err
	}

	v.notify.Success("Product deleted")
	_ = v.Load(ctx)
	return nil
}

func (v *AdminView) State() AdminState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return AdminState{
		Products: product.Clone(v.products),
		Loading:  v.loading,
		Error:    v.errMsg,
	}
}
