package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ProductDash/internal/api"
	"ProductDash/internal/mockstore"
	"ProductDash/internal/product"
	"ProductDash/internal/view"
	"ProductDash/internal/web"
	"ProductDash/pkg/kit"
)

type env struct {
	h       http.Handler
	store   *mockstore.Store
	catalog *view.CatalogView
}

type option func(*web.Deps, *web.HTTPDeps)

func newEnv(t *testing.T, opts ...option) env {
	t.Helper()

	st := mockstore.New(mockstore.NewMemSlot(), "")
	m := api.NewMock(st, 0)
	cv := view.NewCatalogView(view.CatalogOptions{API: m})
	require.NoError(t, cv.Refresh(context.Background()))

	deps := web.Deps{
		Mode:    api.ModeMock,
		Admin:   m,
		Catalog: cv,
		Probes:  []web.Probe{{Name: "mock store", Pinger: m}},
	}
	httpDeps := web.HTTPDeps{Service: "dashboard"}
	for _, o := range opts {
		o(&deps, &httpDeps)
	}

	h, err := web.NewHandler(deps, httpDeps)
	require.NoError(t, err)
	return env{h: h, store: st, catalog: cv}
}

func (e env) do(t *testing.T, method, target string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e env) saved(t *testing.T) []product.Product {
	t.Helper()
	ps, err := e.store.Load(context.Background())
	require.NoError(t, err)
	return ps
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthAndReady(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/healthz", nil, nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/readyz", nil, nil).Code)

	down := newEnv(t, func(d *web.Deps, _ *web.HTTPDeps) {
		d.Probes = append(d.Probes, web.Probe{Name: "catalog", Pinger: failingPinger{}})
	})
	rec := down.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body kit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "catalog not ready", body.Error)
	assert.NotEmpty(t, body.RequestID)
}

func TestHomePage(t *testing.T) {
	rec := newEnv(t).do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/catalog"`)
	assert.Contains(t, rec.Body.String(), "mock store")

	remote := newEnv(t, func(d *web.Deps, _ *web.HTTPDeps) {
		d.Mode = api.ModeRemote
		d.Backends = []web.Backend{{Name: "admin", URL: "http://localhost:8000/api/products"}}
	})
	rec = remote.do(t, http.MethodGet, "/", nil, nil)
	assert.Contains(t, rec.Body.String(), "http://localhost:8000/api/products")
}

func TestAdmin_ListAndEditForm(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wireless Bluetooth Headphones")
	assert.Contains(t, rec.Body.String(), `action="/admin/products"`)

	rec = e.do(t, http.MethodGet, "/admin?edit=2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/admin/products/2"`)
	assert.Contains(t, rec.Body.String(), `value="Smart Watch Series 5"`)
}

func TestAdmin_CreateRedirectsWithToast(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/admin/products", url.Values{
		"title": {"  Desk Lamp "},
		"image": {"https://img.test/lamp.jpg"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?success=Product+created", rec.Header().Get("Location"))

	ps := e.saved(t)
	require.Len(t, ps, 4)
	assert.Equal(t, product.Product{ID: 4, Title: "Desk Lamp", Image: "https://img.test/lamp.jpg"}, ps[3])

	rec = e.do(t, http.MethodGet, rec.Header().Get("Location"), nil, nil)
	assert.Contains(t, rec.Body.String(), `class="toast success"`)
	assert.Contains(t, rec.Body.String(), "Product created")
}

func TestAdmin_InvalidFormIsNotSaved(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/admin/products", url.Values{
		"title": {"   "},
		"image": {"https://img.test/x.jpg"},
	}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required")
	assert.Contains(t, rec.Body.String(), `value="https://img.test/x.jpg"`)

	assert.Len(t, e.saved(t), 3)
}

func TestAdmin_UpdateAndMissing(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/admin/products/1", url.Values{
		"title": {"Headphones v2"},
		"image": {"https://img.test/h.jpg"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	ps := e.saved(t)
	assert.Equal(t, "Headphones v2", ps[0].Title)
	assert.Equal(t, int64(42), ps[0].Likes, "likes survive an edit")

	rec = e.do(t, http.MethodPost, "/admin/products/99", url.Values{
		"title": {"x"},
		"image": {"y"},
	}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Product not found")

	rec = e.do(t, http.MethodPost, "/admin/products/abc", url.Values{"title": {"x"}, "image": {"y"}}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_Delete(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/admin/products/1/delete", url.Values{}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?success=Product+deleted", rec.Header().Get("Location"))
	assert.Equal(t, -1, product.Index(e.saved(t), 1))

	rec = e.do(t, http.MethodPost, "/admin/products/1/delete", url.Values{}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code, "deleting a missing product is not an error")
	assert.Len(t, e.saved(t), 2)
}

func TestCatalog_PageAndSnapshot(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/catalog", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Premium Coffee Maker")
	assert.Contains(t, rec.Body.String(), `data-poll-ms="5000"`)

	rec = e.do(t, http.MethodGet, "/catalog/products", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var st view.CatalogState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Len(t, st.Products, 3)
	assert.Empty(t, st.InFlight)
	assert.False(t, st.Loading)
}

func TestCatalog_Like(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodPost, "/catalog/products/3/like", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Product product.Product `json:"product"`
		Toast   view.Toast      `json:"toast"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(26), body.Product.Likes)
	assert.Equal(t, view.Toast{Kind: view.ToastSuccess, Message: "Product liked!"}, body.Toast)
	assert.Equal(t, int64(26), e.saved(t)[2].Likes)

	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodPost, "/catalog/products/77/like", nil, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(t, http.MethodPost, "/catalog/products/-1/like", nil, nil).Code)
}

func TestCatalog_RefreshRedirects(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.store.Save(context.Background(), []product.Product{{ID: 9, Title: "Only", Image: "i"}}))

	rec := e.do(t, http.MethodPost, "/catalog/refresh", url.Values{}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/catalog", rec.Header().Get("Location"))

	st := e.catalog.State()
	require.Len(t, st.Products, 1)
	assert.Equal(t, int64(9), st.Products[0].ID)
}

func TestCatalog_LikeRateLimited(t *testing.T) {
	e := newEnv(t, func(d *web.Deps, _ *web.HTTPDeps) {
		d.LikeLimiter = kit.NewIPRateLimiter(1, time.Minute)
	})

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/catalog/products/1/like", nil, nil).Code)

	rec := e.do(t, http.MethodPost, "/catalog/products/2/like", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, int64(38), e.saved(t)[1].Likes)
}

func TestCatalog_CORSPreflight(t *testing.T) {
	e := newEnv(t, func(d *web.Deps, _ *web.HTTPDeps) {
		d.CORSOrigins = []string{"http://shop.test"}
	})

	rec := e.do(t, http.MethodOptions, "/catalog/products/1/like", nil, map[string]string{
		"Origin":                        "http://shop.test",
		"Access-Control-Request-Method": http.MethodPost,
	})
	assert.Equal(t, "http://shop.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = e.do(t, http.MethodGet, "/catalog/products", nil, map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newEnv(t, func(_ *web.Deps, h *web.HTTPDeps) {
		h.Registry = reg
		h.MetricsEnabled = true
		h.MetricsToken = "s3cret"
	})

	e.do(t, http.MethodGet, "/admin/products/5", nil, nil)
	e.do(t, http.MethodGet, "/catalog", nil, nil)

	assert.Equal(t, http.StatusForbidden, e.do(t, http.MethodGet, "/metrics", nil, nil).Code)

	rec := e.do(t, http.MethodGet, "/metrics", nil, map[string]string{"Authorization": "Bearer s3cret"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/catalog",service="dashboard",status="200"} 1`)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) kit.ErrorResponse {
	t.Helper()
	var body kit.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCatalog_LikeFailuresCarryToast(t *testing.T) {
	e := newEnv(t, func(d *web.Deps, _ *web.HTTPDeps) {
		d.LikeLimiter = kit.NewIPRateLimiter(2, time.Minute)
	})
	ctx := context.Background()

	// Product 2 disappears on the backend after the page was rendered.
	require.NoError(t, e.store.Save(ctx, []product.Product{{ID: 1, Likes: 1}, {ID: 3, Likes: 3}}))
	require.NoError(t, e.catalog.Refresh(ctx))

	rec := e.do(t, http.MethodPost, "/catalog/products/2/like", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	require.NotNil(t, body.Toast)
	assert.Equal(t, kit.Toast{Kind: view.ToastError, Message: "Product not found"}, *body.Toast)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/catalog/products/1/like", nil, nil).Code)

	rec = e.do(t, http.MethodPost, "/catalog/products/1/like", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	body = decodeError(t, rec)
	require.NotNil(t, body.Toast)
	assert.Equal(t, view.ToastError, body.Toast.Kind)
	assert.NotEmpty(t, body.Toast.Message)
}

type blockingCatalog struct {
	release chan struct{}
	started chan struct{}
}

func (b *blockingCatalog) ListProducts(context.Context) ([]product.Product, error) {
	return []product.Product{{ID: 1, Likes: 1}}, nil
}

func (b *blockingCatalog) LikeProduct(context.Context, int64) (product.Product, error) {
	b.started <- struct{}{}
	<-b.release
	return product.Product{ID: 1, Likes: 2}, nil
}

func TestCatalog_DuplicateLikeCarriesToast(t *testing.T) {
	bc := &blockingCatalog{release: make(chan struct{}), started: make(chan struct{}, 1)}
	cv := view.NewCatalogView(view.CatalogOptions{API: bc})
	require.NoError(t, cv.Refresh(context.Background()))

	e := newEnv(t, func(d *web.Deps, _ *web.HTTPDeps) { d.Catalog = cv })

	first := make(chan int, 1)
	go func() { first <- e.do(t, http.MethodPost, "/catalog/products/1/like", nil, nil).Code }()
	<-bc.started

	rec := e.do(t, http.MethodPost, "/catalog/products/1/like", nil, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body := decodeError(t, rec)
	require.NotNil(t, body.Toast)
	assert.Equal(t, view.ToastError, body.Toast.Kind)

	close(bc.release)
	assert.Equal(t, http.StatusOK, <-first)
}

func TestCatalog_SnapshotFollowsCreatesAndDeletes(t *testing.T) {
	e := newEnv(t)

	e.do(t, http.MethodPost, "/admin/products", url.Values{"title": {"Kettle"}, "image": {"https://img.test/k.jpg"}}, nil)
	e.do(t, http.MethodPost, "/admin/products/2/delete", url.Values{}, nil)
	require.NoError(t, e.catalog.Refresh(context.Background()))

	rec := e.do(t, http.MethodGet, "/catalog/products", nil, nil)
	var st view.CatalogState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))

	ids := make([]int64, 0, len(st.Products))
	for _, p := range st.Products {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{1, 3, 4}, ids)

	page := e.do(t, http.MethodGet, "/catalog", nil, nil).Body.String()
	assert.Contains(t, page, `<template id="card-template">`, "page can build cards for products added later")
	assert.NotContains(t, page, `data-id="2"`)
}
