package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductDash/internal/product"
)

const (
	defaultTimeout = 5 * time.Second
	maxErrorBody   = 64 << 10
)

// httpClient is the transport shared by both audience clients. baseURL is the
// products collection, e.g. http://localhost:8000/api/products.
type httpClient struct {
	baseURL string
	service string
	port    string
	client  *http.Client
	log     *zap.Logger
}

func newHTTPClient(service, baseURL string, timeout time.Duration, log *zap.Logger) (*httpClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("bad %s api url %q", service, baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		service: service,
		port:    portOf(u),
		client:  &http.Client{Timeout: timeout},
		log:     log.With(zap.String("backend", service)),
	}, nil
}

func portOf(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	if u.Scheme == "https" {
		return "443"
	}
	return "80"
}

func (c *httpClient) url(parts ...any) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(fmt.Sprint(p)))
	}
	return b.String()
}

// do sends one JSON request. Transport failures become *Unreachable and
// non-2xx answers become *RequestFailed carrying the raw body.
func (c *httpClient) do(ctx context.Context, method, target string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID(ctx))

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("backend unreachable",
			zap.String("method", method),
			zap.String("url", target),
			zap.Error(err),
		)
		return &Unreachable{Service: c.service, Port: c.port, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("backend call",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("backend error response",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw),
		)
		return &RequestFailed{Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.service, err)
	}
	return nil
}

func (c *httpClient) list(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []product.Product{}
	}
	return out, nil
}

// Ping checks the collection answers with a 2xx.
func (c *httpClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.baseURL, nil, nil)
}

func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

// AdminClient talks to the admin service.
type AdminClient struct {
	*httpClient
}

func NewAdminClient(baseURL string, timeout time.Duration, log *zap.Logger) (*AdminClient, error) {
	c, err := newHTTPClient("admin", baseURL, timeout, log)
	if err != nil {
		return nil, err
	}
	return &AdminClient{c}, nil
}

func (c *AdminClient) ListProducts(ctx context.Context) ([]product.Product, error) {
	return c.list(ctx)
}

func (c *AdminClient) CreateProduct(ctx context.Context, d product.Draft) (product.Product, error) {
	var p product.Product
	err := c.do(ctx, http.MethodPost, c.baseURL, d, &p)
	return p, err
}

func (c *AdminClient) UpdateProduct(ctx context.Context, id int64, patch product.Patch) (product.Product, error) {
	var p product.Product
	err := c.do(ctx, http.MethodPut, c.url(strconv.FormatInt(id, 10)), patch, &p)
	return p, err
}

// DeleteProduct treats a 404 as success so that deleting an unknown id is a
// no-op on both strategies.
func (c *AdminClient) DeleteProduct(ctx context.Context, id int64) error {
	err := c.do(ctx, http.MethodDelete, c.url(strconv.FormatInt(id, 10)), nil, nil)
	if errors.Is(err, product.ErrNotFound) {
		return nil
	}
	return err
}

// CatalogClient talks to the public catalog service.
type CatalogClient struct {
	*httpClient
}

func NewCatalogClient(baseURL string, timeout time.Duration, log *zap.Logger) (*CatalogClient, error) {
	c, err := newHTTPClient("catalog", baseURL, timeout, log)
	if err != nil {
		return nil, err
	}
	return &CatalogClient{c}, nil
}

func (c *CatalogClient) ListProducts(ctx context.Context) ([]product.Product, error) {
	return c.list(ctx)
}

func (c *CatalogClient) LikeProduct(ctx context.Context, id int64) (product.Product, error) {
	var p product.Product
	err := c.do(ctx, http.MethodPost, c.url(strconv.FormatInt(id, 10), "like"), nil, &p)
	return p, err
}
