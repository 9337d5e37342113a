package view

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"ProductDash/internal/api"
	"ProductDash/internal/poll"
	"ProductDash/internal/product"
)

const DefaultPollInterval = 5 * time.Second

var ErrInFlight = errors.New("like already in progress")

const (
	MsgLiked      = "Product liked!"
	MsgLikeFailed = "Failed to like product. Please try again."
)

type CatalogOptions struct {
	API      api.CatalogAPI
	Interval time.Duration
	Clock    poll.Clock
	Notifier Notifier
	Metrics  *Metrics
	Log      *zap.Logger
}

type CatalogState struct {
	Products []product.Product `json:"products"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error,omitempty"`
	InFlight []int64           `json:"in_flight"`
}

// entry is the last server value of one product and the stamp of the call
// that produced it.
type entry struct {
	p     product.Product
	stamp uint64
}

// CatalogView is the end-user catalog. Loads and likes are stamped in issue
// order; a server answer only replaces an entry set by an older call. A like
// bumps the displayed count while in flight, but only on top of a server value
// older than the like itself.
type CatalogView struct {
	api      api.CatalogAPI
	interval time.Duration
	clock    poll.Clock
	notify   Notifier
	metrics  *Metrics
	log      *zap.Logger

	mu        sync.Mutex
	seq       uint64
	listStamp uint64
	errStamp  uint64
	entries   []entry
	loading   bool
	errMsg    string
	pending   map[int64]uint64
	task      *poll.Task
}

func NewCatalogView(opts CatalogOptions) *CatalogView {
	v := &CatalogView{
		api:      opts.API,
		interval: opts.Interval,
		clock:    opts.Clock,
		notify:   opts.Notifier,
		metrics:  opts.Metrics,
		log:      opts.Log,
		loading:  true,
		pending:  map[int64]uint64{},
	}
	if v.interval <= 0 {
		v.interval = DefaultPollInterval
	}
	if v.notify == nil {
		v.notify = nopNotifier{}
	}
	if v.log == nil {
		v.log = zap.NewNop()
	}
	return v
}

// Start loads once and keeps reloading every interval until Stop.
func (v *CatalogView) Start(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.task != nil {
		return
	}

	v.task = poll.Start(ctx, v.clock, v.interval, func(ctx context.Context) {
		if err := v.Refresh(ctx); err != nil && ctx.Err() == nil {
			v.log.Warn("catalog poll failed", zap.Error(err))
		}
	})
}

// Stop ends polling. Results of calls still running are dropped.
func (v *CatalogView) Stop() {
	v.mu.Lock()
	t := v.task
	v.task = nil
	v.mu.Unlock()

	if t != nil {
		t.Stop()
	}
}

func (v *CatalogView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	stamp := v.next()
	v.mu.Unlock()

	products, err := v.api.ListProducts(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		if stamp > v.listStamp && stamp > v.errStamp {
			v.errStamp = stamp
			v.errMsg = api.Message(err)
			v.loading = false
		}
		v.metrics.load("catalog", outcomeError)
		return err
	}

	if stamp <= v.listStamp {
		v.metrics.load("catalog", outcomeStale)
		return nil
	}

	v.apply(products, stamp)
	v.metrics.load("catalog", outcomeOK)
	return nil
}

// apply replaces the list with a server snapshot, keeping entries that a
// newer like answer already set.
func (v *CatalogView) apply(products []product.Product, stamp uint64) {
	prev := make(map[int64]entry, len(v.entries))
	for _, e := range v.entries {
		prev[e.p.ID] = e
	}

	entries := make([]entry, 0, len(products))
	for _, p := range products {
		if old, ok := prev[p.ID]; ok && old.stamp > stamp {
			entries = append(entries, old)
			continue
		}
		entries = append(entries, entry{p: p, stamp: stamp})
	}

	v.entries = entries
	v.listStamp = stamp
	if stamp > v.errStamp {
		v.errMsg = ""
	}
	v.loading = false
}

// Like bumps the displayed count, calls the backend and then keeps or rolls
// back the bump. A second like for the same product while one is running
// returns ErrInFlight without calling the backend.
func (v *CatalogView) Like(ctx context.Context, id int64) (product.Product, error) {
	v.mu.Lock()
	if _, busy := v.pending[id]; busy {
		v.mu.Unlock()
		v.metrics.like(outcomeBusy)
		return product.Product{}, ErrInFlight
	}
	if v.index(id) < 0 {
		v.mu.Unlock()
		return product.Product{}, product.ErrNotFound
	}
	stamp := v.next()
	v.pending[id] = stamp
	v.mu.Unlock()

	p, err := v.api.LikeProduct(ctx, id)

	v.mu.Lock()
	delete(v.pending, id)
	if err == nil {
		if i := v.index(id); i >= 0 && stamp > v.entries[i].stamp {
			v.entries[i] = entry{p: p, stamp: stamp}
		}
	}
	shown, _ := v.display(id)
	v.mu.Unlock()

	if err != nil {
		v.metrics.like(outcomeRollback)
		v.log.Warn("like failed, rolled back", zap.Int64("product_id", id), zap.Error(err))
		v.notify.Error(MsgLikeFailed)
		return shown, err
	}

	v.metrics.like(outcomeOK)
	v.notify.Success(MsgLiked)
	return shown, nil
}

func (v *CatalogView) Liking(id int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.pending[id]
	return ok
}

func (v *CatalogView) State() CatalogState {
	v.mu.Lock()
	defer v.mu.Unlock()

	st := CatalogState{
		Products: make([]product.Product, 0, len(v.entries)),
		Loading:  v.loading,
		Error:    v.errMsg,
		InFlight: make([]int64, 0, len(v.pending)),
	}
	for _, e := range v.entries {
		p, _ := v.display(e.p.ID)
		st.Products = append(st.Products, p)
	}
	for id := range v.pending {
		st.InFlight = append(st.InFlight, id)
	}
	sort.Slice(st.InFlight, func(i, j int) bool { return st.InFlight[i] < st.InFlight[j] })
	return st
}

func (v *CatalogView) display(id int64) (product.Product, bool) {
	i := v.index(id)
	if i < 0 {
		return product.Product{}, false
	}

	e := v.entries[i]
	p := e.p
	if likeStamp, ok := v.pending[id]; ok && likeStamp > e.stamp {
		p.Likes++
	}
	return p, true
}

func (v *CatalogView) index(id int64) int {
	for i, e := range v.entries {
		if e.p.ID == id {
			return i
		}
	}
	return -1
}

func (v *CatalogView) next() uint64 {
	v.seq++
	return v.seq
}
