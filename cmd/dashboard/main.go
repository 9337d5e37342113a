package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ProductDash/internal/api"
	"ProductDash/internal/config"
	"ProductDash/internal/mockstore"
	"ProductDash/internal/poll"
	"ProductDash/internal/view"
	"ProductDash/internal/web"
	"ProductDash/pkg/kit"
)

const sweepInterval = time.Minute

func main() {
	service := "dashboard"

	cfg, err := config.Load()
	if err != nil {
		kit.NewLogger(service, "").Fatal("invalid configuration", zap.Error(err))
	}

	log := kit.NewLogger(service, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, service, cfg, log)
	stop()

	if err != nil {
		log.Error("dashboard stopped", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	log.Info("dashboard stopped")
	_ = log.Sync()
}

// run serves until ctx is done or a component fails. Everything it opens is
// closed before it returns.
func run(ctx context.Context, service string, cfg config.Config, log *zap.Logger) error {
	client, probes, closeStore, err := buildAPI(cfg, log)
	if err != nil {
		return fmt.Errorf("init data access: %w", err)
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	metrics := view.NewMetrics(reg)

	catalog := view.NewCatalogView(view.CatalogOptions{
		API:      client.Catalog,
		Interval: cfg.PollInterval,
		Notifier: view.LogNotifier{Log: log},
		Metrics:  metrics,
		Log:      log,
	})

	limiter := kit.NewIPRateLimiter(cfg.LikeLimitPerMin, time.Minute)

	h, err := web.NewHandler(web.Deps{
		Mode:     api.Mode(cfg.BackendMode),
		Admin:    client.Admin,
		Catalog:  catalog,
		Metrics:  metrics,
		Probes:   probes,
		Backends: []web.Backend{{Name: "admin", URL: cfg.AdminURL}, {Name: "catalog", URL: cfg.CatalogURL}},

		PollInterval: cfg.PollInterval,
		CORSOrigins:  cfg.CORSOrigins,
		LikeLimiter:  limiter,
	}, web.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})
	if err != nil {
		return fmt.Errorf("init handler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		catalog.Start(gctx)
		<-gctx.Done()
		catalog.Stop()
		return nil
	})

	g.Go(func() error {
		t := poll.Start(gctx, poll.RealClock, sweepInterval, func(context.Context) {
			if n := limiter.Sweep(); n > 0 {
				log.Debug("rate limiter swept", zap.Int("keys", n))
			}
		})
		<-t.Done()
		return nil
	})

	g.Go(func() error {
		return kit.RunHTTPServer(gctx, ":"+cfg.Port, h, log)
	})

	return g.Wait()
}

func buildAPI(cfg config.Config, log *zap.Logger) (*api.Client, []web.Probe, func(), error) {
	opts := api.Options{
		Mode:       api.Mode(cfg.BackendMode),
		AdminURL:   cfg.AdminURL,
		CatalogURL: cfg.CatalogURL,
		Timeout:    cfg.APITimeout,
		Latency:    cfg.MockLatency,
		Log:        log,
	}

	closeStore := func() {}
	if opts.Mode == api.ModeMock {
		slot, err := mockstore.Open(cfg.MockDriver, cfg.MockDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		opts.Store = mockstore.New(slot, cfg.MockKey)
		closeStore = func() {
			if err := opts.Store.Close(); err != nil {
				log.Warn("close mock store failed", zap.Error(err))
			}
		}
		log.Info("using mock store", zap.String("driver", cfg.MockDriver))
	}

	client, err := api.New(opts)
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}

	if opts.Mode == api.ModeMock {
		return client, []web.Probe{{Name: "mock store", Pinger: client.AdminPing}}, closeStore, nil
	}
	return client, []web.Probe{
		{Name: "admin", Pinger: client.AdminPing},
		{Name: "catalog", Pinger: client.CatalogPing},
	}, closeStore, nil
}
