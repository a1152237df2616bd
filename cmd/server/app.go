package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	brokerv1 "consult-broker/api/brokerv1"
	"consult-broker/internal/config"
	"consult-broker/internal/directory"
	"consult-broker/internal/events"
	"consult-broker/internal/grpcweb"
	"consult-broker/internal/handler"
	"consult-broker/internal/httpapi"
	"consult-broker/internal/identity"
	"consult-broker/internal/jobs"
	"consult-broker/internal/metrics"
	"consult-broker/internal/middleware"
	"consult-broker/internal/migrate"
	"consult-broker/internal/service"
	"consult-broker/internal/store"
)

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Backend, func(context.Context) error, func(), error) {
	if cfg.Store == "memory" {
		log.Warn("using in-memory store; data is lost on exit")
		return store.NewMemory(), nil, func() {}, nil
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("db ping: %w", err)
	}
	log.Info("connected to postgres")
	if _, err := migrate.Up(ctx, pool, log); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return store.New(pool), pool.Ping, pool.Close, nil
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	st, ready, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	pub, err := events.Open(ctx, cfg.Events.Backend, cfg.Events.URL, cfg.Events.Topic, log)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer pub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dir := directory.New(st, st, st, log)
	svc := service.New(service.Deps{
		Appointments: st,
		Messages:     st,
		Workers:      dir,
		Events:       pub,
		Metrics:      metrics.New(reg),
		Log:          log,
	})
	ident := identity.New(st, st, identity.Config{
		Secret:     cfg.Auth.Secret,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	}, log)

	sched, err := jobs.New(cfg.PurgeSchedule, ident, log)
	if err != nil {
		return err
	}

	// grpc server
	rl := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.Logging(log),
			middleware.RateLimit(rl),
			middleware.Auth(cfg.Auth.Secret),
		),
	)
	brokerv1.RegisterBrokerServiceServer(srv, handler.New(svc, ident, dir, log))

	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	// grpc-web bridge -> forwards browser requests to grpc on localhost
	bridge, err := grpcweb.New("localhost:"+cfg.GRPCPort, log)
	if err != nil {
		return err
	}
	defer bridge.Close()

	httpSrv := &http.Server{
		Addr: ":" + cfg.WebPort,
		Handler: httpapi.NewRouter(httpapi.Config{
			Service:    svc,
			Identity:   ident,
			Directory:  dir,
			Secret:     cfg.Auth.Secret,
			Limiter:    rl,
			TrustProxy: cfg.TrustProxy,
			Gatherer:   reg,
			GRPCWeb:    bridge.Handler(),
			Ready:      ready,
			Log:        log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("grpc listening", "port", cfg.GRPCPort)
		return srv.Serve(lis)
	})
	g.Go(func() error {
		log.Info("http listening", "port", cfg.WebPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return sched.Run(ctx) })
	g.Go(func() error {
		rl.Cleanup(ctx, time.Minute, 3*time.Minute)
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		srv.GracefulStop()
		return err
	})
	return g.Wait()
}
