package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"employee-directory/internal/app"
	"employee-directory/internal/server"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP search service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.serve(cmd.Context())
		},
	}

	f := c.Flags()
	f.String("listen", ":8080", "listen address")
	f.Bool("seed", false, "seed sample employees into an empty store")
	f.Int("rate-limit", 20, "admitted requests per tenant per window")
	f.Int("rate-window", 60, "sliding window length in seconds")
	_ = o.v.BindPFlag("server.listen_addr", f.Lookup("listen"))
	_ = o.v.BindPFlag("store.seed", f.Lookup("seed"))
	_ = o.v.BindPFlag("rate.limit", f.Lookup("rate-limit"))
	_ = o.v.BindPFlag("rate.window_seconds", f.Lookup("rate-window"))
	return c
}

func (o *rootOptions) serve(parent context.Context) error {
	cfg, log, err := o.load()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close resources", zap.Error(err))
		}
	}()

	if cfg.Store.Seed {
		if _, err := a.Seed(ctx); err != nil {
			return err
		}
	}

	log.Info("rate",
		zap.Bool("enabled", cfg.Rate.Enabled),
		zap.Int("limit", cfg.Rate.Limit),
		zap.Duration("window", cfg.Rate.Window()),
		zap.Int("max_tenant_entries", cfg.Rate.MaxTenantEntries),
		zap.Duration("sweep_every", cfg.Rate.SweepEvery),
	)
	log.Info("stats", zap.String("backend", cfg.Stats.Backend), zap.Bool("track_keys", cfg.Stats.TrackKeys))
	log.Info("concurrency", zap.Int("max", cfg.Concurrency.Max), zap.Duration("acquire_timeout", cfg.Concurrency.Timeout))
	log.Info("directory",
		zap.String("driver", cfg.Store.Driver),
		zap.Strings("tenants", a.Tenants.Keys()),
		zap.String("policy_source", a.Policy.Source()),
	)

	srv := server.New(a)
	g, gctx := errgroup.WithContext(ctx)
	a.Gate.StartJanitor(gctx)

	g.Go(func() error {
		return server.Run(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	g.Go(func() error {
		<-gctx.Done()
		// janitor parou junto com gctx; uma última limpeza antes de sair
		removed := a.Gate.Sweep()
		log.Info("final sweep", zap.Int("removed", removed))
		return nil
	})

	return g.Wait()
}
