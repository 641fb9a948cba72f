// Package app é a raiz de composição: monta store, política de campos, gate,
// engine de busca e estatísticas a partir da Config, e fecha tudo no fim.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"employee-directory/directory/application"
	dirdomain "employee-directory/directory/domain"
	dirinfra "employee-directory/directory/infra"
	"employee-directory/internal/config"
	rldomain "employee-directory/middleware/ratelimit/domain"
	rlinfra "employee-directory/middleware/ratelimit/infra"
)

type App struct {
	Config  config.Config
	Log     *zap.Logger
	Store   dirdomain.Store
	Tenants dirdomain.TenantSet
	Policy  dirdomain.FieldPolicy
	Engine  *application.Engine

	Gate     *rlinfra.SlidingWindowStore
	Stats    rldomain.StatsStore
	MemStats *rlinfra.MemoryStatsStore
	Pool     rldomain.SlotPool
	Registry *prometheus.Registry

	closers []func() error
}

type Option func(*options)

type options struct {
	clock clock.Clock
	store dirdomain.Store
}

// WithClock injeta o relógio do gate (testes).
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithStore usa um store já aberto no lugar de store.driver.
func WithStore(s dirdomain.Store) Option {
	return func(o *options) { o.store = s }
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts ...Option) (_ *App, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Log: log, Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
		}
	}()

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.Tenants = dirdomain.NewTenantSet(cfg.Directory.Tenants...)

	if a.Policy, err = LoadPolicy(cfg.Directory, a.Tenants); err != nil {
		return nil, err
	}

	if o.store != nil {
		a.Store = o.store
	} else if a.Store, err = OpenStore(ctx, cfg.Store, log); err != nil {
		return nil, err
	}
	a.closers = append(a.closers, a.Store.Close)

	a.Engine = application.NewEngine(a.Store, a.Tenants, a.Policy,
		application.WithLogger(log.Named("search")),
		application.WithSearchLocation(cfg.Directory.SearchLocation),
	)

	gateLog := log.Named("admission")
	a.Gate = rlinfra.NewSlidingWindowStore(cfg.Rate.Limit, cfg.Rate.Window(),
		rlinfra.WithClock(o.clock),
		rlinfra.WithMaxEntries(cfg.Rate.MaxTenantEntries),
		rlinfra.WithCleanupEvery(cfg.Rate.SweepEvery),
		rlinfra.WithShards(cfg.Rate.Shards),
		rlinfra.WithSweepHook(func(removed int) {
			gateLog.Debug("sweep finished", zap.Int("removed", removed))
		}),
	)
	rlinfra.RegisterWindowGauge(a.Registry, a.Gate)

	if err = a.buildStats(ctx); err != nil {
		return nil, err
	}

	if cfg.Concurrency.Max > 0 {
		a.Pool = rlinfra.NewSearchSlots(cfg.Concurrency.Max)
	}
	return a, nil
}

func (a *App) buildStats(ctx context.Context) error {
	cfg := a.Config.Stats
	switch cfg.Backend {
	case config.StatsMemory:
		a.MemStats = rlinfra.NewMemoryStatsStore(rlinfra.WithTrackKeys(cfg.TrackKeys))
		a.Stats = a.MemStats
	case config.StatsPrometheus:
		a.Stats = rlinfra.NewPromStatsStore(a.Registry, cfg.TrackKeys)
	case config.StatsRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, rdb.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			return fmt.Errorf("redis stats ping: %w", err)
		}

		a.Stats = rlinfra.NewRedisStatsStore(rdb,
			rlinfra.WithStatsPrefix(cfg.Prefix),
			rlinfra.WithStatsTTL(cfg.TTL),
			rlinfra.WithStatsBucket(cfg.Bucket),
			rlinfra.WithStatsTrackKeys(cfg.TrackKeys),
		)
	}
	return nil
}

// OpenStore abre o store do driver configurado.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (dirdomain.Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		s   dirdomain.Store
		err error
	)
	// atribuição explícita: um *SQLStore nil não pode virar interface não nil
	switch cfg.Driver {
	case config.DriverMemory:
		return dirinfra.NewMemoryStore(), nil
	case config.DriverSQLite:
		var st *dirinfra.SQLStore
		if st, err = dirinfra.OpenSQLite(ctx, cfg.DSN, log.Named("sqlite")); err == nil {
			s = st
		}
	case config.DriverPostgres:
		var st *dirinfra.PGStore
		if st, err = dirinfra.OpenPostgres(ctx, cfg.DSN); err == nil {
			s = st
		}
	case config.DriverBolt:
		var st *dirinfra.BoltStore
		if st, err = dirinfra.OpenBolt(cfg.DSN); err == nil {
			s = st
		}
	default:
		err = fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}
	return s, nil
}

// LoadPolicy escolhe a fonte da política de campos: casbin > arquivo > config.
func LoadPolicy(cfg config.DirectoryConfig, tenants dirdomain.TenantSet) (dirdomain.FieldPolicy, error) {
	switch {
	case cfg.CasbinModel != "" && cfg.CasbinPolicy != "":
		return dirinfra.LoadCasbinFieldPolicy(cfg.CasbinModel, cfg.CasbinPolicy, tenants.Keys(), cfg.FallbackFields)
	case cfg.PolicyFile != "":
		return dirinfra.LoadFieldPolicyFile(cfg.PolicyFile, cfg.FallbackFields)
	default:
		return dirdomain.NewFieldPolicy(cfg.Fields, cfg.FallbackFields)
	}
}

// Seed popula o store vazio com store.seed_count registros.
func (a *App) Seed(ctx context.Context) (int, error) {
	n, err := dirinfra.Seed(ctx, a.Store, a.Tenants.Keys(), a.Config.Store.SeedCount, nil)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		a.Log.Info("seeded sample employees", zap.Int("count", n))
	}
	return n, nil
}

// Close fecha os recursos na ordem inversa da abertura.
func (a *App) Close() error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.closers[i]())
	}
	a.closers = nil
	return err
}
