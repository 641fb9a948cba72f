// Package config carrega a configuração do serviço (defaults, arquivo YAML
// opcional, variáveis de ambiente e flags) com viper.
//
// Variáveis de ambiente seguem a chave com "." trocado por "_":
// rate.limit => RATE_LIMIT, store.dsn => STORE_DSN, directory.tenants =>
// DIRECTORY_TENANTS (lista separada por vírgula).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"employee-directory/directory/domain"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Rate        RateConfig        `mapstructure:"rate"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency"`
	Stats       StatsConfig       `mapstructure:"stats"`
	Store       StoreConfig       `mapstructure:"store"`
	Directory   DirectoryConfig   `mapstructure:"directory"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type ServerConfig struct {
	ListenAddr        string        `mapstructure:"listen_addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type RateConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Limit            int           `mapstructure:"limit"`
	WindowSeconds    int           `mapstructure:"window_seconds"`
	MaxTenantEntries int           `mapstructure:"max_tenant_entries"`
	SweepEvery       time.Duration `mapstructure:"sweep_every"`
	Shards           int           `mapstructure:"shards"`
	KeyHeader        string        `mapstructure:"key_header"`
	AddHeaders       bool          `mapstructure:"add_headers"`
}

func (r RateConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

type ConcurrencyConfig struct {
	Max     int           `mapstructure:"max"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StatsConfig struct {
	Backend       string        `mapstructure:"backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	Prefix        string        `mapstructure:"prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
	Bucket        string        `mapstructure:"bucket"`
	TrackKeys     bool          `mapstructure:"track_keys"`
}

const (
	StatsNone       = "none"
	StatsMemory     = "memory"
	StatsRedis      = "redis"
	StatsPrometheus = "prometheus"
)

type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	DSN       string `mapstructure:"dsn"`
	Seed      bool   `mapstructure:"seed"`
	SeedCount int    `mapstructure:"seed_count"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type DirectoryConfig struct {
	Tenants        []string            `mapstructure:"tenants"`
	Fields         map[string][]string `mapstructure:"fields"`
	FallbackFields []string            `mapstructure:"fallback_fields"`
	PolicyFile     string              `mapstructure:"policy_file"`
	CasbinModel    string              `mapstructure:"casbin_model"`
	CasbinPolicy   string              `mapstructure:"casbin_policy"`
	SearchLocation bool                `mapstructure:"search_location"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registra todos os defaults; sem eles o AutomaticEnv não enxerga
// a chave no Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 90*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("rate.enabled", true)
	v.SetDefault("rate.limit", 20)
	v.SetDefault("rate.window_seconds", 60)
	v.SetDefault("rate.max_tenant_entries", 10000)
	v.SetDefault("rate.sweep_every", time.Minute)
	v.SetDefault("rate.shards", 32)
	v.SetDefault("rate.key_header", "X-Org-ID")
	v.SetDefault("rate.add_headers", false)

	v.SetDefault("concurrency.max", 100)
	v.SetDefault("concurrency.timeout", time.Duration(0))

	v.SetDefault("stats.backend", StatsPrometheus)
	v.SetDefault("stats.redis_addr", "")
	v.SetDefault("stats.redis_password", "")
	v.SetDefault("stats.redis_db", 0)
	v.SetDefault("stats.prefix", "ratelimit:stats")
	v.SetDefault("stats.ttl", 24*time.Hour)
	v.SetDefault("stats.bucket", "minute")
	v.SetDefault("stats.track_keys", false)

	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.dsn", "hr.db")
	v.SetDefault("store.seed", false)
	v.SetDefault("store.seed_count", 50)

	v.SetDefault("directory.tenants", []string{"org1", "org2"})
	v.SetDefault("directory.fields", map[string][]string{
		"org1": {"first_name", "last_name", "department", "position", "location", "status"},
		"org2": {"first_name", "last_name", "contact_email", "contact_phone", "department", "status"},
	})
	v.SetDefault("directory.fallback_fields", []string{"first_name", "last_name"})
	v.SetDefault("directory.policy_file", "")
	v.SetDefault("directory.casbin_model", "")
	v.SetDefault("directory.casbin_policy", "")
	v.SetDefault("directory.search_location", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load lê defaults + arquivo (se path != "") + env e valida o resultado.
// Flags devem ser ligadas em v com BindPFlag antes da chamada.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Stats.Backend = strings.ToLower(strings.TrimSpace(c.Stats.Backend))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	tenants := c.Directory.Tenants[:0]
	for _, t := range c.Directory.Tenants {
		if t = strings.TrimSpace(t); t != "" {
			tenants = append(tenants, t)
		}
	}
	c.Directory.Tenants = tenants
}

func (c Config) Validate() error {
	if c.Rate.Limit <= 0 {
		return errors.New("rate.limit must be > 0")
	}
	if c.Rate.WindowSeconds <= 0 {
		return errors.New("rate.window_seconds must be > 0")
	}
	if c.Rate.MaxTenantEntries <= 0 {
		return errors.New("rate.max_tenant_entries must be > 0")
	}
	if c.Rate.SweepEvery < 0 {
		return errors.New("rate.sweep_every must be >= 0")
	}
	if c.Concurrency.Max < 0 {
		return errors.New("concurrency.max must be >= 0")
	}

	switch c.Stats.Backend {
	case StatsNone, StatsMemory, StatsPrometheus:
	case StatsRedis:
		if strings.TrimSpace(c.Stats.RedisAddr) == "" {
			return errors.New("stats.redis_addr is required when stats.backend=redis")
		}
	default:
		return fmt.Errorf("stats.backend must be one of none|memory|redis|prometheus, got %q", c.Stats.Backend)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres, DriverBolt:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("store.dsn is required for driver %q", c.Store.Driver)
		}
	default:
		return fmt.Errorf("store.driver must be one of memory|sqlite|postgres|bolt, got %q", c.Store.Driver)
	}
	if c.Store.SeedCount < 0 {
		return errors.New("store.seed_count must be >= 0")
	}

	if len(c.Directory.Tenants) == 0 {
		return errors.New("directory.tenants must not be empty")
	}
	// viper põe as chaves de directory.fields em minúsculas; um tenant com
	// maiúscula nunca encontraria a própria lista
	for _, t := range c.Directory.Tenants {
		if t != strings.ToLower(t) {
			return fmt.Errorf("directory.tenants: %q must be lower case", t)
		}
	}
	if _, err := domain.ParseFields(c.Directory.FallbackFields); err != nil {
		return fmt.Errorf("directory.fallback_fields: %w", err)
	}
	for tenant, fields := range c.Directory.Fields {
		if _, err := domain.ParseFields(fields); err != nil {
			return fmt.Errorf("directory.fields.%s: %w", tenant, err)
		}
	}
	if (c.Directory.CasbinModel == "") != (c.Directory.CasbinPolicy == "") {
		return errors.New("directory.casbin_model and directory.casbin_policy must be set together")
	}
	return nil
}
