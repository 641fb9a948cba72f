// Package cmd contém a CLI (cobra): serve, seed e search.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"employee-directory/internal/config"
	"employee-directory/internal/observability"
)

type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

// NewRootCmd monta a árvore de comandos com uma instância própria de viper.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:           "directory",
		Short:         "Tenant-scoped employee directory search service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&o.cfgFile, "config", "", "config file (YAML); env vars and flags override it")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")
	pf.String("log-format", "json", "log format (json|console)")
	pf.String("driver", config.DriverSQLite, "record store driver (memory|sqlite|postgres|bolt)")
	pf.String("dsn", "hr.db", "record store DSN or file path")
	_ = o.v.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = o.v.BindPFlag("logging.format", pf.Lookup("log-format"))
	_ = o.v.BindPFlag("store.driver", pf.Lookup("driver"))
	_ = o.v.BindPFlag("store.dsn", pf.Lookup("dsn"))

	root.AddCommand(newServeCmd(o), newSeedCmd(o), newSearchCmd(o))
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.v, o.cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := observability.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
