package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmalbrecht/histvet/internal/api"
	"github.com/jmalbrecht/histvet/pkg/cache"
	"github.com/jmalbrecht/histvet/pkg/pipeline"
	"github.com/jmalbrecht/histvet/pkg/store"
)

// serveCommand creates the serve command: run the HTTP validation service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP validation service",
		Long: `Run the histvet HTTP validation service.

Configuration comes from a TOML file (default
~/.config/histvet/config.toml). The verdict cache can be file-based or
shared via Redis; reports persist to MongoDB when a URI is configured.

Examples:
  histvet serve
  histvet serve --addr :9090
  histvet serve --config /etc/histvet/config.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file path")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg Config) error {
	verdictCache, err := c.buildCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer verdictCache.Close()

	var keyer cache.Keyer
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Namespace)
	}

	var reportStore store.Store
	if cfg.Mongo.URI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		ms, err := store.NewMongoStore(connectCtx, store.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
		cancel()
		if err != nil {
			return err
		}
		reportStore = ms
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = ms.Close(closeCtx)
		}()
		c.Logger.Info("report store connected", "database", cfg.Mongo.Database)
	} else {
		c.Logger.Warn("no mongo uri configured, reports will not persist")
	}

	runner := pipeline.NewRunner(verdictCache, keyer, reportStore, c.Logger)
	server := api.NewServer(runner, reportStore, c.Logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}

// buildCache constructs the verdict cache named by the config.
func (c *CLI) buildCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		var rc *cache.RedisCache
		err := cache.RetryWithBackoff(ctx, func() error {
			var cerr error
			rc, cerr = cache.NewRedisCache(ctx, cache.RedisConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			return cache.Retryable(cerr)
		})
		if err != nil {
			return nil, err
		}
		c.Logger.Info("verdict cache connected", "backend", "redis", "addr", cfg.Redis.Addr)
		return rc, nil
	case "file", "":
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			dir, err = cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	default:
		return nil, fmt.Errorf("invalid cache backend: %q (must be file, redis, or none)", cfg.Cache.Backend)
	}
}
