package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/internal/server"
	"github.com/pdfstruct/pdfstruct/pkg/cache"
	"github.com/pdfstruct/pdfstruct/pkg/pipeline"
	"github.com/pdfstruct/pdfstruct/pkg/store"
)

// serveCommand creates the serve command, which exposes the parse pipeline
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		redisURL   string
		mongoURL   string
		cacheScope string
		noCache    bool
		maxUpload  int64
		skipModels bool
		manifest   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP parse service",
		Long: `Run the HTTP parse service.

Exposes POST /parse for PDF uploads plus /documents endpoints for parse
records. By default the stage cache lives on disk and records are stored
as local files; point --redis-url and --mongo-url at shared backends for
multi-instance deployments.

Examples:
  pdfstruct serve
  pdfstruct serve --addr :9090 --redis-url redis://localhost:6379/0
  pdfstruct serve --mongo-url mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			if !skipModels {
				if err := provisionModels(ctx, manifest); err != nil {
					return err
				}
			}

			stageCache, err := c.serveCache(ctx, redisURL, noCache)
			if err != nil {
				return err
			}
			runner := pipeline.NewRunner(stageCache, serveKeyer(redisURL, cacheScope), c.Logger)
			defer runner.Close()

			st, err := c.serveStore(ctx, mongoURL)
			if err != nil {
				return err
			}
			defer st.Close()

			srv := server.New(server.Config{
				Addr:            addr,
				MaxUploadBytes:  maxUpload,
				ShutdownTimeout: 10 * time.Second,
			}, runner, st, c.Logger)

			c.Logger.Info("Starting HTTP service", "addr", addr)
			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "Redis URL for the stage cache (file cache if empty)")
	cmd.Flags().StringVar(&mongoURL, "mongo-url", "", "MongoDB URL for the record store (file store if empty)")
	cmd.Flags().StringVar(&cacheScope, "cache-scope", "", "key prefix for a shared Redis cache (default pdfstruct:)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the stage cache")
	cmd.Flags().Int64Var(&maxUpload, "max-upload", 0, "maximum upload size in bytes (0 = 64 MiB)")
	cmd.Flags().BoolVar(&skipModels, "skip-models", false, "skip OCR model provisioning")
	cmd.Flags().StringVar(&manifest, "manifest", "", "custom asset manifest file (TOML)")

	return cmd
}

// serveKeyer decides how cache keys are scoped. The local file cache is
// private to the machine and needs no scope; a Redis instance may be shared
// across deployments, so its keys get a prefix.
func serveKeyer(redisURL, scope string) cache.Keyer {
	if redisURL == "" {
		return nil
	}
	if scope == "" {
		scope = "pdfstruct:"
	}
	return cache.NewScopedKeyer(nil, scope)
}

// serveCache picks the stage cache backend: Redis when a URL is given,
// otherwise the local file cache.
func (c *CLI) serveCache(ctx context.Context, redisURL string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("Using Redis stage cache")
		return rc, nil
	}
	return newCache(false)
}

// serveStore picks the record store backend: MongoDB when a URL is given,
// otherwise the local file store.
func (c *CLI) serveStore(ctx context.Context, mongoURL string) (store.Store, error) {
	if mongoURL != "" {
		ms, err := store.NewMongoStore(ctx, mongoURL)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("Using MongoDB record store")
		return ms, nil
	}
	return store.NewFileStore("")
}
