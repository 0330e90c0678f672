package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/DavideDeMarchi/geodash/internal/server"
	"github.com/DavideDeMarchi/geodash/pkg/cache"
	"github.com/DavideDeMarchi/geodash/pkg/catalog"
	"github.com/DavideDeMarchi/geodash/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string // listen address
	redis   string // redis address for the tile/artifact cache
	mongo   string // mongodb uri for snapshot storage
	mongoDB string // mongodb database name
	noCache bool   // disable the tile/artifact cache
}

// serveCommand creates the serve command for running the HTTP API.
//
// Without flags the server keeps snapshots in memory and caches tiles on
// disk; --mongo and --redis switch to shared backends for multi-instance
// deployments.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:    ":8080",
		mongoDB: "geodash",
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the geodash HTTP API server",
		Long: `Run the geodash HTTP API server.

Examples:
  geodash serve
  geodash serve --addr :9000 --redis localhost:6379
  geodash serve --mongo mongodb://localhost:27017`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "redis address for the tile/artifact cache")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "mongodb uri for snapshot storage")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "mongodb database name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the tile and artifact cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	tileCache, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}

	store, err := c.serveStore(ctx, opts)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	runner := pipeline.NewRunner(tileCache, nil, c.Logger)
	defer runner.Close()

	srv := server.New(server.Config{
		Addr:   opts.addr,
		Store:  store,
		Runner: runner,
		Logger: c.Logger,
	})
	return srv.Run(ctx)
}

// serveCache picks the cache backend: redis, file, or none.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redis != "" {
		c.Logger.Info("using redis cache", "addr", opts.redis)
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redis})
	}
	return newCache(false)
}

// serveStore picks the snapshot store backend: mongodb or in-memory.
func (c *CLI) serveStore(ctx context.Context, opts *serveOpts) (catalog.Store, error) {
	if opts.mongo != "" {
		c.Logger.Info("using mongodb store", "db", opts.mongoDB)
		return catalog.NewMongoStore(ctx, catalog.MongoConfig{
			URI:      opts.mongo,
			Database: opts.mongoDB,
		})
	}
	c.Logger.Warn("no --mongo given, snapshots are kept in memory")
	return catalog.NewMemoryStore(), nil
}
