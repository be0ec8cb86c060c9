package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/api"
	"github.com/xolan/tally/internal/cache"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve insights and weekly summaries over HTTP",
	Long: `Run the HTTP API.

Endpoints:
  GET /healthz
  GET /v1/users/{userID}/scopes/{scopeID}/insights
  GET /v1/users/{userID}/scopes/{scopeID}/weekly-summary?format=markdown|html

Responses are cached in Redis when [server] redis_addr is set, and in
process memory otherwise. Set cache_ttl = "0s" to disable caching.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		runServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default: [server] addr)")
}

// runServe serves until ctx is cancelled
func runServe(ctx context.Context, addr string) {
	d, closeFn, ok := openServices(ctx)
	if !ok {
		return
	}
	defer closeFn()

	cfg := d.Config.Server
	if addr == "" {
		addr = cfg.Addr
	}

	opts := []api.Option{api.WithVersion(rootCmd.Version)}
	if cfg.CacheTTL > 0 {
		store, err := openCache(ctx, cfg.RedisAddr)
		if err != nil {
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to connect to Redis")
			_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
			_, _ = fmt.Fprintf(deps.Stderr, "Hint: Check [server] redis_addr (%s), or remove it to cache in memory\n", cfg.RedisAddr)
			deps.Exit(1)
			return
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, api.WithCache(store, cfg.CacheTTL))
		d.Logger.Info("response cache enabled", "backend", cacheBackend(cfg.RedisAddr), "ttl", cfg.CacheTTL)
	}

	router := api.NewRouter(d.Services.Insights, d.Logger, opts...)
	if err := api.Serve(ctx, addr, router.Handler(), d.Logger); err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: HTTP server stopped")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		deps.Exit(1)
	}
}

func openCache(ctx context.Context, redisAddr string) (cache.Store, error) {
	if redisAddr == "" {
		return cache.NewMemory(), nil
	}
	return cache.NewRedis(ctx, redisAddr)
}

func cacheBackend(redisAddr string) string {
	if redisAddr == "" {
		return "memory"
	}
	return "redis"
}
