package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/shopfront/internal/auth"
	"github.com/matthieukhl/shopfront/internal/cart"
	"github.com/matthieukhl/shopfront/internal/catalog"
	"github.com/matthieukhl/shopfront/internal/logger"
	"github.com/matthieukhl/shopfront/internal/media"
	"github.com/matthieukhl/shopfront/internal/orders"
	"github.com/matthieukhl/shopfront/internal/server"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Shopfront HTTP server",
	Long: `Start the Shopfront HTTP server which provides:
- catalog search and product management
- session carts kept in Redis
- login, registration and order placement

The server stops gracefully on SIGINT or SIGTERM.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	fmt.Println("🚀 Shopfront starting...")

	fmt.Println("📝 Loading configuration and connecting to database...")
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Println("✅ Database connected successfully")

	log := logger.New(logger.Options{
		Service:   "shopfront",
		Env:       cfg.Log.Env,
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		AddSource: cfg.Log.AddSource,
	})
	if cfg.Log.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("🔌 Connecting to Redis...")
	rdb, err := openRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	deps := server.Deps{
		Catalog: catalog.NewService(catalog.NewRepository(db)),
		Carts:   cart.NewService(cart.NewRedisStore(rdb, cfg.Session.TTL())),
		Orders:  orders.NewService(orders.NewRepository(db), log),
		Auth: auth.NewService(
			auth.NewRepository(db),
			auth.NewRedisTokenStore(rdb, cfg.Auth.TokenTTL),
			cfg.Auth.RegistrationKey,
			log,
		),
		DB:    db.HealthCheck,
		Redis: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	uploader, err := media.NewUploader(cfg.Storage)
	if err != nil {
		return err
	}
	if uploader != nil {
		deps.Images = uploader
		fmt.Printf("🖼️  Image uploads go to bucket %q\n", cfg.Storage.Bucket)
	} else {
		fmt.Println("⚠️  Image storage not configured, uploads disabled")
	}
	if cfg.Auth.RegistrationKey == "" {
		fmt.Println("⚠️  auth.registration_key is empty, registration disabled")
	}

	fmt.Println("⚙️  Setting up server...")
	srv := server.NewServer(cfg, deps, log)

	fmt.Printf("🌐 Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	fmt.Println("👋 Server stopped")
	return nil
}
