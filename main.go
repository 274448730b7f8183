package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cannashop/internal/app"
	"cannashop/internal/config"
	"cannashop/internal/seed"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	v, err := config.New()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	flags := pflag.NewFlagSet("cannashop", pflag.ExitOnError)
	flags.Bool("seed", false, "load the demo catalog and exit")
	flags.Bool("force", false, "with --seed, overwrite existing data")
	flags.Bool("migrate-to-mongo", false, "copy the file catalog into MongoDB and exit")
	flags.String("store", "", "store driver (memory, file, sqlite, postgres, mongo)")
	flags.String("port", "", "listen address, e.g. :8080")
	if err := flags.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Failed to parse flags: %v", err)
	}
	bindFlag(v, flags, "STORE_DRIVER", "store")
	bindFlag(v, flags, "APP_PORT", "port")

	cfg, err := config.Load(v)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	switch {
	case mustBool(flags, "seed"):
		runSeed(ctx, cfg, mustBool(flags, "force"))
		return
	case mustBool(flags, "migrate-to-mongo"):
		runMigration(ctx, cfg)
		return
	}

	// --- Initialize Application ---
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close() // Ensure broker and store connections are closed on exit

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s (demo cart %s)", cfg.AppPort, application.DemoCartID)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := application.Listen(); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := application.Shutdown(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}

func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
		log.Fatalf("Failed to bind flag --%s: %v", name, err)
	}
}

func mustBool(flags *pflag.FlagSet, name string) bool {
	b, err := flags.GetBool(name)
	if err != nil {
		log.Fatalf("Failed to read flag --%s: %v", name, err)
	}
	return b
}

// runSeed loads the demo catalog into the configured stores.
func runSeed(ctx context.Context, cfg config.Config, force bool) {
	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open stores: %v", err)
	}
	defer stores.Close()

	result, err := seed.Seed(ctx, stores.Products, stores.Carts, force)
	if errors.Is(err, seed.ErrNotEmpty) {
		log.Println("The stores already contain data. Use --force to overwrite.")
		return
	}
	if err != nil {
		log.Printf("Seed failed: %v", err)
		return
	}
	log.Printf("Seed complete: %d products, cart %s", len(result.Products), result.Cart.ID)
}

// runMigration copies the JSON file catalog into MongoDB.
func runMigration(ctx context.Context, cfg config.Config) {
	fileCfg := cfg
	fileCfg.StoreDriver = config.DriverFile
	source, err := app.OpenStores(ctx, fileCfg)
	if err != nil {
		log.Fatalf("Failed to open file stores: %v", err)
	}
	defer source.Close()

	mongoCfg := cfg
	mongoCfg.StoreDriver = config.DriverMongo
	target, err := app.OpenStores(ctx, mongoCfg)
	if err != nil {
		log.Fatalf("Failed to open mongo stores: %v", err)
	}
	defer target.Close()

	report, err := seed.Migrate(ctx, source.Products, target.Products)
	if err != nil {
		log.Printf("Migration failed: %v", err)
		return
	}
	for category, n := range report.ByCategory {
		log.Printf("  %s: %d", category, n)
	}
}
