package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"token-pulse/src/config"
	"token-pulse/src/logger"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(conf, conf.Name)

	// Wire components
	app := setupApp(conf, *configPath, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start servers, then the dashboard session
	var wg sync.WaitGroup
	startServers(ctx, &wg, app, conf, appLogger)
	app.session.Start()

	appLogger.Info("%s running, press Ctrl+C to stop", conf.Name)
	<-ctx.Done()

	appLogger.Info("Shutting down...")
	app.session.Stop()
	app.listing.Stop()
	app.feed.Dispose()
	wg.Wait()
	appLogger.Info("Shutdown complete.")
}
