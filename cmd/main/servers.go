package main

import (
	"context"
	"fmt"
	"sync"

	"token-pulse/src/config"
	"token-pulse/src/logger"
)

// -----------------------------------------------------------------------------

// startServers runs the HTTP/websocket server and the gRPC health server
// until ctx is cancelled
func startServers(ctx context.Context, wg *sync.WaitGroup, a *app, conf *config.Config, appLogger *logger.Logger) {

	// 1. FastAPIServer
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.server.Start(ctx); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 2. gRPC health server
	wg.Add(1)
	go func() {
		defer wg.Done()
		port := conf.GrpcPort
		if port == 0 {
			port = 50061
		}
		addr := fmt.Sprintf("%s:%d", conf.GrpcHost, port)
		if err := a.health.Serve(ctx, addr); err != nil {
			appLogger.Critical("gRPC health server failed: %v", err)
		}
	}()
}
