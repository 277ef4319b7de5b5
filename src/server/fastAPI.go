package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"token-pulse/src/analysis"
	"token-pulse/src/analysis/core"
	"token-pulse/src/config"
	"token-pulse/src/helpers"
	"token-pulse/src/interfaces"
	"token-pulse/src/logger"
	"token-pulse/src/models"
	"token-pulse/src/observability"
	"token-pulse/src/store"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 5 * time.Second

// -----------------------------------------------------------------------------
// FastAPIServer
// -----------------------------------------------------------------------------

type FastAPIServer struct {
	Config     *config.Config
	Logger     *logger.Logger
	engine     *gin.Engine
	configPath string

	store   *store.Store
	view    *analysis.SortedView
	metrics *observability.Metrics

	sessionMu sync.RWMutex
	session   interfaces.ISessionControl

	// Guards Config.Feed writes from the API
	cfgMu sync.Mutex

	// WebSocket clients, owned by the hub loop
	clients     map[*Client]struct{}
	clientCount atomic.Int64
	broadcast   chan models.Envelope
	register    chan *Client
	unregister  chan *Client
	done        chan struct{}
	hubOnce     sync.Once
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

// NewFastAPIServer builds the HTTP surface over st. configPath is where
// runtime tunables are persisted, empty disables saving.
func NewFastAPIServer(cfg *config.Config, configPath string, st *store.Store, view *analysis.SortedView, metrics *observability.Metrics, log *logger.Logger) *FastAPIServer {
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FastAPIServer{
		Config:     cfg,
		Logger:     log,
		engine:     gin.New(),
		configPath: configPath,
		store:      st,
		view:       view,
		metrics:    metrics,
		clients:    make(map[*Client]struct{}),
		// Queue size of 256 absorbs snapshot bursts during the initial load
		broadcast:  make(chan models.Envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), s.cors())

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

// AttachSession connects the routes that control the feed
func (s *FastAPIServer) AttachSession(session interfaces.ISessionControl) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	s.session = session
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Middleware
// -----------------------------------------------------------------------------

func (s *FastAPIServer) cors() gin.HandlerFunc {
	prefix := s.Config.Server.AllowedOriginPrefix
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if prefix != "" && strings.HasPrefix(origin, prefix) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FastAPIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.Use(RateLimiterMiddleware(RateLimiterConfig{
		RequestsPerSecond: s.Config.Server.RateLimitRPS,
		Burst:             s.Config.Server.RateLimitBurst,
	}))

	api.GET("/health", s.getHealth)
	api.GET("/config", s.getConfig)
	api.GET("/state", s.getState)
	api.GET("/sort-options", s.getSortOptions)

	api.GET("/columns/:category", s.getColumn)
	api.PUT("/columns/:category/sort", s.putSort)
	api.PUT("/columns/:category/preset", s.putPreset)

	api.PUT("/selection", s.putSelection)
	api.DELETE("/selection", s.deleteSelection)
	api.GET("/tokens/:id/history", s.getHistory)

	api.PUT("/feed/frequency", s.putFrequency)
	api.POST("/feed/reload", s.postReload)

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and serves HTTP until ctx is cancelled
func (s *FastAPIServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)

	var ln net.Listener
	err := helpers.RetryWithBackoff("http listen", 3, 500*time.Millisecond, s.Logger, func() error {
		var err error
		ln, err = net.Listen("tcp", addr)
		return err
	})
	if err != nil {
		return err
	}

	go s.Run(ctx)

	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Starting server on %s", addr)
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.Logger.Warning("Server shutdown: %v", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.MHealth{
		Status:           "ok",
		Connections:      s.ClientCount(),
		ConnectionStatus: s.store.ConnectionStatus(),
		LatestUpdate:     s.store.LastUpdated(),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getConfig(c *gin.Context) {
	s.cfgMu.Lock()
	feed := s.Config.Feed
	s.cfgMu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"feed":       feed,
		"listing":    s.Config.Listing,
		"categories": models.Categories,
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getSortOptions(c *gin.Context) {
	c.JSON(http.StatusOK, models.SortOptions)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getColumn(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.column(category))
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) putSort(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	var body models.SortConfig
	if !bindJSON(c, &body) {
		return
	}
	if !body.SortBy.IsValid() || !body.SortOrder.IsValid() {
		abortWithError(c, http.StatusBadRequest, helpers.NewValidationError(
			fmt.Sprintf("invalid sort %q %q", body.SortBy, body.SortOrder), nil))
		return
	}

	s.store.SetSortConfig(category, body.SortBy, body.SortOrder)
	c.JSON(http.StatusOK, s.column(category))
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) putPreset(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	var body struct {
		Preset models.Preset `json:"preset"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if !body.Preset.IsValid() {
		abortWithError(c, http.StatusBadRequest, helpers.NewValidationError(
			fmt.Sprintf("invalid preset %q", body.Preset), nil))
		return
	}

	s.store.SetActivePreset(category, body.Preset)
	c.JSON(http.StatusOK, s.column(category))
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) putSelection(c *gin.Context) {
	var body struct {
		TokenID string `json:"tokenId"`
	}
	if !bindJSON(c, &body) {
		return
	}

	token, found := s.store.FindToken(body.TokenID)
	if !found {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("%s: %w", body.TokenID, helpers.ErrTokenNotFound))
		return
	}

	s.store.SetSelectedToken(&token)
	c.JSON(http.StatusOK, token)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) deleteSelection(c *gin.Context) {
	s.store.SetSelectedToken(nil)
	c.Status(http.StatusNoContent)
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) getHistory(c *gin.Context) {
	id := c.Param("id")
	points, found := s.store.History(id)
	if !found {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("%s: %w", id, helpers.ErrTokenNotFound))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tokenId": id,
		"points":  points,
		"stats":   core.Summarize(points),
	})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) putFrequency(c *gin.Context) {
	var body struct {
		UpdateFrequencyMs int `json:"updateFrequencyMs"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if body.UpdateFrequencyMs <= 0 {
		abortWithError(c, http.StatusBadRequest, helpers.NewValidationError("updateFrequencyMs must be positive", nil))
		return
	}

	session, ok := s.currentSession(c)
	if !ok {
		return
	}
	session.SetUpdateFrequency(time.Duration(body.UpdateFrequencyMs) * time.Millisecond)

	s.cfgMu.Lock()
	s.Config.Feed.UpdateFrequencyMs = body.UpdateFrequencyMs
	if s.configPath != "" {
		if err := s.Config.Save(s.configPath); err != nil {
			s.Logger.Error("Failed to persist update frequency: %v", err)
		}
	}
	s.cfgMu.Unlock()

	c.JSON(http.StatusOK, gin.H{"updateFrequencyMs": body.UpdateFrequencyMs})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) postReload(c *gin.Context) {
	session, ok := s.currentSession(c)
	if !ok {
		return
	}
	go session.Reload()
	c.JSON(http.StatusAccepted, gin.H{"status": "reloading"})
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) column(category models.TokenCategory) models.MColumnView {
	sortCfg, _ := s.store.SortConfig(category)
	return models.MColumnView{
		Category:   category,
		SortConfig: sortCfg,
		Preset:     s.store.ActivePreset(category),
		Loading:    s.store.Loading(category),
		Tokens:     s.view.View(category),
	}
}

// -----------------------------------------------------------------------------

func (s *FastAPIServer) currentSession(c *gin.Context) (interfaces.ISessionControl, bool) {
	s.sessionMu.RLock()
	defer s.sessionMu.RUnlock()
	if s.session == nil {
		abortWithError(c, http.StatusServiceUnavailable, errors.New("feed session not attached"))
		return nil, false
	}
	return s.session, true
}

// Hub methods live in hub.go
