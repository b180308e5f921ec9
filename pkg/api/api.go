// Package api implements the Batcomputer HTTP surface: the gadget
// inventory, the contact roster, the identity chain, dashboard views,
// and the intel feed relay.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/batcomd/batcomd/pkg/catalog"
	"github.com/batcomd/batcomd/pkg/config"
	"github.com/batcomd/batcomd/pkg/intel"
	"github.com/batcomd/batcomd/pkg/logging"
	"github.com/batcomd/batcomd/pkg/roster"
	"github.com/batcomd/batcomd/pkg/tasks"
	"github.com/batcomd/batcomd/pkg/view"
)

// API owns the HTTP server and every component behind it. All state is
// injected here; nothing lives in package globals.
type API struct {
	cfg     *config.Config
	log     *slog.Logger
	catalog *catalog.Catalog
	roster  *roster.Store
	runner  *tasks.Runner
	intel   *intel.Client
	views   *view.Renderer

	httpServer *http.Server
	handler    http.Handler
	startTime  time.Time
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithIntelClient replaces the intel feed client. Tests point this at
// an httptest server.
func WithIntelClient(c *intel.Client) Option {
	return func(a *API) {
		if c != nil {
			a.intel = c
		}
	}
}

// WithRunner replaces the background task runner.
func WithRunner(r *tasks.Runner) Option {
	return func(a *API) {
		if r != nil {
			a.runner = r
		}
	}
}

// WithCatalog replaces the gadget catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(a *API) {
		if c != nil {
			a.catalog = c
		}
	}
}

// New assembles the API from its configuration.
func New(cfg *config.Config, opts ...Option) *API {
	a := &API{
		cfg:       cfg,
		log:       logging.Nop(),
		catalog:   catalog.New(),
		roster:    roster.NewStore(),
		views:     view.NewRenderer(cfg.Paths.TemplatesDir),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.runner == nil {
		runnerOpts := []tasks.Option{tasks.WithLogger(a.log)}
		if cfg.Tasks.QueueSize > 0 {
			runnerOpts = append(runnerOpts, tasks.WithQueueSize(cfg.Tasks.QueueSize))
		}
		a.runner = tasks.NewRunner(runnerOpts...)
	}
	if a.intel == nil {
		a.intel = intel.New(cfg.Intel.BaseURL, intel.WithTimeout(cfg.Intel.Timeout.Std()))
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)
	a.handler = a.withMiddleware(mux)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      a.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return a
}

// Handler returns the fully wrapped handler. Tests drive it directly
// through httptest without binding a port.
func (a *API) Handler() http.Handler {
	return a.handler
}

// Roster returns the contact store.
func (a *API) Roster() *roster.Store {
	return a.roster
}

// Runner returns the background task runner.
func (a *API) Runner() *tasks.Runner {
	return a.runner
}

// Start begins serving in a background goroutine.
func (a *API) Start() error {
	a.startTime = time.Now()
	a.log.Info("starting batcomputer API",
		"addr", a.httpServer.Addr,
		"version", a.cfg.Server.Version)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("server error", "error", err)
		}
	}()
	return nil
}

// Stop drains the task queue and shuts the server down gracefully.
func (a *API) Stop() error {
	a.runner.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.httpServer.Shutdown(ctx)
}

// Uptime returns seconds since Start.
func (a *API) Uptime() int {
	return int(time.Since(a.startTime).Seconds())
}
