// Package app assembles a runnable API from a configuration: schemas,
// store, rate limiter, middleware and the generated CRUD routes.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/restgen/internal/config"
	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/web/auth"
	"github.com/conduit-lang/restgen/internal/web/cache"
	"github.com/conduit-lang/restgen/internal/web/middleware"
	"github.com/conduit-lang/restgen/internal/web/rest"
	"github.com/conduit-lang/restgen/internal/web/router"
)

// App is an assembled API
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *schema.Registry
	Router   *router.Router
	Store    crud.Store
	// DB is the pool behind a SQL store, nil for the memory store
	DB *sql.DB

	closers []func(context.Context) error
}

// New builds the API described by cfg. Close releases what it opened.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry, err := BuildRegistry(cfg.Resources)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger, Registry: registry, Router: router.NewRouter()}

	a.Store, a.DB, err = OpenStore(cfg.Database, cfg.References)
	if err != nil {
		return nil, err
	}
	if a.DB != nil {
		db := a.DB
		a.closers = append(a.closers, func(context.Context) error { return db.Close() })
	}

	if err := a.useMiddleware(); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	router.SetupDefaultErrorHandlers(a.Router, cfg.Log.Development)

	for _, rc := range cfg.Resources {
		if err := a.mount(rc); err != nil {
			_ = a.Close(context.Background())
			return nil, err
		}
	}

	return a, nil
}

// useMiddleware installs the global middleware; it must run before any route is added
func (a *App) useMiddleware() error {
	a.Router.Use(
		middleware.RequestID(),
		middleware.Logging(a.Logger.Named("http")),
		middleware.Recovery(a.Logger),
	)

	if origins := a.Config.Server.CORSOrigins; len(origins) > 0 {
		a.Router.Use(middleware.CORS(middleware.DefaultCORSConfig(origins...)))
	}
	if d := a.Config.Server.RequestTimeout; d > 0 {
		a.Router.Use(middleware.Timeout(d))
	}
	if a.Config.Server.ETag {
		a.Router.Use(cache.ETag(cache.Config{CacheControl: a.Config.Server.CacheControl}))
	}

	if a.Config.RateLimit.Enabled {
		limiter, closeLimiter, err := NewLimiter(a.Config.RateLimit)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, closeLimiter)
		a.Router.Use(middleware.RateLimitWithConfig(middleware.RateLimitConfig{
			Limiter:  limiter,
			KeyFunc:  middleware.IPKeyFunc,
			FailOpen: a.Config.RateLimit.FailOpen,
			Logger:   a.Logger,
		}))
	}
	return nil
}

func (a *App) mount(rc config.ResourceConfig) error {
	res, ok := a.Registry.Get(rc.Name)
	if !ok {
		return fmt.Errorf("resource %s is not registered", rc.Name)
	}

	routes, err := RoutesFor(rc.Routes)
	if err != nil {
		return fmt.Errorf("resource %s: %w", rc.Name, err)
	}

	return rest.AddCRUD(a.Router, rest.ResourceConfig{
		Prefix:      rc.Prefix,
		Resource:    res,
		Store:       a.Store,
		WebTokenKey: a.Config.Auth.WebTokenKey,
		Routes:      routes,
		Options: rest.Options{
			DefaultLimit:      a.Config.Query.DefaultLimit,
			MaxLimit:          a.Config.Query.MaxLimit,
			AllowDerivedOrder: a.Config.Query.AllowDerivedOrder,
		},
		Logger: a.Logger,
	})
}

// Close releases the store and the rate limiter in reverse opening order
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// BuildRegistry builds and validates the declared resources
func BuildRegistry(defs []config.ResourceConfig) (*schema.Registry, error) {
	registry := schema.NewRegistry()
	for i := range defs {
		res, err := defs[i].Build()
		if err != nil {
			return nil, err
		}
		if err := registry.Register(res); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// RoutesFor parses the access expression of every configured route
func RoutesFor(rc config.RoutesConfig) (rest.Routes, error) {
	var routes rest.Routes
	targets := []struct {
		expr string
		dst  **rest.RouteConfig
		name string
	}{
		{rc.Get, &routes.Get, "get"},
		{rc.GetByIDs, &routes.GetByIDs, "getByIds"},
		{rc.Post, &routes.Post, "post"},
		{rc.Put, &routes.Put, "put"},
		{rc.Delete, &routes.Delete, "delete"},
	}
	for _, t := range targets {
		if t.expr == "" {
			continue
		}
		access, err := auth.ParseAccess(t.expr)
		if err != nil {
			return rest.Routes{}, fmt.Errorf("route %s: %w", t.name, err)
		}
		*t.dst = &rest.RouteConfig{Access: access}
	}
	return routes, nil
}
