// Package rest generates the CRUD routes of a resource: list, get by ids,
// create, alter and delete, all mounted below a common prefix.
package rest

import (
	"go.uber.org/zap"

	"github.com/conduit-lang/restgen/internal/orm/crud"
	"github.com/conduit-lang/restgen/internal/orm/schema"
	"github.com/conduit-lang/restgen/internal/web/auth"
	"github.com/conduit-lang/restgen/internal/web/query"
)

// ResourceConfig describes the routes generated for one resource
type ResourceConfig struct {
	// Prefix is the route template of the collection, e.g.
	// /v/1/model/:modelId/submodel. Path parameters use internal field names.
	Prefix   string
	Resource *schema.ResourceSchema
	Store    crud.Store

	// WebTokenKey signs the login tokens required by every route.
	// Empty disables token verification and access logic sees nil claims.
	WebTokenKey string

	Routes  Routes
	Options Options
	Logger  *zap.Logger
}

// Routes selects the generated routes. A nil RouteConfig skips the route.
type Routes struct {
	Get      *RouteConfig
	GetByIDs *RouteConfig
	Post     *RouteConfig
	Put      *RouteConfig
	Delete   *RouteConfig
}

// RouteConfig configures one generated route
type RouteConfig struct {
	// Access decides who may use the route; nil denies everybody
	Access      auth.AccessFunc
	Title       string
	Description string
}

// Options tunes the list route
type Options struct {
	DefaultLimit      int
	MaxLimit          int
	AllowDerivedOrder bool
}

func (o Options) queryOptions() query.Options {
	return query.Options{AllowDerivedOrder: o.AllowDerivedOrder}
}

// AllRoutes returns a Routes value enabling every route with the same access logic
func AllRoutes(access auth.AccessFunc) Routes {
	return Routes{
		Get:      &RouteConfig{Access: access},
		GetByIDs: &RouteConfig{Access: access},
		Post:     &RouteConfig{Access: access},
		Put:      &RouteConfig{Access: access},
		Delete:   &RouteConfig{Access: access},
	}
}
