package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/crescendo-app/crescendo/internal/handler"    // import the handlers that implement business logic
	"github.com/crescendo-app/crescendo/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/crescendo-app/crescendo/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check, which
// load balancers and monitoring systems use to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Handlers bundles every handler the API mounts so RegisterAPI does not take
// a dozen positional arguments.
type Handlers struct {
	Auth      *handler.AuthHandler
	Library   *handler.LibraryHandler
	Concerts  *handler.ConcertHandler
	Taxonomy  *handler.TaxonomyHandler
	Users     *handler.UsersHandler
	Imports   *handler.ImportHandler
	Copyright *handler.CopyrightHandler
}

// RegisterAPI mounts the full /v1 surface.  Unauthenticated operations live
// under /v1/auth; everything else requires a valid access token.  Three
// tiers of role middleware mirror the capability model: any member can read
// the library and manage their own profile, Director and Librarian maintain
// songs and concert programs, and only the Director touches users, taxonomy
// and imports.
//
// rateLimit wraps only the copyright lookup, the one route whose handler
// spends money per request.
func RegisterAPI(e *echo.Echo, jwtSecret string, rateLimit echo.MiddlewareFunc, h Handlers) {
	// Operations that do not require an existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)

	// Any authenticated member, regardless of role.
	member := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleDirector, model.RoleLibrarian, model.RoleMusician))
	member.GET("/me", h.Auth.Me)
	member.PATCH("/me", h.Auth.UpdateMe)
	member.GET("/songs", h.Library.ListSongs)
	member.GET("/concerts", h.Concerts.ListConcerts)
	member.GET("/taxonomy", h.Taxonomy.Get)
	member.POST("/copyright/lookup", h.Copyright.Lookup, rateLimit)

	// Library maintenance: Director or Librarian.
	staff := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleDirector, model.RoleLibrarian))
	staff.POST("/songs", h.Library.AddSong)
	staff.PUT("/songs", h.Library.ReplaceSongs)
	staff.POST("/concerts", h.Concerts.ReplaceConcerts)
	staff.PATCH("/concerts/:id", h.Concerts.UpdateConcert)

	// Administration: Director only.
	admin := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleDirector))
	admin.GET("/users", h.Users.List)
	admin.PUT("/users", h.Users.Replace)
	admin.PUT("/taxonomy/types", h.Taxonomy.SetTypes)
	admin.PUT("/taxonomy/subtypes", h.Taxonomy.SetSubtypes)
	admin.POST("/import/library", h.Imports.ImportLibrary)
	admin.POST("/import/history", h.Imports.ImportHistory)
}
