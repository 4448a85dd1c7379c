package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/stockroom/inventory-web/docs"
	"github.com/stockroom/inventory-web/internal/api/handler"
	"github.com/stockroom/inventory-web/internal/api/middleware"
	"github.com/stockroom/inventory-web/internal/api/routes"
	"github.com/stockroom/inventory-web/internal/core/domain"
	"github.com/stockroom/inventory-web/internal/core/session"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Log      zerolog.Logger
	Renderer echo.Renderer
	Sessions *session.Store
	Cookie   middleware.CookieConfig
	Auth     handler.Authenticator
	Backend  handler.BackendBinder
	// AuthLimiter throttles POST /login and /register. Nil disables it.
	AuthLimiter *middleware.RateLimiter
	// Ready lists the dependencies checked by /health/ready.
	Ready map[string]handler.Pinger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = d.Renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// HTTP metrics go to a registry owned by this router so building it twice
	// (tests) does not collide; the default registry is merged in at /metrics.
	reg := prometheus.NewRegistry()
	gatherers := prometheus.Gatherers{reg, prometheus.DefaultGatherer}

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlashWithConfig(echomiddleware.TrailingSlashConfig{
		RedirectCode: 301,
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "inventory_web",
		Subsystem:  "http",
		Registerer: reg,
		Skipper:    isOpsPath,
	}))
	e.Use(middleware.SecurityHeaders(func(c echo.Context) bool {
		return strings.HasPrefix(c.Request().URL.Path, "/swagger")
	}))

	// --- Ops (no session) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Ready)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherers}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Everything below runs with a hydrated Session Context ---
	app := e.Group("", middleware.Session(d.Sessions, d.Cookie, d.Log))

	authHandler := handler.NewAuthHandler(d.Auth, d.Log)
	inventoryHandler := handler.NewInventoryHandler(d.Backend, d.Log)
	dashboardHandler := handler.NewDashboardHandler(d.Backend, d.Log)
	ledgerHandler := handler.NewLedgerHandler(d.Backend, d.Log)
	sessionHandler := handler.NewSessionHandler(d.Auth)

	var authLimit []echo.MiddlewareFunc
	if d.AuthLimiter != nil {
		authLimit = append(authLimit, d.AuthLimiter.Middleware())
	}

	app.POST("/login", authHandler.Login, authLimit...)
	app.POST("/register", authHandler.Register, authLimit...)
	app.POST("/logout", authHandler.Logout)

	anyRole := middleware.RBAC(domain.RoleAdmin, domain.RoleEmployee)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	app.POST("/inventory/products", inventoryHandler.Create, anyRole)
	app.POST("/inventory/products/:id", inventoryHandler.Update, anyRole)
	app.POST("/inventory/products/:id/delete", inventoryHandler.Delete, anyRole)

	app.POST("/purchase-details", ledgerHandler.CreatePurchase, adminOnly)
	app.POST("/sales", ledgerHandler.CreateSale, adminOnly)
	app.POST("/manage-store", ledgerHandler.CreateStore, adminOnly)

	app.GET("/api/session", sessionHandler.Get)
	app.POST("/api/session/signout", sessionHandler.SignOut)

	// --- Role-conditional pages ---
	pages := handler.NewDispatcher()
	pages.Handle(routes.ViewLogin, authHandler.ShowLogin)
	pages.Handle(routes.ViewRegister, authHandler.ShowRegister)
	pages.Handle(routes.ViewDashboard, dashboardHandler.Show)
	pages.Handle(routes.ViewInventory, inventoryHandler.List)
	pages.Handle(routes.ViewPurchases, ledgerHandler.Purchases)
	pages.Handle(routes.ViewSales, ledgerHandler.Sales)
	pages.Handle(routes.ViewStores, ledgerHandler.Stores)
	pages.Handle(routes.ViewNotFound, handler.NotFound)

	app.GET("/", pages.Dispatch)
	app.GET("/*", pages.Dispatch)

	return e
}

func isOpsPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}
