package main

import (
	"log/slog"
	"net/http"

	httphandlers "fintrack/internal/interfaces/http"
	"fintrack/internal/shared/config"
	"fintrack/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /health", deps.HealthHandler.HandleHealth)
	mux.HandleFunc("GET /transactions", httphandlers.HandleTransactionsStatus)

	// Protected routes
	authMiddleware := middleware.Auth(deps.JWT)
	protect := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	mux.Handle("/expenses", protect(deps.ExpenseHandler.HandleExpenses))
	mux.Handle("/expenses/monthly", protect(deps.ExpenseHandler.HandleMonthly))
	mux.Handle("/expenses/{id}", protect(deps.ExpenseHandler.HandleExpenseByID))
	mux.Handle("/categories", protect(deps.ExpenseHandler.HandleCategories))

	// Apply global middleware, innermost first
	var handler http.Handler = middleware.Routes(mux)
	handler = middleware.CORS(cfg.Server.AllowedHosts)(handler)
	handler = middleware.SecurityHeaders(cfg.TLS.Enabled)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(cfg.Telemetry.ServiceName)(handler)
	}

	return handler
}
