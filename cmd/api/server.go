package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"fintrack/internal/shared/config"
	"fintrack/internal/shared/middleware"
)

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Handler      http.Handler
	Addr         string
	TLSEnabled   bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
	AllowedHosts []string
}

// StartServers creates and starts the main server and optional redirect server.
// Returns the main server, the redirect server (nil if not enabled) and a
// channel that receives the first fatal listener error.
func StartServers(scfg ServerConfig) (*http.Server, *http.Server, <-chan error) {
	srv := &http.Server{
		Addr:         scfg.Addr,
		Handler:      scfg.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 2)
	report := func(err error) {
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}

	var redirectSrv *http.Server

	// Start HTTP redirect server if TLS redirect is enabled
	if scfg.TLSEnabled && scfg.RedirectHTTP {
		redirectSrv = createRedirectServer(scfg.AllowedHosts)
		go func() {
			slog.Info("HTTP redirect server starting", "addr", redirectSrv.Addr)
			report(redirectSrv.ListenAndServe())
		}()
	}

	// Start main server
	go func() {
		if scfg.TLSEnabled {
			slog.Info("HTTPS server starting", "addr", scfg.Addr)
			report(srv.ListenAndServeTLS(scfg.CertPath, scfg.KeyPath))
			return
		}
		slog.Info("HTTP server starting", "addr", scfg.Addr)
		report(srv.ListenAndServe())
	}()

	return srv, redirectSrv, errCh
}

// GracefulShutdown performs graceful shutdown of all servers.
func GracefulShutdown(srv, redirectSrv *http.Server, timeout time.Duration) {
	slog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown HTTP redirect server if running
	if redirectSrv != nil {
		if err := redirectSrv.Shutdown(ctx); err != nil {
			slog.Error("error shutting down HTTP redirect server", "error", err)
		}
	}

	// Shutdown main server
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("error shutting down main server", "error", err)
	}

	slog.Info("server stopped")
}

// createRedirectServer creates an HTTP server that redirects all requests to HTTPS.
func createRedirectServer(allowedHosts []string) *http.Server {
	return &http.Server{
		Addr:         ":80",
		Handler:      middleware.RedirectToHTTPS(allowedHosts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServerConfigFromConfig creates ServerConfig from application config.
func NewServerConfigFromConfig(handler http.Handler, cfg *config.Config) ServerConfig {
	return ServerConfig{
		Handler:      handler,
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		TLSEnabled:   cfg.TLS.Enabled,
		CertPath:     cfg.TLS.CertPath,
		KeyPath:      cfg.TLS.KeyPath,
		RedirectHTTP: cfg.TLS.RedirectHTTP,
		AllowedHosts: cfg.Server.AllowedHosts,
	}
}
