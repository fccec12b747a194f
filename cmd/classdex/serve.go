package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/classdex/internal/transport/chi"
	mcpTransport "github.com/kailas-cloud/classdex/internal/transport/mcp"
	healthuc "github.com/kailas-cloud/classdex/internal/usecase/health"
)

func serveCmd(logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API (and MCP over HTTP when mcp.enabled)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), "serve", *logLevel)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(a)
		},
	}
}

func serve(a *app) error {
	cfg := a.cfg
	logger := a.logger
	terms := cfg.ServedTerms()

	searchSvc := a.searchService()
	healthSvc := healthuc.New(a.store, a.sections, terms)

	var mcpHandler http.Handler
	if cfg.MCP.IsEnabled() {
		mcpServer := mcpTransport.NewServer(searchSvc, a.limits(), terms, buildVersion(), logger)
		mcpHandler = mcpServer.HTTPHandler(cfg.MCP.IsStateless(), cfg.MCP.IsJSONResponse())
		logger.Info("MCP endpoint enabled",
			zap.String("path", cfg.MCP.Path),
			zap.Bool("stateless", cfg.MCP.IsStateless()),
		)
	}

	server := chiTransport.NewServer(searchSvc, healthSvc, a.limits(), terms, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(cfg.Auth.APIKeys, cfg.MCP.Path, mcpHandler),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
