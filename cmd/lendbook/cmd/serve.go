package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/lendbook/pkg/httpapi"
)

var serveAddr string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local HTTP API",
	Long: `Serve the ledger over a local HTTP API with Prometheus metrics.

Endpoints:
  GET  /api/v1/transactions?q=&sort=
  POST /api/v1/transactions
  GET  /api/v1/transactions/{id}
  PUT  /api/v1/transactions/{id}/deadline
  GET  /api/v1/balances | totals | people | paid-back | timeline
  GET  /health
  GET  /metrics

Example:
  lendbook serve --addr 127.0.0.1:8088`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from LENDBOOK_HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	addr := a.cfg.HTTP.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      httpapi.New(a.book, slog.Default()).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting lendbook API", "addr", addr, "ledger", a.paths.GetLedgerPath())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		exitOnError(err, "server error")
	}

	slog.Info("server stopped")
}
