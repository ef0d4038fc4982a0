package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/bobmcallan/vigil/internal/app"
	"github.com/bobmcallan/vigil/internal/common"
)

type serveCmd struct {
	runNow bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the daily pipeline on a schedule" }
func (*serveCmd) Usage() string {
	return `vigil serve [-now]

  Starts the cron scheduler and an HTTP server exposing /api/health,
  /api/version, /api/runs/latest, /api/synthesis/latest and /metrics.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.runNow, "now", false, "run the pipeline once at startup")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	a, status := newApp(ctx)
	if a == nil {
		return status
	}
	common.PrintBanner(os.Stderr, a.Config, a.Logger, "serve")

	scheduler, err := a.NewScheduler()
	if err != nil {
		a.Logger.Error().Err(err).Msg("Failed to create scheduler")
		return subcommands.ExitFailure
	}
	scheduler.Start()

	if c.runNow {
		scheduler.RunNow()
	}

	host := a.Config.Server.Host
	port := a.Config.Server.Port

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      buildMux(a),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		a.Logger.Info().Int("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	a.Logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	scheduler.Stop()

	a.Logger.Info().Msg("Server stopped")
	return subcommands.ExitSuccess
}

// buildMux creates the HTTP mux with status and metrics endpoints.
func buildMux(a *app.App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", healthHandler)
	mux.HandleFunc("/api/version", versionHandler)
	mux.HandleFunc("/api/runs/latest", latestRunHandler(a))
	mux.HandleFunc("/api/synthesis/latest", latestSynthesisHandler(a))
	mux.Handle("/metrics", a.Metrics.Handler())
	return mux
}

func allowRead(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// healthHandler responds to GET/HEAD /api/health with {"status":"ok"}.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// versionHandler responds to GET/HEAD /api/version with version info.
func versionHandler(w http.ResponseWriter, r *http.Request) {
	if !allowRead(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// latestRunHandler returns the most recent saved run result, or 404 before the first run.
func latestRunHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowRead(w, r) {
			return
		}
		result, err := a.Store.GetRunResult(r.Context())
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no run recorded"})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// latestSynthesisHandler returns the saved portfolio synthesis, or 404 if none exists.
func latestSynthesisHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowRead(w, r) {
			return
		}
		synthesis, err := a.Store.GetSynthesis(r.Context())
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no synthesis recorded"})
			return
		}
		writeJSON(w, http.StatusOK, synthesis)
	}
}
