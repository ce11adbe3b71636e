package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fieldlink/internal/crm"
	"github.com/sells-group/fieldlink/internal/engine"
	"github.com/sells-group/fieldlink/internal/report"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the link, reconcile, and revenue projections as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))

		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/api/v1/links", func(w http.ResponseWriter, r *http.Request) {
			handlePass(w, r, env, func(result *engine.PassResult, deals dealMap) any {
				return report.BuildLookup(result.Links, deals)
			})
		})

		r.Get("/api/v1/reconcile", func(w http.ResponseWriter, r *http.Request) {
			handlePass(w, r, env, func(result *engine.PassResult, deals dealMap) any {
				return report.BuildReconcile(result.Links, deals)
			})
		})

		r.Get("/api/v1/revenue", func(w http.ResponseWriter, r *http.Request) {
			from, to, err := parseMonth(r.URL.Query().Get("month"))
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errBody("invalid month"))
				return
			}
			handlePass(w, r, env, func(result *engine.PassResult, deals dealMap) any {
				return report.BuildRevenue(result.Links, deals, from, to)
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("serving", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "serve")
		}
		return nil
	},
}

// dealMap keeps the handler signatures short.
type dealMap = map[string]crm.Deal

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// handlePass runs one resolution pass for the request's deals and writes the
// projection built by project. Not-configured maps to 503 with an explicit
// code so clients can tell it apart from an empty result.
func handlePass(w http.ResponseWriter, r *http.Request, env *appEnv, project func(*engine.PassResult, dealMap) any) {
	ids := splitList(r.URL.Query().Get("deals"))
	if len(ids) == 0 {
		writeJSON(w, http.StatusBadRequest, errBody("deals query parameter is required"))
		return
	}

	window, err := parseWindow(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errBody("from/to must be YYYY-MM-DD and given together"))
		return
	}

	projects, deals, err := env.loadProjects(r.Context(), ids)
	if err != nil {
		zap.L().Error("load projects failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errBody("deal lookup failed"))
		return
	}

	result, err := env.Engine.Run(r.Context(), projects, window)
	if err != nil {
		if eris.Is(err, engine.ErrNotConfigured) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "field-service integration not configured",
				"code":  "not_configured",
			})
			return
		}
		zap.L().Error("resolution pass failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errBody("resolution pass failed"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pass_id": result.PassID,
		"result":  project(result, deals),
	})
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
