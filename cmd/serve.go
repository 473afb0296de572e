package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/config"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/engine"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/model"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for home evaluations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		table, err := initBaseline()
		if err != nil {
			return err
		}
		eng := engine.New(st, table)

		r := newRouter(eng, st, cfg.Server)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(eng *engine.Engine, st store.Store, sc config.ServerConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: sc.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(rateLimit(rate.Limit(sc.RatePerSecond), sc.RateBurst))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/homes", func(r chi.Router) {
		r.Get("/", handleListHomes(st))
		r.Post("/{id}/evaluate", handleEvaluate(eng))
		r.Get("/{id}/outlook", handleOutlook(st))
	})

	return r
}

func handleListHomes(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		homes, err := st.ListHomes(r.Context())
		if err != nil {
			zap.L().Error("list homes failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list homes"})
			return
		}
		writeJSON(w, http.StatusOK, homes)
	}
}

func handleEvaluate(eng *engine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		homeID := chi.URLParam(r, "id")

		var req struct {
			AdvisorState string `json:"advisor_state"`
		}
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
		}
		state := model.StateObserving
		if req.AdvisorState != "" {
			s, ok := model.ParseAdvisorState(req.AdvisorState)
			if !ok {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown advisor state"})
				return
			}
			state = s
		}

		result, err := eng.Evaluate(r.Context(), homeID, engine.Options{
			AdvisorState: state,
			Persist:      true,
		})
		if err != nil {
			zap.L().Error("evaluation failed",
				zap.String("home_id", homeID),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "evaluation failed"})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func handleOutlook(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		homeID := chi.URLParam(r, "id")
		result, err := st.GetLatestEvaluation(r.Context(), homeID)
		if err != nil {
			zap.L().Error("outlook fetch failed",
				zap.String("home_id", homeID),
				zap.Error(err),
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "outlook fetch"})
			return
		}
		if result == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no evaluation for home"})
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// rateLimit applies a single server-wide token bucket. Per-client buckets are
// unnecessary while the API sits behind the advisor backend.
func rateLimit(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
