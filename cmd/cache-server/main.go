// Command cache-server hosts the cache service, the provider client, and
// the background refresh scheduler behind a small HTTP surface.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lbsports/transfermarkt-cache/pkg/cache"
	"github.com/lbsports/transfermarkt-cache/pkg/config"
	"github.com/lbsports/transfermarkt-cache/pkg/logging"
	"github.com/lbsports/transfermarkt-cache/pkg/provider"
	"github.com/lbsports/transfermarkt-cache/pkg/refresh"
	"github.com/lbsports/transfermarkt-cache/pkg/store"
)

const defaultListLimit = 100

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.Setup(logging.DefaultConfig())
		fallback.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	logger := logging.NewLogger("main")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := store.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}

	svc := cache.NewService(st, cfg.ExpirationWindow())

	providerClient, err := provider.NewHTTPClient(provider.DefaultConfig(cfg.ProviderBaseURL))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create provider client")
	}

	sched := refresh.NewScheduler(svc, providerClient, refresh.Config{
		ScrapeDelay: cfg.ScrapeDelay,
		CycleDelay:  cfg.CycleDelay,
	})
	if cfg.RefreshEnabled {
		sched.Start()
	} else {
		logger.Info().Msg("Background refresh disabled")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: newMux(svc, st.Ping),
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Starting cache server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("Shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Store close failed")
	}
}

// newMux builds the HTTP surface. The readiness probe is injected so tests
// can run without a live store connection.
func newMux(svc *cache.Service, ready func(context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(ready))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/cache/stats", statsHandler(svc))
	mux.HandleFunc("/cache/", collectionHandler(svc))
	return mux
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func readyHandler(ready func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func statsHandler(svc *cache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// collectionHandler serves GET /cache/{collection}?limit=&skip=, listing
// cached records for one recognized collection.
func collectionHandler(svc *cache.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		collection := strings.Trim(strings.TrimPrefix(r.URL.Path, "/cache/"), "/")
		if collection == "" || strings.Contains(collection, "/") || !cache.IsRecognizedCollection(collection) {
			http.Error(w, "unknown collection", http.StatusNotFound)
			return
		}

		limit, err := queryInt(r, "limit", defaultListLimit)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		skip, err := queryInt(r, "skip", 0)
		if err != nil {
			http.Error(w, "invalid skip", http.StatusBadRequest)
			return
		}

		records, err := svc.GetAllCachedResponses(r.Context(), collection, limit, skip)
		if err != nil {
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		if records == nil {
			records = []store.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func queryInt(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
