package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ValentinKolb/sKV/rpc/server"
	"github.com/VictoriaMetrics/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// newRouter creates the http handler of the metrics endpoint
func newRouter(serv server.IRPCServer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if serv.Addr() == "" {
			http.Error(w, "not serving", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// one line per open connection: <id> <remote> <phase>
	r.Get("/connections", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		for _, c := range serv.Connections() {
			_, _ = fmt.Fprintf(w, "%d %s %s\n", c.ID, c.Remote, c.Phase)
		}
	})

	return r
}

// serveMetrics starts the metrics endpoint in the background. The returned function stops it.
func serveMetrics(endpoint string, serv server.IRPCServer) func() {
	srv := &http.Server{
		Addr:              endpoint,
		Handler:           newRouter(serv),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		server.Logger.Infof("Metrics endpoint listening on %s", endpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Errorf("Metrics endpoint failed: %v", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
