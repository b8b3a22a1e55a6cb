package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nholik/plumb-sentinel/internal/healthcheck"
	"github.com/nholik/plumb-sentinel/internal/metrics"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// Options selects which surfaces are served and on which ports. A zero port
// disables that surface; surfaces sharing a port share one listener.
type Options struct {
	PollInterval time.Duration
	Tracker      *healthcheck.Tracker
	Metrics      *metrics.Metrics
	API          func(chi.Router)
	HealthPort   int
	MetricsPort  int
	APIPort      int
}

type listener struct {
	router chi.Router
	labels []string
}

// Start launches the configured HTTP servers. They shut down when ctx is
// done; the returned channel closes once every server has stopped.
func Start(ctx context.Context, logger zerolog.Logger, opts Options) <-chan struct{} {
	listeners := buildListeners(opts)
	var wg sync.WaitGroup

	ports := make([]int, 0, len(listeners))
	for port := range listeners {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	for _, port := range ports {
		l := listeners[port]
		wg.Add(1)
		startServer(ctx, logger, &wg, l.router, port, strings.Join(l.labels, "/"))
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func buildListeners(opts Options) map[int]*listener {
	listeners := make(map[int]*listener)
	at := func(port int, label string) chi.Router {
		l, ok := listeners[port]
		if !ok {
			l = &listener{router: chi.NewRouter()}
			listeners[port] = l
		}
		l.labels = append(l.labels, label)
		return l.router
	}

	if opts.HealthPort > 0 {
		r := at(opts.HealthPort, "health")
		r.Get("/healthz", healthcheck.HealthHandler(opts.Tracker, opts.PollInterval))
		r.Get("/readyz", healthcheck.ReadyHandler(opts.Tracker))
	}
	if opts.MetricsPort > 0 && opts.Metrics != nil {
		at(opts.MetricsPort, "metrics").Handle("/metrics", opts.Metrics.Handler())
	}
	if opts.APIPort > 0 && opts.API != nil {
		opts.API(at(opts.APIPort, "api"))
	}

	return listeners
}

func startServer(ctx context.Context, logger zerolog.Logger, wg *sync.WaitGroup, handler http.Handler, port int, label string) {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("server", label).Int("port", port).Msg("http server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("server", label).Int("port", port).Msg("http server failed")
		}
	}()

	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Str("server", label).Int("port", port).Msg("http server shutdown failed")
		}
	}()
}
