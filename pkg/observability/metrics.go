// Package observability exposes Prometheus metrics for plan generation and
// the plan history store.
package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entrhq/trainer/pkg/logging"
	"github.com/entrhq/trainer/pkg/workout"
)

const namespace = "trainer"

// Store operations reported by the instrumented log.
const (
	OpAppend  = "append"
	OpLoadAll = "load_all"
)

// Metrics holds the collectors of one process. It implements
// workout.Observer.
type Metrics struct {
	generations    *prometheus.CounterVec
	generationTime *prometheus.HistogramVec
	storeOps       *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	recordsLoaded  prometheus.Counter
	lastSavedGauge prometheus.Gauge
	registry       prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// selects a fresh private registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "generations_total",
			Help:      "Number of plan requests, labeled by terminal state.",
		}, []string{"state"}),
		generationTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "generation_duration_seconds",
			Help:      "Time from request validation to terminal state.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"state"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Number of history store operations, labeled by operation.",
		}, []string{"op"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Number of failed history store operations, labeled by operation.",
		}, []string{"op"}),
		recordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "records_loaded_total",
			Help:      "Number of records returned by history loads.",
		}),
		lastSavedGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "last_plan_saved_timestamp_seconds",
			Help:      "Unix timestamp of the most recent plan appended to a history.",
		}),
		registry: reg,
	}

	for _, c := range []prometheus.Collector{
		m.generations, m.generationTime, m.storeOps, m.storeErrors, m.recordsLoaded, m.lastSavedGauge,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GenerationFinished records one pipeline run.
func (m *Metrics) GenerationFinished(state workout.State, elapsed time.Duration) {
	m.generations.WithLabelValues(string(state)).Inc()
	m.generationTime.WithLabelValues(string(state)).Observe(elapsed.Seconds())
}

func (m *Metrics) storeOp(op string, err error) {
	m.storeOps.WithLabelValues(op).Inc()
	if err != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is canceled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *logging.Logger) error {
	logger = logging.OrDiscard(logger)

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("metrics listening on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
