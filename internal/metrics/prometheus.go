// Package metrics provides Prometheus-based metrics recording for interviews.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/letterloop/letterloop/internal/interview"
)

// PrometheusRecorder implements interview.Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry           *prometheus.Registry
	answersTotal       prometheus.Counter
	followUpsTotal     prometheus.Counter
	advancedTotal      *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	deliveriesTotal    *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder with its own registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		answersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "letterloop_answers_total",
			Help: "Total number of answers submitted",
		}),
		followUpsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "letterloop_follow_ups_total",
			Help: "Total number of follow-up questions asked",
		}),
		advancedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "letterloop_questions_advanced_total",
				Help: "Total number of primary questions closed, by reason",
			},
			[]string{"reason"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "letterloop_generation_duration_seconds",
				Help:    "Duration of generation backend calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode", "status"},
		),
		deliveriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "letterloop_deliveries_total",
				Help: "Total number of summary delivery attempts by status",
			},
			[]string{"status"},
		),
	}
}

// Registry returns the registry holding this recorder's collectors.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// AnswerSubmitted counts one user answer.
func (p *PrometheusRecorder) AnswerSubmitted() {
	p.answersTotal.Inc()
}

// FollowUpAsked counts one appended follow-up.
func (p *PrometheusRecorder) FollowUpAsked() {
	p.followUpsTotal.Inc()
}

// QuestionAdvanced counts a closed question.
func (p *PrometheusRecorder) QuestionAdvanced(reason string) {
	p.advancedTotal.WithLabelValues(reason).Inc()
}

// GenerationObserved records the duration and outcome of a backend call.
func (p *PrometheusRecorder) GenerationObserved(mode interview.Mode, success bool, d time.Duration) {
	p.generationDuration.WithLabelValues(string(mode), status(success)).Observe(d.Seconds())
}

// DeliveryObserved counts a delivery attempt.
func (p *PrometheusRecorder) DeliveryObserved(success bool) {
	p.deliveriesTotal.WithLabelValues(status(success)).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Handler serves the recorder's metrics in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (p *PrometheusRecorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", p.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics shutdown: %w", err)
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
