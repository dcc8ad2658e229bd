// Package metrics collects the counters of one batch run and pushes them to
// a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/thywilljoshua/pdf-corpus/internal/extract"
)

// Run holds the collectors of one command invocation. Each Run has its own
// registry.
type Run struct {
	job      string
	started  time.Time
	registry *prometheus.Registry

	Documents *prometheus.CounterVec
	Images    *prometheus.CounterVec
	Chunks    *prometheus.CounterVec
	Links     *prometheus.CounterVec
	Duration  prometheus.Gauge
}

func New(job string) *Run {
	r := &Run{job: job, started: time.Now(), registry: prometheus.NewRegistry()}
	r.Documents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdfcorpus_documents_total",
		Help: "Documents handled, by outcome.",
	}, []string{"outcome"})
	r.Images = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdfcorpus_images_total",
		Help: "Images seen during extraction, by outcome.",
	}, []string{"outcome"})
	r.Chunks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdfcorpus_chunks_total",
		Help: "Text chunks handled, by outcome.",
	}, []string{"outcome"})
	r.Links = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pdfcorpus_links_total",
		Help: "Chunk-image links created, by link type.",
	}, []string{"type"})
	r.Duration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pdfcorpus_run_duration_seconds",
		Help: "Wall time of the last run.",
	})
	r.registry.MustRegister(r.Documents, r.Images, r.Chunks, r.Links, r.Duration)
	return r
}

func (r *Run) Registry() *prometheus.Registry { return r.registry }

// ObserveExtraction adds the tallies of one extraction run.
func (r *Run) ObserveExtraction(s extract.Stats) {
	for outcome, n := range map[string]int{
		"extracted":          s.TotalExtracted,
		"filtered_too_small": s.FilteredTooSmall,
		"filtered_aspect":    s.FilteredAspectRatio,
		"filtered_file_size": s.FilteredFileSize,
		"deduplicated":       s.Deduplicated,
		"no_color_space":     s.NoColorSpace,
		"undecodable":        s.Undecodable,
		"conversion_failed":  s.ConversionFailed,
	} {
		r.Images.WithLabelValues(outcome).Add(float64(n))
	}
}

// Push sends every collector to the gateway at url. An empty url is a no-op.
func (r *Run) Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	r.Duration.Set(time.Since(r.started).Seconds())
	if err := push.New(url, r.job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
