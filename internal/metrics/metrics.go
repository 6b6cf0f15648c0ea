package metrics

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RowsNormalized = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "data_lake",
		Name:      "rows_normalized_total",
		Help:      "Total rows accepted by the normalizer.",
	})
	CellsCoerced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "data_lake",
		Name:      "cells_coerced_total",
		Help:      "Total dirty cells replaced by the null sentinel.",
	})
	ChunksUploaded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "data_lake",
		Name:      "chunks_uploaded_total",
		Help:      "Total chunk objects written to the data lake.",
	})
	ChunkUploadFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "data_lake",
		Name:      "chunk_upload_failures_total",
		Help:      "Total chunk writes that failed.",
	})
	QuerySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "data_lake",
		Name:      "query_seconds",
		Help:      "Wall time of Athena queries from submit to terminal state.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
	})
)

// Init registers collectors; call once from main.
func Init() {
	prometheus.MustRegister(RowsNormalized, CellsCoerced, ChunksUploaded, ChunkUploadFailures, QuerySeconds)
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Non-blocking when run in goroutine.
func Serve(addr string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, nil)
}

// AddrFromEnv returns listen address from METRICS_ADDR or default ":9090".
func AddrFromEnv() string {
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		return v
	}
	return ":9090"
}
