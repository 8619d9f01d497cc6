package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_import_rows_total",
			Help: "Uploaded CSV rows by outcome and mode",
		},
		[]string{"outcome", "mode"},
	)

	uploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "user_import_upload_duration_seconds",
			Help:    "Time spent processing one CSV upload",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	singleValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_import_single_validations_total",
			Help: "Single-record validations by result",
		},
		[]string{"operation", "result"},
	)
)

func modeLabel(dryRun bool) string {
	if dryRun {
		return "dry_run"
	}
	return "commit"
}
