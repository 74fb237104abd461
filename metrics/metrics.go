// Package metrics exposes Prometheus instruments for ingestion, claims and images.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "farmchain_"

	ResultSuccess = "success"
	ResultError   = "error"
	ResultInvalid = "invalid"
	ResultSkipped = "skipped"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec
	alertsTotal    *prometheus.CounterVec

	claimSubmissions *prometheus.CounterVec
	claimLatency     *prometheus.HistogramVec

	imageUploads *prometheus.CounterVec
	imageBytes   prometheus.Counter

	wsClients prometheus.Gauge
)

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total sensor ingestion requests by result and transport",
			},
			[]string{"transport", "result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Sensor ingestion latency in seconds, claim submissions included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		alertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "threshold_alerts_total",
				Help: "Total threshold alerts raised by sensor type and severity",
			},
			[]string{"sensor_type", "severity"},
		)
		claimSubmissions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "claim_submissions_total",
				Help: "Total on-chain insurance claim submissions by result",
			},
			[]string{"result"},
		)
		claimLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "claim_submission_latency_seconds",
				Help:    "Time from sending a claim transaction to its receipt",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"result"},
		)
		imageUploads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "image_uploads_total",
				Help: "Total image uploads by hash verdict (match, mismatch, unverified, error)",
			},
			[]string{"verdict"},
		)
		imageBytes = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "image_upload_bytes_total",
				Help: "Total bytes of stored images",
			},
		)
		wsClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "websocket_clients",
				Help: "Connected websocket notification clients",
			},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestLatency,
			alertsTotal,
			claimSubmissions,
			claimLatency,
			imageUploads,
			imageBytes,
			wsClients,
		)
	})
}

func ObserveIngest(transport, result string, d time.Duration) {
	if ingestRequests == nil {
		return
	}
	ingestRequests.WithLabelValues(transport, result).Inc()
	ingestLatency.WithLabelValues(result).Observe(d.Seconds())
}

func IncAlert(sensorType, severity string) {
	if alertsTotal == nil {
		return
	}
	alertsTotal.WithLabelValues(sensorType, severity).Inc()
}

func ObserveClaim(result string, d time.Duration) {
	if claimSubmissions == nil {
		return
	}
	claimSubmissions.WithLabelValues(result).Inc()
	if result != ResultSkipped {
		claimLatency.WithLabelValues(result).Observe(d.Seconds())
	}
}

func ObserveImage(verdict string, size int64) {
	if imageUploads == nil {
		return
	}
	imageUploads.WithLabelValues(verdict).Inc()
	if size > 0 {
		imageBytes.Add(float64(size))
	}
}

func SetWebsocketClients(n int) {
	if wsClients == nil {
		return
	}
	wsClients.Set(float64(n))
}
