package monitoring

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/BartekS5/hubdb-sync/pkg/models"
	"github.com/dlmiddlecote/sqlstats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "hubdb_sync"

// Monitor is a collection of Prometheus metrics for sync runs. The job is
// short-lived, so metrics are pushed to a Pushgateway instead of scraped.
type Monitor struct {
	Registry *prometheus.Registry

	// A histogram to measure how long each sync run takes.
	RunTimer prometheus.Histogram
	// A gauge with the row counts of the last run, by stage.
	RowsGauge *prometheus.GaugeVec
	// A gauge with the number of insert batches sent in the last run.
	BatchesGauge prometheus.Gauge
	// A histogram to measure how long each HubDB request takes.
	RequestTimer *prometheus.HistogramVec
	// A counter of HubDB requests by operation and status code.
	RequestCounter *prometheus.CounterVec
	// A counter of runs by status.
	RunCounter *prometheus.CounterVec
	// Unix time of the last successful run.
	LastSuccessGauge prometheus.Gauge

	dbCollector prometheus.Collector
}

func NewMonitor() *Monitor {
	m := &Monitor{
		Registry: prometheus.NewRegistry(),
		RunTimer: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "hubdb_sync_run_duration_seconds",
			Help:    "Duration of sync run",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		RowsGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hubdb_sync_rows",
			Help: "Rows handled by the last sync run",
		}, []string{"stage"}),
		BatchesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hubdb_sync_insert_batches",
			Help: "Insert batches sent by the last sync run",
		}),
		RequestTimer: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hubdb_sync_request_duration_seconds",
			Help:    "Duration of HubDB API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hubdb_sync_requests_total",
			Help: "Number of HubDB API requests",
		}, []string{"operation", "code"}),
		RunCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hubdb_sync_runs_total",
			Help: "Number of sync runs by status",
		}, []string{"status"}),
		LastSuccessGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hubdb_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last successful sync run",
		}),
	}
	m.Registry.MustRegister(
		m.RunTimer,
		m.RowsGauge,
		m.BatchesGauge,
		m.RequestTimer,
		m.RequestCounter,
		m.RunCounter,
		m.LastSuccessGauge,
	)
	return m
}

// ObserveRequest records one HubDB request. status 0 means no response.
func (m *Monitor) ObserveRequest(op string, status int, elapsed time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.RequestTimer.WithLabelValues(op).Observe(elapsed.Seconds())
	m.RequestCounter.WithLabelValues(op, code).Inc()
}

func (m *Monitor) ObserveRun(r *models.RunResult) {
	m.RunTimer.Observe(r.Duration().Seconds())
	m.RowsGauge.WithLabelValues("read").Set(float64(r.RowsRead))
	m.RowsGauge.WithLabelValues("deleted").Set(float64(r.RowsDeleted))
	m.RowsGauge.WithLabelValues("inserted").Set(float64(r.RowsInserted))
	m.BatchesGauge.Set(float64(r.Batches))
	m.RunCounter.WithLabelValues(r.Status).Inc()
	if r.Status == models.RunStatusSuccess {
		m.LastSuccessGauge.Set(float64(r.FinishedAt.Unix()))
	}
}

// RegisterDB exports connection pool stats of the warehouse connection. A
// previously registered connection is replaced.
func (m *Monitor) RegisterDB(db *sql.DB) {
	if m.dbCollector != nil {
		m.Registry.Unregister(m.dbCollector)
	}
	m.dbCollector = sqlstats.NewStatsCollector("warehouse", db)
	m.Registry.MustRegister(m.dbCollector)
}

// Push sends every metric to the Pushgateway at url, grouped by table.
func (m *Monitor) Push(ctx context.Context, url, tableID string) error {
	return push.New(url, jobName).
		Gatherer(m.Registry).
		Grouping("table", tableID).
		PushContext(ctx)
}
