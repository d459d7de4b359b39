package monitoring

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BartekS5/hubdb-sync/pkg/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_ObserveRun(t *testing.T) {
	m := NewMonitor()
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)
	m.ObserveRun(&models.RunResult{
		StartedAt:    start,
		FinishedAt:   start.Add(12 * time.Second),
		RowsRead:     250,
		RowsDeleted:  240,
		RowsInserted: 250,
		Batches:      3,
		Status:       models.RunStatusSuccess,
	})

	assert.Equal(t, float64(250), testutil.ToFloat64(m.RowsGauge.WithLabelValues("read")))
	assert.Equal(t, float64(240), testutil.ToFloat64(m.RowsGauge.WithLabelValues("deleted")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.BatchesGauge))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunCounter.WithLabelValues(models.RunStatusSuccess)))
	assert.Equal(t, float64(start.Add(12*time.Second).Unix()), testutil.ToFloat64(m.LastSuccessGauge))
}

func TestMonitor_FailedRunKeepsLastSuccess(t *testing.T) {
	m := NewMonitor()
	now := time.Now()
	m.ObserveRun(&models.RunResult{StartedAt: now, FinishedAt: now, Status: models.RunStatusError})

	assert.Equal(t, float64(0), testutil.ToFloat64(m.LastSuccessGauge))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunCounter.WithLabelValues(models.RunStatusError)))
}

func TestMonitor_ObserveRequest(t *testing.T) {
	m := NewMonitor()
	m.ObserveRequest("create", 201, 30*time.Millisecond)
	m.ObserveRequest("create", 201, 20*time.Millisecond)
	m.ObserveRequest("publish", 0, time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.RequestCounter.WithLabelValues("create", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestCounter.WithLabelValues("publish", "error")))
}

func TestMonitor_RegisterDBTwice(t *testing.T) {
	m := NewMonitor()
	for i := 0; i < 2; i++ {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		m.RegisterDB(db)
		db.Close()
	}

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if strings.HasPrefix(f.GetName(), "go_sql_") {
			found = true
		}
	}
	assert.True(t, found, "sqlstats metrics are exported")
}

func TestMonitor_Push(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMonitor()
	m.ObserveRequest("list", 200, time.Millisecond)
	require.NoError(t, m.Push(context.Background(), server.URL, "6543210"))

	assert.Equal(t, "/metrics/job/hubdb_sync/table/6543210", gotPath)
	assert.NotEmpty(t, gotBody)
}
