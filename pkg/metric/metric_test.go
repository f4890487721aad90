package metric

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricCounters(t *testing.T) {
	m := NewMetric(nil, []float64{1, 5, 10})

	m.AddFrameCount("read", 1)
	m.AddFrameCount("read", 1)
	m.AddFrameCount("end", 1)
	m.AddTrackerUpdate(true)
	m.AddTrackerUpdate(true)
	m.AddTrackerUpdate(false)
	m.SetActiveTrackers(3)
	m.AddPublished(false)
	m.AddProcessingTime(12.5)
	m.AddRttTime("sink", 4.2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frameCount.WithLabelValues("read")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.frameCount.WithLabelValues("end")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.trackerUpdates.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.trackerUpdates.WithLabelValues("failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeTrackers))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.published.WithLabelValues("failure")))
	assert.Equal(t, 12.5, testutil.ToFloat64(m.procTime))
	assert.Equal(t, 4.2, testutil.ToFloat64(m.rttTimes.WithLabelValues("sink")))
}

func TestMetricInstancesAreIndependent(t *testing.T) {
	a := NewMetric(nil, nil)
	b := NewMetric(nil, nil)
	a.AddFrameCount("read", 5)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.frameCount.WithLabelValues("read")))
}

func TestMetricHandler(t *testing.T) {
	m := NewMetric(nil, nil)
	m.AddTrackerUpdate(true)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tracker_updates_total{result="success"} 1`)
	assert.Contains(t, string(body), "active_trackers")
}

// a receiving service only counts frames and never exposes an RTT series
func TestReceiverMetricsHaveNoRtt(t *testing.T) {
	m := NewMetric(nil, nil)
	m.AddFrameCount("received", 1)
	m.AddFrameCount("received", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.frameCount.WithLabelValues("received")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.rttTimeHistogram))
	assert.Equal(t, 0, testutil.CollectAndCount(m.rttTimes))
}
