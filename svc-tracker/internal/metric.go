package internal

import (
	"time"

	mt "github.com/etesami/multi-object-tracking/pkg/metric"
)

// Processing time covers one full iteration: read, resize, update, render,
// publish and show. The key poll is excluded.
func addProcessingTime(m *mt.Metric, stTime time.Time) {
	if m == nil {
		return
	}
	elapsed := float64(time.Since(stTime).Microseconds()) / 1000.0
	m.AddProcessingTime(elapsed)
}

// Read frames are frames successfully pulled from the source
func increaseReadFrames(m *mt.Metric) {
	if m == nil {
		return
	}
	m.AddFrameCount("read", 1)
}

// The end frame is the failed read that terminates the loop
func increaseEndFrames(m *mt.Metric) {
	if m == nil {
		return
	}
	m.AddFrameCount("end", 1)
}

func addTrackerUpdate(m *mt.Metric, ok bool) {
	if m == nil {
		return
	}
	m.AddTrackerUpdate(ok)
}

func setActiveTrackers(m *mt.Metric, n int) {
	if m == nil {
		return
	}
	m.SetActiveTrackers(n)
}

// A failed publish carries no RTT
func addPublished(m *mt.Metric, rtt float64, err error) {
	if m == nil {
		return
	}
	m.AddPublished(err == nil)
	if err == nil {
		m.AddRttTime("sink", rtt)
	}
}
