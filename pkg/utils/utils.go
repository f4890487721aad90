package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/etesami/multi-object-tracking/pkg/logger"

	"github.com/pkg/errors"
)

// CalculateRtt calculates the round-trip time (RTT) in milliseconds from the
// four timestamps of a request/ack exchange. The time spent in the remote
// service (between msgRecTime and ackSentTime) is excluded.
func CalculateRtt(msgSentTime, msgRecTime, ackSentTime, ackRecTime time.Time) (float64, error) {
	if msgSentTime.IsZero() || msgRecTime.IsZero() || ackSentTime.IsZero() || ackRecTime.IsZero() {
		return -1, errors.New("missing timestamp for rtt calculation")
	}
	t1 := msgRecTime.Sub(msgSentTime)
	t2 := ackRecTime.Sub(ackSentTime)
	rtt := float64(t1+t2) / float64(time.Millisecond)
	return rtt, nil
}

// ParseTimestamps parses RFC3339Nano timestamps in order and stops on the first error
func ParseTimestamps(values ...string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, errors.Wrapf(err, "error parsing timestamp %q", v)
		}
		out = append(out, t)
	}
	return out, nil
}

// ParseBuckets parses a comma-separated string of bucket values into a slice
// of float64. A malformed value is logged and yields nil so the caller keeps
// its defaults.
func ParseBuckets(env string) []float64 {
	if env == "" {
		return nil
	}
	parts := strings.Split(env, ",")
	var buckets []float64
	for _, p := range parts {
		if f, err := strconv.ParseFloat(strings.TrimSpace(p), 64); err == nil {
			buckets = append(buckets, f)
		} else {
			logger.S().Warnw("ignoring bucket list", "value", p, "buckets", env, "error", err)
			return nil
		}
	}
	return buckets
}
