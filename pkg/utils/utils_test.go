package utils

import (
	"testing"
	"time"

	"github.com/etesami/multi-object-tracking/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseBuckets(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.Use(zap.New(core))
	t.Cleanup(func() { logger.Use(zap.NewNop()) })

	assert.Nil(t, ParseBuckets(""))
	assert.Equal(t, []float64{1, 2.5, 10}, ParseBuckets("1, 2.5,10"))
	assert.Zero(t, logs.Len())

	assert.Nil(t, ParseBuckets("1,abc,3"))
	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "abc", entries[0].ContextMap()["value"])
		assert.Equal(t, "1,abc,3", entries[0].ContextMap()["buckets"])
	}
}

func TestCalculateRtt(t *testing.T) {
	base := time.Date(2025, 5, 6, 12, 0, 0, 0, time.UTC)
	sent := base
	rec := base.Add(4 * time.Millisecond)
	ackSent := base.Add(20 * time.Millisecond)
	ackRec := base.Add(26 * time.Millisecond)

	rtt, err := CalculateRtt(sent, rec, ackSent, ackRec)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rtt, 1e-9)

	_, err = CalculateRtt(time.Time{}, rec, ackSent, ackRec)
	assert.Error(t, err)
}

func TestParseTimestamps(t *testing.T) {
	now := time.Now().UTC()
	ts, err := ParseTimestamps(now.Format(time.RFC3339Nano), now.Add(time.Second).Format(time.RFC3339Nano))
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.True(t, ts[0].Equal(now))
	assert.Equal(t, time.Second, ts[1].Sub(ts[0]))

	_, err = ParseTimestamps("yesterday")
	assert.Error(t, err)
}
