package monitor

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestAcquireReleaseRun(t *testing.T) {
	m := New(2, testLogger())

	assert.True(t, m.AcquireRun())
	assert.True(t, m.AcquireRun())
	assert.False(t, m.AcquireRun(), "third run exceeds capacity")
	assert.Equal(t, 2, m.ActiveRuns())

	m.ReleaseRun()
	assert.Equal(t, 1, m.ActiveRuns())
	assert.True(t, m.AcquireRun())
}

func TestReleaseNeverGoesNegative(t *testing.T) {
	m := New(1, testLogger())
	m.ReleaseRun()
	assert.Equal(t, 0, m.ActiveRuns())
}

func TestDefaultCapacityIsPositive(t *testing.T) {
	m := New(0, testLogger())
	assert.True(t, m.AcquireRun())
}

func TestSampleRecordsHistory(t *testing.T) {
	m := New(1, testLogger())

	snapshot, err := m.Sample(context.Background())
	require.NoError(t, err)
	assert.False(t, snapshot.Timestamp.IsZero())
	assert.Greater(t, snapshot.Goroutines, 0)

	history := m.History(10)
	require.Len(t, history, 1)
	assert.Equal(t, snapshot.Timestamp, history[0].Timestamp)
}

func TestHistoryLimit(t *testing.T) {
	m := New(1, testLogger())
	for i := 0; i < 5; i++ {
		_, err := m.Sample(context.Background())
		require.NoError(t, err)
	}

	assert.Len(t, m.History(3), 3)
	assert.Len(t, m.History(0), 5)
}
