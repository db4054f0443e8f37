package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorObserveTracksMinMax(t *testing.T) {
	c := NewCollector()
	c.Observe(StagePreemphasis, 10*time.Microsecond)
	c.Observe(StagePreemphasis, 30*time.Microsecond)
	c.Observe(StagePreemphasis, 5*time.Microsecond)
	snap := c.Snapshot(time.Now())
	st := snap.Stages[StagePreemphasis]
	assert.Equal(t, 5.0, st.MinUs)
	assert.Equal(t, 30.0, st.MaxUs)
	assert.Equal(t, 5.0, st.CurUs)
}

func TestCollectorDueGating(t *testing.T) {
	c := NewCollector()
	now := time.Now()
	assert.True(t, c.Due(now, 5*time.Second))
	c.Snapshot(now)
	assert.False(t, c.Due(now.Add(1*time.Second), 5*time.Second))
	assert.True(t, c.Due(now.Add(6*time.Second), 5*time.Second))
}

func TestSampleDBFS(t *testing.T) {
	s := Sample(1.0, 0, 1.0, 0, 64, time.Now())
	assert.InDelta(t, 0.0, s.LDbfs, 1e-9)
	assert.Equal(t, -120.0, s.RDbfs)
}
