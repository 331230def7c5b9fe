package noc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutstandingDelay_Formula(t *testing.T) {
	m := NewModel(32, 1, 1, true)
	// ceil(64/32) + 1*1 = 2 + 1 = 3
	assert.Equal(t, int64(3), m.OutstandingDelay(64))
	// ceil(33/32) + 1 = 2 + 1 = 3
	assert.Equal(t, int64(3), m.OutstandingDelay(33))
}

func TestOutstandingDelay_ZeroVolumeStillPaysHopLatency(t *testing.T) {
	m := NewModel(32, 2, 3, false)
	assert.Equal(t, int64(6), m.OutstandingDelay(0))
}

func TestOutstandingDelay_NegativeVolumeClampedToZero(t *testing.T) {
	m := NewModel(32, 2, 3, false)
	assert.Equal(t, m.OutstandingDelay(0), m.OutstandingDelay(-100))
}

func TestOutstandingDelay_MonotoneNonDecreasing(t *testing.T) {
	m := NewModel(16, 2, 4, true)
	prev := m.OutstandingDelay(0)
	for _, v := range []int64{1, 16, 17, 100, 1000} {
		cur := m.OutstandingDelay(v)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestOutstandingDelay_ZeroBandwidthGuarded(t *testing.T) {
	m := NewModel(0, 1, 1, true)
	assert.Equal(t, int64(1), m.OutstandingDelay(500))
}

func TestMulticastSupported(t *testing.T) {
	assert.True(t, NewModel(32, 1, 1, true).MulticastSupported())
	assert.False(t, NewModel(32, 1, 1, false).MulticastSupported())
}
