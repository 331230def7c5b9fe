// Package noc implements the constant-parameter analytical latency model for
// the network-on-chip connecting PEs to the L2 buffer and to each other.
package noc

// Model holds the NoC's fixed hardware parameters. It has no mutable state:
// every query is a pure function of these parameters plus the caller's
// traffic volume.
type Model struct {
	bandwidthBytesPerCycle int
	hops                   int
	hopLatency             int
	multicastSupported     bool
}

// NewModel builds a Model from bandwidth (bytes/cycle), hop count, per-hop
// latency (cycles) and whether the NoC can multicast one read to many PEs.
func NewModel(bandwidthBytesPerCycle, hops, hopLatency int, multicastSupported bool) *Model {
	return &Model{
		bandwidthBytesPerCycle: bandwidthBytesPerCycle,
		hops:                   hops,
		hopLatency:             hopLatency,
		multicastSupported:     multicastSupported,
	}
}

// Bandwidth returns the configured bytes-per-cycle bandwidth.
func (m *Model) Bandwidth() int {
	return m.bandwidthBytesPerCycle
}

// MulticastSupported reports whether the NoC can deliver one L2 read to
// many PEs in a single transfer.
func (m *Model) MulticastSupported() bool {
	return m.multicastSupported
}

// OutstandingDelay returns the analytical latency, in cycles, for delivering
// volumeBytes over the NoC: ceil(volume/bandwidth) + hops*hopLatency. It is
// monotone non-decreasing in volumeBytes and bounded below by
// hops*hopLatency — a volume of 0 still pays the hop latency.
func (m *Model) OutstandingDelay(volumeBytes int64) int64 {
	if volumeBytes < 0 {
		volumeBytes = 0
	}
	transferCycles := int64(0)
	if m.bandwidthBytesPerCycle > 0 {
		transferCycles = (volumeBytes + int64(m.bandwidthBytesPerCycle) - 1) / int64(m.bandwidthBytesPerCycle)
	}
	return transferCycles + int64(m.hops)*int64(m.hopLatency)
}
