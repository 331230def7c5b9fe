package cmd

import "github.com/maestro-dataflow/maestro-analyzer/maestro/buffer"

// Per-access energy scalars taken from the source's AnalyzeEnergy(): an L1
// access costs 2.91, an L2 access 32.2 and one MAC operation 1.73;
// MACEnergyRatio divides by the MAC scalar to express energy in MAC units.
const (
	l1EnergyScalar  = 2.91
	l2EnergyScalar  = 32.2
	macEnergyScalar = 1.73
)

// EnergyEstimate sums L1 and L2 read/write traffic across tensors, scaled
// by the per-level energy constants, matching the source's AnalyzeEnergy().
// It is a free function over buffer.Model's public query methods — it never
// reaches into buffer/mapping internals, the same boundary AnalyzeEnergy()
// respects against BufferAnalysis in the source.
func EnergyEstimate(b *buffer.Model, tensors []string) (float64, error) {
	var l1, l2 float64

	for _, t := range tensors {
		rd, err := b.L1BufferRead(t)
		if err != nil {
			return 0, err
		}
		wr, err := b.L1BufferWrite(t, true, true)
		if err != nil {
			return 0, err
		}
		l1 += float64(rd) + float64(wr)

		l2Rd, err := b.L2BufferRead(t, true, true)
		if err != nil {
			return 0, err
		}
		l2Wr, err := b.L2BufferWrite(t)
		if err != nil {
			return 0, err
		}
		l2 += float64(l2Rd) + float64(l2Wr)
	}

	return l1*l1EnergyScalar + l2*l2EnergyScalar, nil
}

// MACEnergyRatio expresses a raw energy estimate in units of a single MAC
// operation's energy, matching the source's final "times MAC energy" report
// line.
func MACEnergyRatio(totalEnergy float64) float64 {
	return totalEnergy / macEnergyScalar
}
