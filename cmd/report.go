package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/maestro-dataflow/maestro-analyzer/maestro"
)

// PrintReport logs the four report sections the source prints to stdout
// from AnalyzeHardware/AnalyzeMapping/AnalyzeReuse/AnalyzeBuffer, using
// structured logrus fields instead of raw console writes.
func PrintReport(cfg maestro.Config, result *maestro.Result, energy float64) {
	logrus.WithFields(logrus.Fields{
		"num_pes":       cfg.NumPEs,
		"noc_bandwidth": cfg.NoCBandwidth,
		"noc_hops":      cfg.NoCHops,
		"noc_mc":        cfg.NoCMulticast,
	}).Info("hardware configuration")

	for _, t := range result.Tensors {
		logrus.WithFields(logrus.Fields{
			"tensor":      t.Name,
			"mapped_size": t.MappedSize,
			"full_size":   t.FullSize,
		}).Info("per-PE mapping size")
	}

	logrus.WithFields(logrus.Fields{
		"num_sp_tiles":         result.NumSpatialTiles,
		"num_edge_tiles":       result.NumEdgeTiles,
		"num_temporal_iters":   result.NumTemporalIterations,
		"num_spatial_foldings": result.NumSpatialFoldings,
	}).Info("mapping analysis")

	logrus.WithFields(logrus.Fields{
		"l1_bytes_per_pe": result.L1BufferSize,
		"l2_bytes":        result.L2BufferSize,
	}).Info("buffer requirement")

	for _, t := range result.Tensors {
		logrus.WithFields(logrus.Fields{
			"tensor":         t.Name,
			"l1_read":        t.L1Read,
			"l2_read":        t.L2Read,
			"l2_write":       t.L2Write,
			"temporal_reuse": t.TemporalReuse,
			"spatial_reuse":  t.SpatialReuse,
		}).Info("buffer traffic and reuse")
	}

	logrus.WithFields(logrus.Fields{
		"temporal_iterations": result.NumTemporalIterations,
		"spatial_foldings":    result.NumSpatialFoldings,
		"total_iterations":    int64(result.NumTemporalIterations) * int64(result.NumSpatialFoldings),
		"runtime_cycles":      result.Runtime,
		"energy_mac_units":    MACEnergyRatio(energy),
	}).Info("runtime and energy")
}
