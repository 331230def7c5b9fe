package cmd

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SweepConfig describes a grid of hardware points to analyze against one
// dataflow/layer pair. All top-level sections must be listed to satisfy
// KnownFields(true) strict parsing.
type SweepConfig struct {
	DataflowFile  string `yaml:"dataflow_file"`
	LayerFile     string `yaml:"layer_file"`
	NumPEALUs     int64  `yaml:"num_pe_alus"`
	NoCBandwidth  int    `yaml:"noc_bw"`
	NoCHops       int    `yaml:"noc_hops"`
	NoCHopLatency int    `yaml:"noc_hop_latency"`
	NoCMulticast  bool   `yaml:"noc_mc_support"`

	DoReductionOp     bool `yaml:"do_reduction_op"`
	DoImplicitReduce  bool `yaml:"do_implicit_reduction"`
	DoFineGrainedSync bool `yaml:"do_fg_sync"`

	NumPEsGrid []int `yaml:"num_pes_grid"`
	Workers    int   `yaml:"workers"`
}

// loadSweepConfig parses a sweep YAML file with strict field checking, the
// teacher's defaults.yaml convention.
func loadSweepConfig(path string) SweepConfig {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Fatalf("failed to read sweep config: %v", err)
	}

	var cfg SweepConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		logrus.Fatalf("failed to parse sweep config YAML: %v", err)
	}
	return cfg
}
