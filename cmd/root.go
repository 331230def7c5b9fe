// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maestro-dataflow/maestro-analyzer/maestro"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/directive"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/dslparse"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/perf"
	"github.com/maestro-dataflow/maestro-analyzer/maestro/sweep"
)

var (
	dataflowFile  string
	layerFile     string
	numPEs        int
	numPEALUs     int64
	nocBandwidth  int
	nocHops       int
	nocHopLatency int
	nocMCSupport  bool

	doReductionOp       bool
	doImplicitReduction bool
	doFGSync            bool
	latencyHiding       bool
	doubleBuffering     bool
	logLevel            string

	sweepConfigFile string
)

var rootCmd = &cobra.Command{
	Use:   "maestro",
	Short: "Analytical cost model for dataflow-accelerator mappings",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a single dataflow mapping against a layer description",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		directives, loops := parseDSLFiles(dataflowFile, layerFile)

		cfg := maestro.Config{
			NumPEs:            numPEs,
			NumPEALUs:         numPEALUs,
			NoCBandwidth:      nocBandwidth,
			NoCHops:           nocHops,
			NoCHopLatency:     nocHopLatency,
			NoCMulticast:      nocMCSupport,
			DoReductionOp:     doReductionOp,
			DoSameCycleReduce: doImplicitReduction,
			DoFineGrainedSync: doFGSync,
			LatencyHiding:     latencyHiding,
			DoubleBufferedL1:  doubleBuffering,
			PerfMode:          perf.ModeCompat,
		}

		orch := maestro.New(directives, loops, cfg, DefaultTensorBindings())
		result, err := orch.Analyze()
		if err != nil {
			logrus.Fatalf("analysis failed: %v", err)
		}

		energy, err := EnergyEstimate(orch.BufferModel(), orch.TensorNames())
		if err != nil {
			logrus.Fatalf("energy estimate failed: %v", err)
		}

		PrintReport(cfg, result, energy)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Analyze a grid of PE counts against one dataflow/layer pair",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		swCfg := loadSweepConfig(sweepConfigFile)
		directives, loops := parseDSLFiles(swCfg.DataflowFile, swCfg.LayerFile)

		if len(swCfg.NumPEsGrid) == 0 {
			logrus.Fatalf("sweep config %s has an empty num_pes_grid", sweepConfigFile)
		}

		points := make([]sweep.Point, 0, len(swCfg.NumPEsGrid))
		for _, n := range swCfg.NumPEsGrid {
			points = append(points, sweep.Point{
				Label: fmt.Sprintf("num_pes=%d", n),
				Cfg: maestro.Config{
					NumPEs:            n,
					NumPEALUs:         swCfg.NumPEALUs,
					NoCBandwidth:      swCfg.NoCBandwidth,
					NoCHops:           swCfg.NoCHops,
					NoCHopLatency:     swCfg.NoCHopLatency,
					NoCMulticast:      swCfg.NoCMulticast,
					DoReductionOp:     swCfg.DoReductionOp,
					DoSameCycleReduce: swCfg.DoImplicitReduce,
					DoFineGrainedSync: swCfg.DoFineGrainedSync,
					LatencyHiding:     true,
					DoubleBufferedL1:  true,
					PerfMode:          perf.ModeCompat,
				},
			})
		}

		logrus.Infof("sweeping %d points over %d workers", len(points), swCfg.Workers)
		results := sweep.Run(points, directives, loops, DefaultTensorBindings(), swCfg.Workers)

		printSweepResults(results)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseDSLFiles(dataflowPath, layerPath string) (*directive.Table, *directive.LoopTable) {
	df, err := os.Open(dataflowPath)
	if err != nil {
		logrus.Fatalf("failed to open dataflow file %s: %v", dataflowPath, err)
	}
	defer df.Close()

	directives, dfWarnings, err := dslparse.ParseDataflow(df)
	if err != nil {
		logrus.Fatalf("failed to parse dataflow file %s: %v", dataflowPath, err)
	}
	for _, w := range dfWarnings {
		logrus.Warnf("%s:%d: %s", dataflowPath, w.Line, w.Message)
	}

	lf, err := os.Open(layerPath)
	if err != nil {
		logrus.Fatalf("failed to open layer file %s: %v", layerPath, err)
	}
	defer lf.Close()

	loops, layerWarnings, err := dslparse.ParseLayer(lf)
	if err != nil {
		logrus.Fatalf("failed to parse layer file %s: %v", layerPath, err)
	}
	for _, w := range layerWarnings {
		logrus.Warnf("%s:%d: %s", layerPath, w.Line, w.Message)
	}

	return directives, loops
}

func printSweepResults(results []sweep.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tRUNTIME_CYCLES\tL1_BYTES\tL2_BYTES\tERROR")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\t%v\n", r.Label, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t-\n", r.Label, r.Analysis.Runtime, r.Analysis.L1BufferSize, r.Analysis.L2BufferSize)
	}
	w.Flush()
}

func init() {
	analyzeCmd.Flags().StringVar(&dataflowFile, "dataflow_file", "", "Path to the dataflow mapping description")
	analyzeCmd.Flags().StringVar(&layerFile, "layer_file", "", "Path to the layer (loop bound) description")
	analyzeCmd.Flags().IntVar(&numPEs, "num_pes", 1, "Number of processing elements")
	analyzeCmd.Flags().Int64Var(&numPEALUs, "num_pe_alus", 1, "Number of ALUs per processing element")
	analyzeCmd.Flags().IntVar(&nocBandwidth, "noc_bw", 1, "NoC bandwidth in bytes per cycle")
	analyzeCmd.Flags().IntVar(&nocHops, "noc_hops", 1, "NoC hop count")
	analyzeCmd.Flags().IntVar(&nocHopLatency, "noc_hop_latency", 1, "NoC per-hop latency in cycles")
	analyzeCmd.Flags().BoolVar(&nocMCSupport, "noc_mc_support", true, "Whether the NoC supports multicast")
	analyzeCmd.Flags().BoolVar(&doReductionOp, "do_reduction_op", true, "Whether the workload performs a reduction")
	analyzeCmd.Flags().BoolVar(&doImplicitReduction, "do_implicit_reduction", true, "Whether reduction happens in the same cycle as the multiply")
	analyzeCmd.Flags().BoolVar(&doFGSync, "do_fg_sync", false, "Use the (reserved) fine-grained sync path")
	analyzeCmd.Flags().BoolVar(&latencyHiding, "latency_hiding", true, "Overlap compute and NoC transfer delay where possible")
	analyzeCmd.Flags().BoolVar(&doubleBuffering, "double_buffering", true, "Double-buffer the per-PE L1 allocation")
	analyzeCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	analyzeCmd.MarkFlagRequired("dataflow_file")
	analyzeCmd.MarkFlagRequired("layer_file")

	sweepCmd.Flags().StringVar(&sweepConfigFile, "sweep_config", "", "Path to the sweep grid YAML file")
	sweepCmd.Flags().StringVar(&logLevel, "log", "info", "Log level (debug, info, warn, error)")
	sweepCmd.MarkFlagRequired("sweep_config")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(sweepCmd)
}
