package main

import (
	"errors"
	"flag"
	"math"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/tochemey/goakt/v3/log"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/telemetry"
)

func main() {
	configFile := flag.String("config", "", "JSON, YAML or TOML file overriding the defaults")
	ticks := flag.Int("ticks", 600, "number of ticks to run")
	agents := flag.Int("agents", 0, "agent count, 0 keeps the configured value")
	seed := flag.Uint64("seed", 0, "random seed, 0 keeps the configured value")
	csvFile := flag.String("csv", "", "write one CSV row per tick to this file")
	sweep := flag.Bool("pointer", false, "sweep a pointer across the world")
	flag.Parse()

	logger := log.New(log.InfoLevel, os.Stdout)

	// 1. Configuration
	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		loaded, err := simulation.LoadConfig(*configFile)
		if err != nil {
			logger.Fatalf("error loading config: %v", err)
		}
		cfg = loaded
	}
	if *agents > 0 {
		cfg.AgentCount = *agents
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	// 2. Simulation with telemetry
	perf := telemetry.NewPerfCollector(*ticks)
	recorder := telemetry.NewRecorder(nil)
	sim, err := simulation.New(*cfg,
		simulation.WithLogger(logger),
		simulation.WithBridge(recorder),
		simulation.WithPerf(perf))
	if err != nil {
		logger.Fatalf("error creating murmuration: %v", err)
	}

	// 3. Run
	bounds := sim.Bounds()
	for i := 0; i < *ticks; i++ {
		if *sweep {
			phase := 2 * math.Pi * float64(i) / float64(*ticks)
			sim.SetPointer(simulation.Pointer{
				Position: geometry.NewVector(math.Cos(phase)*bounds.X/2, math.Sin(phase)*bounds.Y/2, 0),
				Active:   true,
			})
		}
		if _, err := sim.Step(); err != nil {
			if errors.Is(err, simulation.ErrCorruptState) {
				logger.Errorf("murmuration stopped at tick %d: %v", sim.Tick(), err)
				break
			}
			logger.Fatal(err)
		}
	}

	// 4. Report
	st := sim.Stats()
	summary := recorder.Summary()
	logger.Infof("%s ticks, %d agents (%d/%d), %d wave centers, %d waves",
		humanize.Comma(int64(st.Tick)), st.Agents, st.ClassA, st.ClassB, st.ActiveCenters, st.ActiveWaves)
	logger.Infof("updates per frame: mean %.1f ±%.1f max %d over %d frames (%s transforms, %s colors)",
		summary.Mean, summary.StdDev, summary.Max, summary.Frames,
		humanize.Comma(int64(summary.Transforms)), humanize.Comma(int64(summary.Colors)))
	logger.Infof("perf: %s", perf.Stats())

	if *csvFile != "" {
		if err := recorder.SaveCSV(*csvFile); err != nil {
			logger.Fatalf("error writing csv: %v", err)
		}
		logger.Infof("frame records written to %s", *csvFile)
	}
}
