// Package telemetry measures the murmuration: per phase tick timings over a
// rolling window, and a per frame record of how many instances were pushed
// to the renderer, exportable as CSV.
package telemetry

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/simulation"
)

// perfSample holds timing data for a single tick.
type perfSample struct {
	tick   time.Duration
	phases map[string]time.Duration
}

// PerfCollector tracks tick timings over a rolling window.
// It implements simulation.PerfRecorder and may be read from another goroutine.
type PerfCollector struct {
	mu sync.Mutex

	window  int
	samples []perfSample
	next    int
	count   int

	current    map[string]time.Duration
	tickStart  time.Time
	phaseStart time.Time
	phase      string

	clock func() time.Time
}

// NewPerfCollector creates a collector averaging over window ticks
// (60 is one second at 60 TPS).
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		window:  window,
		samples: make([]perfSample, window),
		current: make(map[string]time.Duration),
		clock:   time.Now,
	}
}

// StartTick begins timing a new tick.
func (p *PerfCollector) StartTick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickStart = p.clock()
	p.current = make(map[string]time.Duration, len(simulation.Phases))
	p.phase = ""
}

// StartPhase closes the running phase, if any, and starts timing the next one.
func (p *PerfCollector) StartPhase(phase string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

// EndTick closes the last phase and records the sample.
func (p *PerfCollector) EndTick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := p.clock()
	p.closePhase(now)

	p.samples[p.next] = perfSample{tick: now.Sub(p.tickStart), phases: p.current}
	p.next = (p.next + 1) % p.window
	if p.count < p.window {
		p.count++
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
		p.phase = ""
	}
}

// PerfStats holds aggregated timings over the current window.
type PerfStats struct {
	Samples        int
	MeanTick       time.Duration
	StdDevTick     time.Duration
	P95Tick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64
	// PhasePct is the share of the mean tick spent in each phase.
	PhasePct map[string]float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := PerfStats{Samples: p.count, PhasePct: make(map[string]float64)}
	if p.count == 0 {
		return st
	}

	ticks := make([]float64, p.count)
	phaseSum := make(map[string]float64)
	for i := 0; i < p.count; i++ {
		s := p.samples[i]
		ticks[i] = float64(s.tick)
		for phase, d := range s.phases {
			phaseSum[phase] += float64(d)
		}
	}

	mean := stat.Mean(ticks, nil)
	st.MeanTick = time.Duration(mean)
	if p.count > 1 {
		st.StdDevTick = time.Duration(stat.StdDev(ticks, nil))
	}
	slices.Sort(ticks)
	st.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))
	st.MaxTick = time.Duration(ticks[len(ticks)-1])

	if mean > 0 {
		st.TicksPerSecond = float64(time.Second) / mean
		for phase, sum := range phaseSum {
			st.PhasePct[phase] = sum / float64(p.count) / mean * 100
		}
	}
	return st
}

// String renders the stats as a single log line.
func (s PerfStats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %s ±%s p95 %s max %s | %.0f ticks/sec",
		s.MeanTick.Round(time.Microsecond), s.StdDevTick.Round(time.Microsecond),
		s.P95Tick.Round(time.Microsecond), s.MaxTick.Round(time.Microsecond), s.TicksPerSecond)
	for _, phase := range simulation.Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			fmt.Fprintf(&b, " | %s %.1f%%", phase, pct)
		}
	}
	return b.String()
}
