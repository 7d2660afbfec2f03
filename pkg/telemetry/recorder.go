package telemetry

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/simulation"
)

// FrameRecord is one CSV row: the size of the change set of one tick.
type FrameRecord struct {
	Tick       uint64 `csv:"tick"`
	State      string `csv:"state"`
	Updates    int    `csv:"updates"`
	Transforms int    `csv:"transform_updates"`
	Colors     int    `csv:"color_updates"`
	ColorPass  bool   `csv:"color_pass"`
}

// Recorder is a simulation.RenderBridge that keeps a FrameRecord per frame
// and forwards the frame to the next bridge, if any.
type Recorder struct {
	mu      sync.Mutex
	records []FrameRecord
	next    simulation.RenderBridge
}

// NewRecorder creates a recorder in front of next, which may be nil.
func NewRecorder(next simulation.RenderBridge) *Recorder {
	return &Recorder{next: next}
}

// Apply implements simulation.RenderBridge.
func (r *Recorder) Apply(frame *simulation.FrameUpdate) {
	r.mu.Lock()
	r.records = append(r.records, FrameRecord{
		Tick:       frame.Tick,
		State:      frame.State.String(),
		Updates:    frame.Len(),
		Transforms: frame.Transforms,
		Colors:     frame.Colors,
		ColorPass:  frame.ColorPass,
	})
	r.mu.Unlock()

	if r.next != nil {
		r.next.Apply(frame)
	}
}

// Records returns a copy of the recorded frames.
func (r *Recorder) Records() []FrameRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]FrameRecord, len(r.records))
	copy(out, r.records)
	return out
}

// UpdateSummary describes the distribution of updates per frame.
type UpdateSummary struct {
	Frames     int
	Mean       float64
	StdDev     float64
	Max        int
	Transforms int
	Colors     int
}

// Summary aggregates the running frames. The priming frame and the warm-up
// frames are left out, they do not reflect the steady state.
func (r *Recorder) Summary() UpdateSummary {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s UpdateSummary
	updates := make([]float64, 0, len(r.records))
	for _, rec := range r.records {
		if rec.State != simulation.Running.String() || rec.Tick == 0 {
			continue
		}
		updates = append(updates, float64(rec.Updates))
		s.Max = max(s.Max, rec.Updates)
		s.Transforms += rec.Transforms
		s.Colors += rec.Colors
	}
	s.Frames = len(updates)
	if s.Frames > 0 {
		s.Mean = stat.Mean(updates, nil)
	}
	if s.Frames > 1 {
		s.StdDev = stat.StdDev(updates, nil)
	}
	return s
}

// WriteCSV writes the records, with a header line, to w.
func (r *Recorder) WriteCSV(w io.Writer) error {
	records := r.Records()
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing frame records: %w", err)
	}
	return nil
}

// SaveCSV writes the records to the file at path.
func (r *Recorder) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := r.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
