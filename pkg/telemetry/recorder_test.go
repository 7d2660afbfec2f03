package telemetry

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/simulation"
)

func frame(tick uint64, state simulation.State, transforms, colors int) *simulation.FrameUpdate {
	f := &simulation.FrameUpdate{Tick: tick, State: state, Transforms: transforms, Colors: colors}
	for i := 0; i < max(transforms, colors); i++ {
		f.Updates = append(f.Updates, simulation.InstanceUpdate{ID: i})
	}
	return f
}

func TestRecorder_ForwardsAndSummarizes(t *testing.T) {
	var forwarded int
	r := NewRecorder(simulation.RenderBridgeFunc(func(*simulation.FrameUpdate) { forwarded++ }))

	r.Apply(frame(0, simulation.Warming, 100, 100)) // priming
	r.Apply(frame(1, simulation.Warming, 0, 0))
	r.Apply(frame(2, simulation.Running, 10, 0))
	r.Apply(frame(3, simulation.Running, 20, 5))
	r.Apply(frame(4, simulation.Running, 30, 0))

	if forwarded != 5 {
		t.Errorf("Forwarded %d frames; want 5", forwarded)
	}
	if got := len(r.Records()); got != 5 {
		t.Fatalf("Recorded %d frames; want 5", got)
	}

	s := r.Summary()
	if s.Frames != 3 || s.Max != 30 || s.Transforms != 60 || s.Colors != 5 {
		t.Errorf("Summary = %+v", s)
	}
	if math.Abs(s.Mean-20) > 1e-9 || math.Abs(s.StdDev-10) > 1e-9 {
		t.Errorf("Mean/StdDev = %v/%v; want 20/10", s.Mean, s.StdDev)
	}
}

func TestRecorder_WriteCSV(t *testing.T) {
	r := NewRecorder(nil)
	r.Apply(frame(0, simulation.Warming, 2, 2))
	r.Apply(frame(1, simulation.Running, 1, 0))

	var buf bytes.Buffer
	if err := r.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines; want header + 2:\n%s", len(lines), buf.String())
	}
	if want := "tick,state,updates,transform_updates,color_updates,color_pass"; lines[0] != want {
		t.Errorf("Header = %q; want %q", lines[0], want)
	}
	if !strings.HasPrefix(lines[2], "1,running,1,1,0,") {
		t.Errorf("Row = %q", lines[2])
	}

	path := filepath.Join(t.TempDir(), "frames.csv")
	if err := r.SaveCSV(path); err != nil {
		t.Fatalf("SaveCSV() error = %v", err)
	}
	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(saved, buf.Bytes()) {
		t.Errorf("Saved file differs from WriteCSV output")
	}
}
