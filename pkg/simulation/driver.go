package simulation

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// TickMessage builds the message that advances the flock by one tick.
func TickMessage(frameTime time.Duration) *durationpb.Duration {
	return durationpb.New(frameTime)
}

// SettingsMessage builds the reconfiguration message of the given settings.
func SettingsMessage(s Settings) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"agentCount":        s.AgentCount,
		"speedMultiplier":   s.SpeedMultiplier,
		"avoidanceStrength": s.AvoidanceStrength,
	})
}

// StatsRequest builds the stats query message.
func StatsRequest() *emptypb.Empty {
	return &emptypb.Empty{}
}

// StatsFromMessage decodes the reply to a stats query or a reconfiguration.
// A rejected reconfiguration carries its reason in the error field.
func StatsFromMessage(msg *structpb.Struct) (Stats, error) {
	f := msg.GetFields()
	st := Stats{
		ID:            f["id"].GetStringValue(),
		Tick:          uint64(f["tick"].GetNumberValue()),
		State:         f["state"].GetStringValue(),
		Agents:        int(f["agents"].GetNumberValue()),
		ClassA:        int(f["classA"].GetNumberValue()),
		ClassB:        int(f["classB"].GetNumberValue()),
		ActiveCenters: int(f["activeCenters"].GetNumberValue()),
		ActiveWaves:   int(f["activeWaves"].GetNumberValue()),
		Buckets:       int(f["buckets"].GetNumberValue()),
	}
	if reason := f["error"].GetStringValue(); reason != "" {
		return st, fmt.Errorf("%w: %s", ErrInvalidConfig, reason)
	}
	return st, nil
}

func statsMessage(st Stats, rejected error) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":            structpb.NewStringValue(st.ID),
		"tick":          structpb.NewNumberValue(float64(st.Tick)),
		"state":         structpb.NewStringValue(st.State),
		"agents":        structpb.NewNumberValue(float64(st.Agents)),
		"classA":        structpb.NewNumberValue(float64(st.ClassA)),
		"classB":        structpb.NewNumberValue(float64(st.ClassB)),
		"activeCenters": structpb.NewNumberValue(float64(st.ActiveCenters)),
		"activeWaves":   structpb.NewNumberValue(float64(st.ActiveWaves)),
		"buckets":       structpb.NewNumberValue(float64(st.Buckets)),
	}
	if rejected != nil {
		fields["error"] = structpb.NewStringValue(rejected.Error())
	}
	return &structpb.Struct{Fields: fields}
}

// FlockActor drives a Simulation from its mailbox: ticks, reconfiguration
// and stats queries are serialized, so the instance never sees concurrent access.
type FlockActor struct {
	cfg    Config
	sim    *Simulation
	inputs InputSource
	opts   []Option

	// --- Benchmark Stats ---
	tickCount   int
	updateCount int
	lastFrame   time.Duration
	lastLogTime time.Time
}

// NewFlockActor creates the driver. The simulation itself is built in PreStart.
func NewFlockActor(cfg Config, inputs InputSource, opts ...Option) *FlockActor {
	return &FlockActor{
		cfg:         cfg,
		inputs:      inputs,
		opts:        opts,
		lastLogTime: time.Now(),
	}
}

func (f *FlockActor) PreStart(ctx *actor.Context) error {
	opts := append([]Option{WithLogger(ctx.ActorSystem().Logger())}, f.opts...)
	sim, err := New(f.cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to create murmuration: %w", err)
	}
	f.sim = sim
	return nil
}

func (f *FlockActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Infof("Flock %s started with %d agents", f.sim.ID(), len(f.sim.Agents()))

	// 1. The simulation step, driven by the render loop
	case *durationpb.Duration:
		f.lastFrame = msg.AsDuration()
		f.step(ctx)

	// 2. New settings from the control panel
	case *structpb.Struct:
		f.reconfigure(ctx, msg)

	// 3. Stats query
	case *emptypb.Empty:
		ctx.Response(statsMessage(f.sim.Stats(), nil))

	default:
		ctx.Unhandled()
	}
}

func (f *FlockActor) step(ctx *actor.ReceiveContext) {
	if f.inputs != nil {
		f.sim.SetAspect(f.inputs.Aspect())
		f.sim.SetPointer(f.inputs.Pointer())
	}
	frame, err := f.sim.Step()
	if err != nil {
		ctx.Logger().Errorf("Flock %s step failed: %v", f.sim.ID(), err)
		ctx.Err(err)
		return
	}
	f.tickCount++
	f.updateCount += frame.Len()
	f.logBenchmarks(ctx)
}

// reconfigure swaps in a new instance, or keeps the current one when the
// settings are rejected. The reply carries the stats of whichever instance is live.
func (f *FlockActor) reconfigure(ctx *actor.ReceiveContext, msg *structpb.Struct) {
	settings, err := SettingsFromMap(msg.AsMap())
	if err == nil {
		var next *Simulation
		if next, err = f.sim.Reconfigure(settings); err == nil {
			ctx.Logger().Infof("Flock %s replaced by %s (%d agents, speed x%.1f, avoidance %.1f)",
				f.sim.ID(), next.ID(), settings.AgentCount, settings.SpeedMultiplier, settings.AvoidanceStrength)
			f.sim = next
			f.cfg = next.Config()
		}
	}
	if err != nil {
		ctx.Logger().Warnf("Flock %s rejected settings: %v", f.sim.ID(), err)
	}
	ctx.Response(statsMessage(f.sim.Stats(), err))
}

func (f *FlockActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(f.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %s/sec | instance updates: %s/sec | frame: %s | agents: %s",
			humanize.Comma(int64(f.tickCount)),
			humanize.Comma(int64(f.updateCount)),
			f.lastFrame,
			humanize.Comma(int64(len(f.sim.Agents()))))
		f.tickCount = 0
		f.updateCount = 0
		f.lastLogTime = time.Now()
	}
}

func (f *FlockActor) PostStop(ctx *actor.Context) error {
	if f.sim != nil {
		ctx.ActorSystem().Logger().Infof("Flock %s is shutdown after %d ticks", f.sim.ID(), f.sim.Tick())
	}
	return nil
}
