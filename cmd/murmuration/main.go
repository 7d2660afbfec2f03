package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"os"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/instances"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/telemetry"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/ui"
)

const (
	screenWidth  = 1280
	screenHeight = 720
	askTimeout   = 2 * time.Second
)

// Game renders the flock and feeds the pointer and viewport back to the FlockActor.
type Game struct {
	ctx      context.Context
	System   actor.ActorSystem
	flockPID *actor.PID
	cfg      *simulation.Config
	logger   log.Logger

	buffer *instances.Buffer
	view   *ui.FlockView
	perf   *telemetry.PerfCollector

	// UI Controls
	panel           *ui.Panel
	widgetCount     *ui.Slider
	widgetSpeed     *ui.Slider
	widgetAvoidance *ui.Slider
	widgetStats     *ui.Checkbox
	widgetPerf      *ui.Checkbox
	status          string

	// read by the actor goroutine through simulation.InputSource
	mu      sync.Mutex
	pointer simulation.Pointer
	aspect  float64
	width   int
	height  int

	lastUpdate time.Time
}

func NewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem, logger log.Logger) (*Game, error) {
	a, b := cfg.ClassCounts()
	g := &Game{
		ctx:    ctx,
		System: system,
		cfg:    cfg,
		logger: logger,
		buffer: instances.NewBuffer(a, b),
		perf:   telemetry.NewPerfCollector(120),
		aspect: float64(screenWidth) / float64(screenHeight),
		width:  screenWidth,
		height: screenHeight,
	}
	g.view = ui.NewFlockView(g.buffer)

	// 1. Spawn the flock actor, the game is its input source
	cfg.AspectRatio = g.aspect
	flock := simulation.NewFlockActor(*cfg, g, simulation.WithBridge(g.buffer), simulation.WithPerf(g.perf))
	pid, err := system.Spawn(ctx, "flock", flock)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn flock: %w", err)
	}
	g.flockPID = pid

	// 2. Control panel
	g.panel = ui.NewPanel("Murmuration", 10, 10, 240, 320)
	g.panel.AddSection("Flock (Apply Required)")
	g.widgetCount = g.panel.AddSlider("Agents", 100, 2000, 100, float64(cfg.AgentCount), "%.0f")
	g.widgetSpeed = g.panel.AddSlider("Speed", 0.1, 2.0, 0.1, cfg.SpeedMultiplier, "%.1f")
	g.widgetAvoidance = g.panel.AddSlider("Avoidance", 0, 5, 0.5, cfg.AvoidanceStrength, "%.1f")
	g.panel.AddButton("Apply", g.applySettings)

	g.panel.AddSection("Visualization")
	g.widgetStats = g.panel.AddCheckbox("Show Stats", true)
	g.widgetPerf = g.panel.AddCheckbox("Show Tick Timings", false)
	return g, nil
}

// Pointer implements simulation.InputSource.
func (g *Game) Pointer() simulation.Pointer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pointer
}

// Aspect implements simulation.InputSource.
func (g *Game) Aspect() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.aspect
}

func (g *Game) projection() ui.Projection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ui.NewProjection(g.cfg, g.aspect, g.width, g.height)
}

// applySettings sends the panel values and waits for the flock's verdict.
func (g *Game) applySettings() {
	settings := simulation.Settings{
		AgentCount:        g.widgetCount.Int(),
		SpeedMultiplier:   g.widgetSpeed.Value,
		AvoidanceStrength: g.widgetAvoidance.Value,
	}
	msg, err := simulation.SettingsMessage(settings)
	if err != nil {
		g.status = err.Error()
		return
	}
	reply, err := actor.Ask(g.ctx, g.flockPID, msg, askTimeout)
	if err != nil {
		g.status = fmt.Sprintf("flock did not answer: %v", err)
		return
	}
	answer, ok := reply.(*structpb.Struct)
	if !ok {
		g.status = fmt.Sprintf("unexpected reply %T", reply)
		return
	}
	st, err := simulation.StatsFromMessage(answer)
	if err != nil {
		g.status = err.Error()
		g.logger.Warnf("settings rejected: %v", err)
		return
	}
	g.status = fmt.Sprintf("%d agents (%d/%d)", st.Agents, st.ClassA, st.ClassB)
}

func (g *Game) Update() error {
	now := time.Now()
	frame := time.Second / 60
	if !g.lastUpdate.IsZero() {
		frame = now.Sub(g.lastUpdate)
	}
	g.lastUpdate = now

	// 1. Update UI Panel
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.panel.Visible = !g.panel.Visible
	}
	g.panel.Update()
	g.view.ShowStats = g.widgetStats.Value

	// 2. Pointer in world coordinates, inactive over the panel or outside the window
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	pr := g.projection()
	inside := x >= 0 && y >= 0 && x < pr.ScreenW && y < pr.ScreenH
	g.mu.Lock()
	g.pointer = simulation.Pointer{
		Position: pr.ToWorld(x, y),
		Active:   inside && !g.panel.Contains(x, y),
	}
	g.mu.Unlock()

	// 3. Trigger Simulation Step
	return actor.Tell(g.ctx, g.flockPID, simulation.TickMessage(frame))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 28, A: 255})

	// 1. Draw the flock from the instance buffer
	g.view.Draw(screen, g.projection())

	// 2. Draw UI Panel
	g.panel.Draw(screen)
	if g.status != "" && g.panel.Visible {
		ebitenutil.DebugPrintAt(screen, g.status, int(g.panel.X+10), int(g.panel.Y+g.panel.Height+5))
	}

	// 3. Tick timings next to the panel
	if g.widgetPerf.Value {
		ebitenutil.DebugPrintAt(screen, g.perf.Stats().String(), 260, 10)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth > 0 && outsideHeight > 0 {
		g.mu.Lock()
		g.width, g.height = outsideWidth, outsideHeight
		g.aspect = float64(outsideWidth) / float64(outsideHeight)
		g.mu.Unlock()
	}
	return outsideWidth, outsideHeight
}

func main() {
	configFile := flag.String("config", "", "JSON, YAML or TOML file overriding the defaults")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	// 1. Configuration
	cfg := simulation.DefaultConfig()
	if *configFile != "" {
		loaded, err := simulation.LoadConfig(*configFile)
		if err != nil {
			logger.Fatalf("error loading config: %v", err)
		}
		cfg = loaded
	}

	// 2. Actor system
	ctx := context.Background()
	system, err := actor.NewActorSystem("Murmuration", actor.WithLogger(logger))
	if err != nil {
		logger.Fatalf("error creating actor system: %v", err)
	}
	if err := system.Start(ctx); err != nil {
		logger.Fatalf("error starting actor system: %v", err)
	}
	defer system.Stop(ctx)

	game, err := NewGame(ctx, cfg, system, logger)
	if err != nil {
		logger.Fatal(err)
	}

	// 3. Window
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Murmuration")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(game); err != nil {
		logger.Error(err)
	}
}
