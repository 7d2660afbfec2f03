package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/lao-tseu-is-alive/go-murmuration/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/instances"
	"github.com/lao-tseu-is-alive/go-murmuration/pkg/simulation"
)

const spriteSize = 16.0 // sprites are 16x16, drawn facing up

// Sprites are white so the instance color scale tints them directly.
var (
	birdSprite *ebiten.Image
	wideSprite *ebiten.Image
)

func init() {
	// --- Class A: slim bird, wings swept back ---
	design := []string{
		"................",
		".......##.......",
		".......##.......",
		"......####......",
		"......####......",
		".....######.....",
		"....########....",
		"...###.##.###...",
		"..###..##..###..",
		".###...##...###.",
		".##....##....##.",
		".......##.......",
		"......####......",
		".....##..##.....",
		"................",
		"................",
	}
	birdSprite = generateSprite(design, map[rune]color.RGBA{'#': {R: 255, G: 255, B: 255, A: 255}})

	// --- Class B: broad wings, shaded core ---
	wide := []string{
		"................",
		".......@@.......",
		"......@##@......",
		"......@##@......",
		".....@####@.....",
		"...@@######@@...",
		".@@####@@####@@.",
		"@####@@##@@####@",
		"@##@@..##..@@##@",
		"@@.....##.....@@",
		".......##.......",
		"......@##@......",
		".....@#..#@.....",
		"................",
		"................",
		"................",
	}
	wideSprite = generateSprite(wide, map[rune]color.RGBA{
		'#': {R: 255, G: 255, B: 255, A: 255},
		'@': {R: 200, G: 200, B: 200, A: 255},
	})
}

// generateSprite converts an ASCII grid into an Ebiten image
func generateSprite(design []string, palette map[rune]color.RGBA) *ebiten.Image {
	img := ebiten.NewImage(len(design[0]), len(design))
	for y, row := range design {
		for x, char := range row {
			if col, ok := palette[char]; ok {
				img.Set(x, y, col)
			}
		}
	}
	return img
}

// Projection maps world coordinates onto the screen. The world spans
// [-HalfWidth, HalfWidth] x [-HalfHeight, HalfHeight] with y pointing up.
type Projection struct {
	HalfWidth, HalfHeight float64
	CameraZ               float64
	ScreenW, ScreenH      float64
}

// NewProjection builds the projection of cfg's world at the given aspect ratio.
func NewProjection(cfg *simulation.Config, aspect float64, screenW, screenH int) Projection {
	return Projection{
		HalfWidth:  cfg.WorldSize * aspect,
		HalfHeight: cfg.WorldSize,
		CameraZ:    cfg.CameraZ,
		ScreenW:    float64(screenW),
		ScreenH:    float64(screenH),
	}
}

// ToScreen returns the pixel position of p and a depth factor, above 1 for agents near the camera.
func (pr Projection) ToScreen(p geometry.Vector3D) (x, y, depth float64) {
	x = (p.X/pr.HalfWidth + 1) / 2 * pr.ScreenW
	y = (1 - p.Y/pr.HalfHeight) / 2 * pr.ScreenH
	depth = 1
	if pr.CameraZ > p.Z && pr.CameraZ > 0 {
		depth = pr.CameraZ / (pr.CameraZ - p.Z)
	}
	return x, y, depth
}

// ToWorld is the inverse of ToScreen on the z=0 plane.
func (pr Projection) ToWorld(x, y float64) geometry.Vector3D {
	return geometry.NewVector(
		(x/pr.ScreenW*2-1)*pr.HalfWidth,
		(1-y/pr.ScreenH*2)*pr.HalfHeight,
		0,
	)
}

// FlockView draws the instance buffer.
type FlockView struct {
	buffer     *instances.Buffer
	ShowStats  bool
	SpriteSize float64 // on screen size of a scale 1 instance
}

// NewFlockView creates a view reading buf.
func NewFlockView(buf *instances.Buffer) *FlockView {
	return &FlockView{buffer: buf, ShowStats: true, SpriteSize: 10}
}

// Draw renders every instance, class B on top of class A.
func (v *FlockView) Draw(screen *ebiten.Image, pr Projection) {
	op := &ebiten.DrawImageOptions{}
	for _, class := range []simulation.Class{simulation.ClassA, simulation.ClassB} {
		sprite := birdSprite
		if class == simulation.ClassB {
			sprite = wideSprite
		}
		v.buffer.Each(class, func(_ int, inst instances.Instance) {
			if inst.Transform.Opacity <= 0 {
				return
			}
			x, y, depth := pr.ToScreen(inst.Transform.Position)
			size := v.SpriteSize * inst.Transform.Scale * depth / spriteSize

			op.GeoM.Reset()
			op.ColorScale.Reset()
			// Center the sprite
			op.GeoM.Translate(-spriteSize/2, -spriteSize/2)
			op.GeoM.Scale(size, size)
			// Yaw is measured from +x with y up, the screen y axis points down
			op.GeoM.Rotate(math.Pi/2 - inst.Transform.Yaw)
			op.GeoM.Translate(x, y)

			r, g, b, a := inst.RGBA()
			op.ColorScale.Scale(r*a, g*a, b*a, a)
			screen.DrawImage(sprite, op)
		})
	}

	if v.ShowStats {
		st := v.buffer.Stats()
		msg := fmt.Sprintf("tick %d  %s\nA %d  B %d  updates %d\nFPS %0.1f  TPS %0.1f",
			st.Tick, st.State,
			v.buffer.Len(simulation.ClassA), v.buffer.Len(simulation.ClassB), st.LastUpdates,
			ebiten.ActualFPS(), ebiten.ActualTPS())
		ebitenutil.DebugPrintAt(screen, msg, 10, int(pr.ScreenH)-50)
	}
}
