package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Button is a clickable push button firing OnClick once per press.
type Button struct {
	Label   string
	X, Y    float64
	Width   float64
	Height  float64
	Enabled bool
	OnClick func()

	pressed bool // debounce: a held button fires once

	// Styling
	BGColor       color.RGBA
	HoverColor    color.RGBA
	DisabledColor color.RGBA
}

// NewButton creates an enabled button.
func NewButton(x, y, width, height float64, label string, onClick func()) *Button {
	return &Button{
		Label:         label,
		X:             x,
		Y:             y,
		Width:         width,
		Height:        height,
		Enabled:       true,
		OnClick:       onClick,
		BGColor:       color.RGBA{R: 80, G: 120, B: 180, A: 255},
		HoverColor:    color.RGBA{R: 100, G: 150, B: 220, A: 255},
		DisabledColor: color.RGBA{R: 70, G: 70, B: 75, A: 255},
	}
}

// Contains reports whether the screen point is over the button.
func (b *Button) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.Width && y >= b.Y && y <= b.Y+b.Height
}

func (b *Button) hovered() bool {
	mx, my := ebiten.CursorPosition()
	return b.Contains(float64(mx), float64(my))
}

// Update fires OnClick on the first frame of a press over the button.
func (b *Button) Update() {
	if !b.Enabled || !b.hovered() || !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		b.pressed = false
		return
	}
	if !b.pressed && b.OnClick != nil {
		b.OnClick()
	}
	b.pressed = true
}

// Draw renders the button and its centered label.
func (b *Button) Draw(screen *ebiten.Image) {
	bg := b.BGColor
	switch {
	case !b.Enabled:
		bg = b.DisabledColor
	case b.hovered():
		bg = b.HoverColor
	}

	vector.FillRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		bg, true)
	vector.StrokeRect(screen,
		float32(b.X), float32(b.Y),
		float32(b.Width), float32(b.Height),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	// debug font glyphs are 6x16
	tx := b.X + (b.Width-float64(len(b.Label)*6))/2
	ty := b.Y + (b.Height-16)/2
	ebitenutil.DebugPrintAt(screen, b.Label, int(tx), int(ty))
}
