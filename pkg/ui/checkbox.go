package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Checkbox toggles a boolean display option.
type Checkbox struct {
	Label    string
	Value    bool
	X, Y     float64
	Size     float64
	OnToggle func(value bool)

	pressed bool
}

// NewCheckbox creates a checkbox with the default 16px box.
func NewCheckbox(x, y float64, label string, value bool) *Checkbox {
	return &Checkbox{
		Label: label,
		Value: value,
		X:     x,
		Y:     y,
		Size:  16,
	}
}

// Contains reports whether the screen point is over the box.
func (c *Checkbox) Contains(x, y float64) bool {
	return x >= c.X && x <= c.X+c.Size && y >= c.Y && y <= c.Y+c.Size
}

// Update toggles the value once per press over the box.
func (c *Checkbox) Update() {
	mx, my := ebiten.CursorPosition()
	if !c.Contains(float64(mx), float64(my)) || !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		c.pressed = false
		return
	}
	if !c.pressed {
		c.Value = !c.Value
		if c.OnToggle != nil {
			c.OnToggle(c.Value)
		}
	}
	c.pressed = true
}

// Draw renders the box, filled when checked.
func (c *Checkbox) Draw(screen *ebiten.Image) {
	vector.StrokeRect(screen,
		float32(c.X), float32(c.Y),
		float32(c.Size), float32(c.Size),
		2, color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)

	if c.Value {
		vector.FillRect(screen,
			float32(c.X+3), float32(c.Y+3),
			float32(c.Size-6), float32(c.Size-6),
			color.RGBA{R: 255, G: 140, B: 0, A: 255}, true)
	}
}
