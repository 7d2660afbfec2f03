package ui

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Slider is a horizontal value picker snapping to Step.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
	Step     float64
	Format   string // fmt verb used to display Value, "%.1f" when empty
	X, Y     float64
	W, H     float64

	// OnChange is called when a drag moves the value to a new step.
	OnChange func(value float64)
}

// NewSlider creates a slider with a continuous range.
func NewSlider(x, y, width float64, label string, min, max, value float64) *Slider {
	s := &Slider{
		Label: label,
		Min:   min,
		Max:   max,
		X:     x,
		Y:     y,
		W:     width,
		H:     12,
	}
	s.Set(value)
	return s
}

// Set clamps value into [Min, Max] and snaps it to Step.
func (s *Slider) Set(value float64) {
	value = math.Max(s.Min, math.Min(s.Max, value))
	if s.Step > 0 {
		value = s.Min + math.Round((value-s.Min)/s.Step)*s.Step
		value = math.Min(s.Max, value)
	}
	s.Value = value
}

// Int returns the value rounded to the nearest integer.
func (s *Slider) Int() int {
	return int(math.Round(s.Value))
}

// Text is the label followed by the formatted value.
func (s *Slider) Text() string {
	format := s.Format
	if format == "" {
		format = "%.1f"
	}
	return s.Label + ": " + fmt.Sprintf(format, s.Value)
}

// Contains reports whether the screen point is over the slider track.
func (s *Slider) Contains(x, y float64) bool {
	return x >= s.X && x <= s.X+s.W && y >= s.Y && y <= s.Y+s.H
}

// Update follows the mouse while the left button is held over the track.
func (s *Slider) Update() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return
	}
	mx, my := ebiten.CursorPosition()
	if !s.Contains(float64(mx), float64(my)) {
		return
	}
	previous := s.Value
	s.Set(s.Min + (float64(mx)-s.X)/s.W*(s.Max-s.Min))
	if s.Value != previous && s.OnChange != nil {
		s.OnChange(s.Value)
	}
}

// Draw renders the track and the filled part.
func (s *Slider) Draw(screen *ebiten.Image) {
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W), float32(s.H), color.RGBA{R: 80, G: 80, B: 80, A: 255}, true)

	ratio := 0.0
	if s.Max > s.Min {
		ratio = (s.Value - s.Min) / (s.Max - s.Min)
	}
	vector.FillRect(screen, float32(s.X), float32(s.Y), float32(s.W*ratio), float32(s.H), color.RGBA{R: 200, G: 200, B: 200, A: 255}, true)
}
