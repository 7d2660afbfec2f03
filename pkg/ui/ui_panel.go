package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Widget is anything the panel can lay out in a column.
type Widget interface {
	Update()
	Draw(screen *ebiten.Image)
	Height() float64
	MoveTo(y float64)
	Caption() string
}

type sliderWidget struct{ *Slider }

func (s sliderWidget) Height() float64  { return s.H + 25 }
func (s sliderWidget) MoveTo(y float64) { s.Y = y }
func (s sliderWidget) Caption() string  { return s.Text() }

type checkboxWidget struct{ *Checkbox }

func (c checkboxWidget) Height() float64  { return c.Size + 20 }
func (c checkboxWidget) MoveTo(y float64) { c.Y = y }
func (c checkboxWidget) Caption() string  { return c.Label }

type buttonWidget struct{ *Button }

func (b buttonWidget) Height() float64  { return b.Button.Height + 10 }
func (b buttonWidget) MoveTo(y float64) { b.Y = y - 15 }
func (b buttonWidget) Caption() string  { return "" }

// Panel is a scrollable column of widgets grouped in sections.
type Panel struct {
	Title         string
	X, Y          float64
	Width, Height float64
	Visible       bool
	ScrollOffset  float64

	// Styling
	BGColor      color.RGBA
	BorderColor  color.RGBA
	SectionColor color.RGBA

	widgets  []Widget
	sections []section
}

type section struct {
	title string
	start int // index of the first widget of the section
}

// NewPanel creates a visible, empty panel.
func NewPanel(title string, x, y, width, height float64) *Panel {
	return &Panel{
		Title:        title,
		X:            x,
		Y:            y,
		Width:        width,
		Height:       height,
		Visible:      true,
		BGColor:      color.RGBA{R: 40, G: 40, B: 45, A: 230},
		BorderColor:  color.RGBA{R: 100, G: 100, B: 110, A: 255},
		SectionColor: color.RGBA{R: 60, G: 60, B: 70, A: 255},
	}
}

// AddSection starts a new section; the following widgets belong to it.
func (p *Panel) AddSection(title string) {
	p.sections = append(p.sections, section{title: title, start: len(p.widgets)})
}

// AddSlider appends a slider snapping to step. format is the fmt verb of the displayed value.
func (p *Panel) AddSlider(label string, min, max, step, value float64, format string) *Slider {
	s := NewSlider(p.X+10, 0, p.Width-20, label, min, max, value)
	s.Step = step
	s.Format = format
	s.Set(value)
	p.add(sliderWidget{s})
	return s
}

// AddCheckbox appends a checkbox.
func (p *Panel) AddCheckbox(label string, value bool) *Checkbox {
	c := NewCheckbox(p.X+10, 0, label, value)
	p.add(checkboxWidget{c})
	return c
}

// AddButton appends a full width button.
func (p *Panel) AddButton(label string, onClick func()) *Button {
	b := NewButton(p.X+10, 0, p.Width-20, 24, label, onClick)
	p.add(buttonWidget{b})
	return b
}

func (p *Panel) add(w Widget) {
	if len(p.sections) == 0 {
		p.AddSection("")
	}
	p.widgets = append(p.widgets, w)
	p.layout()
}

// Contains reports whether the screen point is over the visible panel.
func (p *Panel) Contains(x, y float64) bool {
	return p.Visible && x >= p.X && x <= p.X+p.Width && y >= p.Y && y <= p.Y+p.Height
}

// Update scrolls the panel and forwards input to the widgets.
func (p *Panel) Update() {
	if !p.Visible {
		return
	}

	mx, my := ebiten.CursorPosition()
	if _, dy := ebiten.Wheel(); dy != 0 && p.Contains(float64(mx), float64(my)) {
		p.ScrollOffset -= dy * 20
		maxScroll := max(0, p.contentHeight()-p.Height+40)
		p.ScrollOffset = min(max(p.ScrollOffset, 0), maxScroll)
		p.layout()
	}

	for _, w := range p.widgets {
		w.Update()
	}
}

// layout places every widget according to the scroll offset.
func (p *Panel) layout() {
	y := p.Y + 30 - p.ScrollOffset
	next := 0
	for i, w := range p.widgets {
		for next < len(p.sections) && p.sections[next].start == i {
			y += 25
			next++
		}
		w.MoveTo(y + 15)
		y += w.Height()
	}
}

func (p *Panel) contentHeight() float64 {
	height := 30 + float64(len(p.sections))*25
	for _, w := range p.widgets {
		height += w.Height()
	}
	return height
}

func (p *Panel) visible(y float64) bool {
	return y >= p.Y+20 && y <= p.Y+p.Height-20
}

// Draw renders the panel, section headers, captions and widgets.
func (p *Panel) Draw(screen *ebiten.Image) {
	if !p.Visible {
		return
	}

	vector.FillRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		p.BGColor, true)
	vector.StrokeRect(screen,
		float32(p.X), float32(p.Y),
		float32(p.Width), float32(p.Height),
		2, p.BorderColor, true)
	ebitenutil.DebugPrintAt(screen, p.Title, int(p.X+10), int(p.Y+5))

	y := p.Y + 30 - p.ScrollOffset
	next := 0
	for i, w := range p.widgets {
		for next < len(p.sections) && p.sections[next].start == i {
			if title := p.sections[next].title; title != "" && p.visible(y) {
				vector.FillRect(screen,
					float32(p.X+5), float32(y),
					float32(p.Width-10), 20,
					p.SectionColor, true)
				ebitenutil.DebugPrintAt(screen, title, int(p.X+10), int(y+2))
			}
			y += 25
			next++
		}
		if p.visible(y) {
			if caption := w.Caption(); caption != "" {
				ebitenutil.DebugPrintAt(screen, caption, int(p.X+10), int(y))
			}
			w.Draw(screen)
		}
		y += w.Height()
	}
}
