package ui

import (
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// MiniThumbSlider is a horizontal slider with a thumb half the size of
// fyne's, used for the volume control. OnChanged fires for user input only.
type MiniThumbSlider struct {
	widget.BaseWidget
	Min       float64
	Max       float64
	Step      float64
	Value     float64
	OnChanged func(float64)
}

// NewMiniThumbSlider creates a horizontal slider constrained to [min, max]
// in increments of step.
func NewMiniThumbSlider(min, max, step float64) *MiniThumbSlider {
	s := &MiniThumbSlider{Min: min, Max: max, Step: step, Value: min}
	s.ExtendBaseWidget(s)
	return s
}

func (s *MiniThumbSlider) CreateRenderer() fyne.WidgetRenderer {
	r := &miniSliderRenderer{
		s:     s,
		track: canvas.NewRectangle(theme.Color(theme.ColorNameShadow)),
		fill:  canvas.NewRectangle(theme.Color(theme.ColorNamePrimary)),
		thumb: canvas.NewCircle(theme.Color(theme.ColorNameForeground)),
	}
	r.objs = []fyne.CanvasObject{r.track, r.fill, r.thumb}
	return r
}

// SetValue moves the thumb to v and notifies OnChanged when it moved.
func (s *MiniThumbSlider) SetValue(v float64) {
	if s.setValue(v) && s.OnChanged != nil {
		s.OnChanged(s.Value)
	}
}

// SyncValue moves the thumb to v without calling OnChanged, for mirroring
// state that changed elsewhere.
func (s *MiniThumbSlider) SyncValue(v float64) { s.setValue(v) }

func (s *MiniThumbSlider) setValue(v float64) bool {
	if s.Max <= s.Min {
		return false
	}
	v = normalizeSliderValue(s.Min, s.Max, s.Step, v)
	if v == s.Value {
		return false
	}
	s.Value = v
	s.Refresh()
	return true
}

func normalizeSliderValue(min, max, step, value float64) float64 {
	if max <= min {
		return min
	}
	if math.IsNaN(value) {
		return min
	}
	v := clampFloat64(value, min, max)
	if step > 0 {
		n := math.Round((v - min) / step)
		v = clampFloat64(min+n*step, min, max)
	}
	return v
}

// Dragged updates the value based on pointer drag position.
func (s *MiniThumbSlider) Dragged(e *fyne.DragEvent) {
	s.SetValue(s.valueAt(e.Position.X))
}

func (s *MiniThumbSlider) DragEnd() {}

// Tapped moves the thumb to the tapped position.
func (s *MiniThumbSlider) Tapped(e *fyne.PointEvent) {
	s.SetValue(s.valueAt(e.Position.X))
}

// Scrolled nudges the value by one step per wheel notch.
func (s *MiniThumbSlider) Scrolled(ev *fyne.ScrollEvent) {
	if ev == nil {
		return
	}
	step := s.Step
	if step <= 0 {
		step = (s.Max - s.Min) / 20
	}
	switch {
	case ev.Scrolled.DY > 0:
		s.SetValue(s.Value + step)
	case ev.Scrolled.DY < 0:
		s.SetValue(s.Value - step)
	}
}

func (s *MiniThumbSlider) valueAt(px float32) float64 {
	w := s.Size().Width
	if w <= 0 {
		return s.Value
	}
	frac := clampFloat64(float64(px/w), 0, 1)
	return s.Min + frac*(s.Max-s.Min)
}

// MinSize keeps a comfortable pointer target.
func (s *MiniThumbSlider) MinSize() fyne.Size {
	return fyne.NewSize(100, theme.IconInlineSize())
}

type miniSliderRenderer struct {
	s     *MiniThumbSlider
	track *canvas.Rectangle
	fill  *canvas.Rectangle
	thumb *canvas.Circle
	objs  []fyne.CanvasObject
}

func (r *miniSliderRenderer) Layout(sz fyne.Size) {
	trackH := float32(4)
	y := (sz.Height - trackH) / 2
	r.track.Move(fyne.NewPos(0, y))
	r.track.Resize(fyne.NewSize(sz.Width, trackH))

	frac := float32(0)
	if span := r.s.Max - r.s.Min; span > 0 {
		frac = float32(clampFloat64((r.s.Value-r.s.Min)/span, 0, 1))
	}
	fillW := sz.Width * frac
	r.fill.Move(fyne.NewPos(0, y))
	r.fill.Resize(fyne.NewSize(fillW, trackH))

	thumbR := theme.IconInlineSize() / 4
	cx := fillW
	if cx < thumbR {
		cx = thumbR
	}
	if cx > sz.Width-thumbR {
		cx = sz.Width - thumbR
	}
	r.thumb.Resize(fyne.NewSize(thumbR*2, thumbR*2))
	r.thumb.Move(fyne.NewPos(cx-thumbR, sz.Height/2-thumbR))
}

func (r *miniSliderRenderer) MinSize() fyne.Size { return r.s.MinSize() }

func (r *miniSliderRenderer) Refresh() {
	r.track.FillColor = theme.Color(theme.ColorNameShadow)
	r.fill.FillColor = theme.Color(theme.ColorNamePrimary)
	r.thumb.FillColor = theme.Color(theme.ColorNameForeground)
	r.Layout(r.s.Size())
	canvas.Refresh(r.track)
	canvas.Refresh(r.fill)
	canvas.Refresh(r.thumb)
}

func (r *miniSliderRenderer) Destroy() {}

func (r *miniSliderRenderer) Objects() []fyne.CanvasObject { return r.objs }
