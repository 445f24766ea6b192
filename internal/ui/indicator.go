package ui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"

	"github.com/edward-ap/phradio/internal/playback"
)

var (
	idleColor  = color.NRGBA{0x80, 0x80, 0x80, 0xFF}
	errorColor = color.NRGBA{0xE5, 0x39, 0x35, 0xFF}
)

// StreamIndicator is a small dot next to the player status: grey when idle,
// blinking amber while buffering, breathing green when live and red after a
// failure.
type StreamIndicator struct {
	wrap   *fyne.Container
	circle *canvas.Circle

	mu     sync.Mutex
	status playback.Status
	stop   chan struct{}
}

// NewStreamIndicator constructs a StreamIndicator with the given diameter.
func NewStreamIndicator(diameter float32) *StreamIndicator {
	c := canvas.NewCircle(idleColor)
	c.StrokeColor = color.NRGBA{}
	inner := container.New(layout.NewGridWrapLayout(fyne.NewSize(diameter, diameter)), c)
	return &StreamIndicator{wrap: container.NewCenter(inner), circle: c}
}

// CanvasObject returns the fyne object suitable for embedding in layouts.
func (s *StreamIndicator) CanvasObject() fyne.CanvasObject { return s.wrap }

// SetStatus switches the indicator to the look of st.
func (s *StreamIndicator) SetStatus(st playback.Status) {
	s.mu.Lock()
	if st == s.status && (s.stop != nil) == animated(st) {
		s.mu.Unlock()
		return
	}
	s.status = st
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	if animated(st) {
		s.stop = make(chan struct{})
		go s.animate(st, s.stop)
	}
	s.mu.Unlock()

	if !animated(st) {
		s.paint(staticColor(st))
	}
}

// Status returns the status currently shown.
func (s *StreamIndicator) Status() playback.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close stops any running animation.
func (s *StreamIndicator) Close() { s.SetStatus(playback.StatusIdle) }

func animated(st playback.Status) bool {
	return st == playback.StatusLive || st == playback.StatusBuffering
}

func staticColor(st playback.Status) color.NRGBA {
	if st.Failed() {
		return errorColor
	}
	return idleColor
}

func (s *StreamIndicator) animate(st playback.Status, stop <-chan struct{}) {
	t := time.NewTicker(90 * time.Millisecond)
	defer t.Stop()
	phase := 0.0
	for {
		select {
		case <-stop:
			return
		case <-t.C:
		}
		phase += 8
		if phase >= 360 {
			phase = 0
		}
		s.paint(frameColor(st, phase))
	}
}

// frameColor returns the animation colour at phase (degrees): a hue sweep
// through greens when live, an amber blink while buffering.
func frameColor(st playback.Status, phase float64) color.NRGBA {
	if st == playback.StatusBuffering {
		v := 0.55 + 0.4*math.Abs(math.Sin(phase*math.Pi/180))
		return hsvToNRGBA(38, 0.9, v)
	}
	return hsvToNRGBA(90+math.Mod(phase, 60), 0.65, 0.95)
}

func (s *StreamIndicator) paint(col color.NRGBA) {
	fyne.Do(func() {
		s.circle.FillColor = col
		s.circle.Refresh()
	})
}

// hsvToNRGBA converts HSV (0..360, 0..1, 0..1) to color.NRGBA.
func hsvToNRGBA(h, s, v float64) color.NRGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60.0, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.NRGBA{
		R: uint8((r+m)*255 + 0.5),
		G: uint8((g+m)*255 + 0.5),
		B: uint8((b+m)*255 + 0.5),
		A: 0xFF,
	}
}
