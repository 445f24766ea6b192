package ui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// FormatClock renders t on a 12-hour dial: "h:mm" plus "AM" or "PM".
func FormatClock(t time.Time) (string, string) {
	return t.Format("3:04"), t.Format("PM")
}

// LiveClock is a large "h:mm AM" display refreshed every second while
// started.
type LiveClock struct {
	time *widget.Label
	ampm *widget.Label
	box  *fyne.Container

	now  func() time.Time
	mu   sync.Mutex
	stop chan struct{}
}

// NewLiveClock returns a stopped clock showing the current time.
func NewLiveClock() *LiveClock {
	c := &LiveClock{
		time: widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		ampm: widget.NewLabel(""),
		now:  time.Now,
	}
	c.box = container.NewHBox(c.time, c.ampm)
	c.tick()
	return c
}

// CanvasObject returns the fyne object suitable for embedding in layouts.
func (c *LiveClock) CanvasObject() fyne.CanvasObject { return c.box }

// Start begins ticking; calling it twice is harmless.
func (c *LiveClock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return
	}
	c.stop = make(chan struct{})
	go func(stop <-chan struct{}) {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				fyne.Do(c.tick)
			}
		}
	}(c.stop)
	c.tick()
}

// Stop halts the ticker.
func (c *LiveClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *LiveClock) tick() {
	hm, ampm := FormatClock(c.now())
	c.time.SetText(hm)
	c.ampm.SetText(ampm)
}
