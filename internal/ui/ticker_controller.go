package ui

import (
	"context"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/widget"
)

// TickerController shows the now-playing line in a label and scrolls it as a
// marquee when it does not fit. SetText belongs to the UI goroutine; the
// marquee posts its frames with fyne.Do.
type TickerController struct {
	lbl    *widget.Label
	parent fyne.CanvasObject // measures the visible width
	bind   binding.String
	idle   string

	mu       sync.Mutex
	cancel   context.CancelFunc
	lastText string

	speed   time.Duration
	padding string
}

// NewTickerController binds lbl and shows idle until the first SetText.
func NewTickerController(lbl *widget.Label, parent fyne.CanvasObject, idle string) *TickerController {
	b := binding.NewString()
	lbl.Bind(b)
	_ = b.Set(idle)
	return &TickerController{
		lbl:      lbl,
		parent:   parent,
		bind:     b,
		idle:     idle,
		lastText: idle,
		speed:    120 * time.Millisecond,
		padding:  "   ",
	}
}

// Text returns the unscrolled text currently shown.
func (tc *TickerController) Text() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.lastText
}

// Close stops any scrolling goroutine.
func (tc *TickerController) Close() {
	tc.mu.Lock()
	if tc.cancel != nil {
		tc.cancel()
		tc.cancel = nil
	}
	tc.mu.Unlock()
}

// SetText replaces the text; "" restores the idle text.
func (tc *TickerController) SetText(text string) {
	if text == "" {
		text = tc.idle
	}
	tc.mu.Lock()
	if text == tc.lastText {
		tc.mu.Unlock()
		return
	}
	if tc.cancel != nil {
		tc.cancel()
		tc.cancel = nil
	}
	tc.lastText = text
	tc.mu.Unlock()

	_ = tc.bind.Set(text)

	textW := measureLabelTextWidth(tc.lbl, text)
	if !tickerNeedsScroll(textW, tc.parent.Size().Width) {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	tc.mu.Lock()
	tc.cancel = cancel
	tc.mu.Unlock()
	go tc.scroll(ctx, text, textW)
}

func (tc *TickerController) scroll(ctx context.Context, text string, textW float32) {
	work := []rune(tc.padding + text + tc.padding)
	t := time.NewTicker(tc.speed)
	defer t.Stop()
	offset := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		if !tickerNeedsScroll(textW, tc.parent.Size().Width) {
			fyne.Do(func() { _ = tc.bind.Set(text) })
			return
		}
		offset = (offset + 1) % len(work)
		frame := rotateRunes(work, offset)
		fyne.Do(func() { _ = tc.bind.Set(frame) })
	}
}

// rotateRunes returns r rotated left by offset runes.
func rotateRunes(r []rune, offset int) string {
	if len(r) == 0 {
		return ""
	}
	offset %= len(r)
	return string(r[offset:]) + string(r[:offset])
}

// measureLabelTextWidth estimates the width the label would need for the text.
func measureLabelTextWidth(lbl *widget.Label, text string) float32 {
	if lbl == nil {
		return 0
	}
	tmp := widget.NewLabel(text)
	tmp.Alignment = lbl.Alignment
	tmp.TextStyle = lbl.TextStyle
	tmp.Importance = lbl.Importance
	return tmp.MinSize().Width
}
