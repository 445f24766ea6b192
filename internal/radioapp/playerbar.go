package radioapp

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/edward-ap/phradio/internal/playback"
	"github.com/edward-ap/phradio/internal/session"
	"github.com/edward-ap/phradio/internal/ui"
)

// playerBar is the strip at the bottom of the window while a station is
// current: stream indicator, name, now-playing ticker and play button.
type playerBar struct {
	app *App

	root      *fyne.Container
	indicator *ui.StreamIndicator
	name      *widget.Button
	status    *widget.Label
	tickerLbl *widget.Label
	ticker    *ui.TickerController
	playBtn   *widget.Button
}

func newPlayerBar(a *App) *playerBar {
	p := &playerBar{app: a}
	p.indicator = ui.NewStreamIndicator(12)

	// tapping the name reopens the detail view
	p.name = widget.NewButton("", func() {
		if cur := a.sess.Snapshot().Current; cur != nil {
			a.sess.Select(*cur)
		}
	})
	p.name.Importance = widget.LowImportance
	p.name.Alignment = widget.ButtonAlignLeading

	p.status = widget.NewLabel("")
	p.status.Importance = widget.LowImportance

	p.tickerLbl = widget.NewLabel("")
	p.tickerLbl.Truncation = fyne.TextTruncateClip
	tickerBox := container.NewStack(p.tickerLbl)
	p.ticker = ui.NewTickerController(p.tickerLbl, tickerBox, tickerIdle)

	p.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), a.sess.TogglePlay)

	info := container.NewVBox(p.name, container.NewBorder(nil, nil, nil, p.status, tickerBox))
	p.root = container.NewBorder(nil, nil,
		container.NewCenter(p.indicator.CanvasObject()),
		p.playBtn,
		info,
	)
	p.root.Hide()
	return p
}

func (p *playerBar) object() fyne.CanvasObject { return p.root }

func (p *playerBar) update(snap session.Snapshot, st playback.Status, title string) {
	if snap.Current == nil {
		p.root.Hide()
		p.setStatus(playback.StatusIdle, "")
		return
	}
	p.name.SetText(snap.Current.Name)
	if snap.Playing {
		p.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		p.playBtn.SetIcon(theme.MediaPlayIcon())
	}
	p.setStatus(st, title)
	p.root.Show()
}

func (p *playerBar) setStatus(st playback.Status, title string) {
	p.indicator.SetStatus(st)
	p.status.SetText(st.String())
	p.ticker.SetText(title)
}

func (p *playerBar) close() {
	p.ticker.Close()
	p.indicator.Close()
}
