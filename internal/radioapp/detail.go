package radioapp

import (
	"context"
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/edward-ap/phradio/internal/catalog"
	"github.com/edward-ap/phradio/internal/playback"
	"github.com/edward-ap/phradio/internal/session"
	"github.com/edward-ap/phradio/internal/ui"
)

const artworkTimeout = 10 * time.Second

// detailView is the full-window overlay for the inspected station.
type detailView struct {
	app *App

	root     *fyne.Container
	clock    *ui.LiveClock
	art      *canvas.Image
	name     *widget.Label
	subtitle *widget.Label
	facts    *widget.Label
	tags     *widget.Label
	status   *widget.Label
	playBtn  *widget.Button
	favBtn   *widget.Button
	volume   *ui.MiniThumbSlider

	station *catalog.Station
	artID   string
}

func newDetailView(a *App) *detailView {
	d := &detailView{app: a, clock: ui.NewLiveClock()}

	d.art = canvas.NewImageFromResource(theme.MediaMusicIcon())
	d.art.FillMode = canvas.ImageFillContain
	d.art.SetMinSize(fyne.NewSize(160, 160))

	d.name = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	d.name.Wrapping = fyne.TextWrapWord
	d.subtitle = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	d.facts = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	d.tags = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	d.tags.Wrapping = fyne.TextWrapWord
	d.status = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})

	d.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), a.sess.TogglePlay)
	d.playBtn.Importance = widget.HighImportance
	d.favBtn = widget.NewButton("", func() {
		if d.station != nil {
			a.sess.ToggleFavorite(d.station.ID)
		}
	})
	shareBtn := widget.NewButtonWithIcon("", theme.MailForwardIcon(), func() {
		if d.station != nil {
			a.share(*d.station)
		}
	})
	closeBtn := widget.NewButtonWithIcon("", theme.NavigateBackIcon(), a.sess.CloseDetail)
	closeBtn.Importance = widget.LowImportance

	d.volume = ui.NewMiniThumbSlider(0, 1, 0.01)
	d.volume.OnChanged = a.sess.SetVolume

	top := container.NewBorder(nil, nil, closeBtn, shareBtn, container.NewCenter(d.clock.CanvasObject()))
	controls := container.NewCenter(container.NewHBox(d.favBtn, d.playBtn))
	vol := container.NewBorder(nil, nil,
		widget.NewIcon(theme.VolumeDownIcon()), widget.NewIcon(theme.VolumeUpIcon()), d.volume)

	body := container.NewVBox(
		container.NewCenter(d.art),
		d.name,
		d.subtitle,
		d.facts,
		d.tags,
		d.status,
		controls,
		vol,
	)
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameBackground))
	d.root = container.NewStack(bg, container.NewBorder(top, nil, nil, nil, container.NewVScroll(body)))
	d.root.Hide()
	return d
}

func (d *detailView) object() fyne.CanvasObject { return d.root }

func (d *detailView) update(snap session.Snapshot) {
	d.volume.SyncValue(snap.Volume)
	if snap.Detail == nil {
		d.station = nil
		d.clock.Stop()
		d.root.Hide()
		return
	}
	st := *snap.Detail
	d.station = &st

	d.name.SetText(st.Name)
	d.subtitle.SetText(detailSubtitle(st))
	d.facts.SetText(detailFacts(st))
	d.tags.SetText(tagLine(st, 6))
	d.favBtn.SetText(favoriteTooltip(d.app.sess.IsFavorite(st.ID)))

	isCurrent := snap.IsCurrent(st.ID)
	if isCurrent && snap.Playing {
		d.playBtn.SetIcon(theme.MediaPauseIcon())
	} else {
		d.playBtn.SetIcon(theme.MediaPlayIcon())
	}
	if isCurrent {
		d.setStatus(d.app.binding.Status())
	} else {
		d.status.SetText("")
	}

	if d.artID != st.ID {
		d.artID = st.ID
		d.loadArtwork(st)
	}
	d.clock.Start()
	d.root.Show()
}

func (d *detailView) setStatus(st playback.Status) {
	if d.station == nil || d.app.binding.Token() == "" {
		d.status.SetText("")
		return
	}
	snap := d.app.sess.Snapshot()
	if !snap.IsCurrent(d.station.ID) {
		return
	}
	d.status.SetText(st.String())
}

// loadArtwork fetches the favicon in the background and shows it only if
// the same station is still inspected.
func (d *detailView) loadArtwork(st catalog.Station) {
	d.showArtwork(nil)
	if st.Favicon == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), artworkTimeout)
		defer cancel()
		img, err := d.app.art.Fetch(ctx, st.Favicon)
		if err != nil {
			logger.Debugf("artwork for %q: %v", st.Name, err)
			return
		}
		d.app.dispatch(func() {
			if d.station != nil && d.station.ID == st.ID {
				d.showArtwork(img)
			}
		})
	}()
}

func (d *detailView) showArtwork(img image.Image) {
	if img == nil {
		d.art.Image = nil
		d.art.Resource = theme.MediaMusicIcon()
	} else {
		d.art.Resource = nil
		d.art.Image = img
	}
	d.art.Refresh()
}

func (d *detailView) close() { d.clock.Stop() }
