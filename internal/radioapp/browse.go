package radioapp

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/edward-ap/phradio/internal/catalog"
	"github.com/edward-ap/phradio/internal/session"
)

// browseView is the search field, category chips and station list.
type browseView struct {
	app *App

	search   *widget.Entry
	chips    map[string]*widget.Button
	section  *widget.Label
	count    *widget.Label
	errLabel *widget.Label
	errBox   *fyne.Container

	list    *widget.List
	loading *fyne.Container
	empty   *fyne.Container

	visible   []catalog.Station
	currentID string
	playing   bool
}

func newBrowseView(a *App) *browseView {
	b := &browseView{app: a, chips: map[string]*widget.Button{}}

	b.search = widget.NewEntry()
	b.search.SetPlaceHolder(searchPlaceholder)
	b.search.OnChanged = func(s string) { a.sess.SetSearch(s) }

	b.section = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	b.count = widget.NewLabel("")

	b.errLabel = widget.NewLabel("")
	b.errLabel.Importance = widget.DangerImportance
	b.errLabel.Wrapping = fyne.TextWrapWord
	b.errBox = container.NewBorder(nil, nil, widget.NewIcon(theme.ErrorIcon()), nil, b.errLabel)
	b.errBox.Hide()

	b.list = widget.NewList(
		func() int { return len(b.visible) },
		func() fyne.CanvasObject { return newStationRow() },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < 0 || id >= len(b.visible) {
				return
			}
			st := b.visible[id]
			row := o.(*stationRow)
			row.set(st, st.ID == b.currentID, b.playing, a.sess.IsFavorite(st.ID))
			row.onFavorite = func() { a.sess.ToggleFavorite(st.ID) }
		},
	)
	b.list.OnSelected = func(id widget.ListItemID) {
		b.list.UnselectAll()
		if id < 0 || id >= len(b.visible) {
			return
		}
		a.sess.Select(b.visible[id])
	}

	b.loading = container.NewCenter(container.NewVBox(
		widget.NewProgressBarInfinite(),
		widget.NewLabelWithStyle(loadingText, fyne.TextAlignCenter, fyne.TextStyle{}),
	))
	b.empty = container.NewCenter(container.NewVBox(
		widget.NewLabelWithStyle(emptyTitle, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		widget.NewLabelWithStyle(emptyHint, fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
	))
	b.empty.Hide()
	return b
}

func (b *browseView) header() fyne.CanvasObject {
	title := widget.NewLabelWithStyle("PH Radio Live", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	row := container.NewHBox()
	for _, name := range catalog.CategoryNames() {
		btn := widget.NewButton(name, func() { b.app.sess.SetCategory(name) })
		btn.Importance = widget.LowImportance
		b.chips[name] = btn
		row.Add(btn)
	}
	chips := container.NewHScroll(row)

	heading := container.NewBorder(nil, nil, nil, b.count, b.section)
	return container.NewVBox(title, b.search, chips, b.errBox, heading)
}

func (b *browseView) body() fyne.CanvasObject {
	return container.NewStack(b.list, b.loading, b.empty)
}

func (b *browseView) update(snap session.Snapshot) {
	b.visible = b.app.sess.Visible()
	b.currentID = snap.CurrentID()
	b.playing = snap.Playing

	if b.search.Text != snap.Search {
		b.search.SetText(snap.Search)
	}
	for name, btn := range b.chips {
		imp := widget.LowImportance
		if name == snap.Category {
			imp = widget.HighImportance
		}
		if btn.Importance != imp {
			btn.Importance = imp
			btn.Refresh()
		}
	}
	b.section.SetText(sectionTitle(snap.Category))
	b.count.SetText(countLabel(len(b.visible)))

	if snap.Error != "" {
		b.errLabel.SetText(snap.Error)
		b.errBox.Show()
	} else {
		b.errBox.Hide()
	}

	switch {
	case snap.Loading:
		b.loading.Show()
		b.empty.Hide()
		b.list.Hide()
	case len(b.visible) == 0:
		b.loading.Hide()
		b.empty.Show()
		b.list.Hide()
	default:
		b.loading.Hide()
		b.empty.Hide()
		b.list.Show()
	}
	b.list.Refresh()
}

// stationRow is one list entry: name, subtitle, playing marker and a
// favorite toggle.
type stationRow struct {
	widget.BaseWidget

	name       *widget.Label
	subtitle   *widget.Label
	marker     *widget.Icon
	fav        *widget.Button
	onFavorite func()
}

func newStationRow() *stationRow {
	r := &stationRow{
		name:     widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		subtitle: widget.NewLabel(""),
		marker:   widget.NewIcon(nil),
	}
	r.name.Truncation = fyne.TextTruncateEllipsis
	r.subtitle.Truncation = fyne.TextTruncateEllipsis
	r.subtitle.Importance = widget.LowImportance
	r.fav = widget.NewButton("☆", func() {
		if r.onFavorite != nil {
			r.onFavorite()
		}
	})
	r.fav.Importance = widget.LowImportance
	r.ExtendBaseWidget(r)
	return r
}

func (r *stationRow) set(st catalog.Station, current, playing, fav bool) {
	r.name.SetText(st.Name)
	r.subtitle.SetText(rowSubtitle(st))
	switch {
	case current && playing:
		r.marker.SetResource(theme.MediaPlayIcon())
	case current:
		r.marker.SetResource(theme.MediaPauseIcon())
	default:
		r.marker.SetResource(theme.MediaMusicIcon())
	}
	r.fav.SetText(favoriteGlyph(fav))
}

func (r *stationRow) CreateRenderer() fyne.WidgetRenderer {
	text := container.NewVBox(r.name, r.subtitle)
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, r.marker, r.fav, text))
}

func favoriteGlyph(fav bool) string {
	if fav {
		return "★"
	}
	return "☆"
}
