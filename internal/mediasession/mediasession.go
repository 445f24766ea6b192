// Package mediasession publishes the current station to the desktop: the
// window title and, where the driver supports one, a system tray menu with
// play, pause and stop actions. Everything here is best effort.
package mediasession

import (
	"bytes"
	"image"
	"image/png"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	logging "github.com/ipfs/go-log/v2"

	"github.com/edward-ap/phradio/internal/catalog"
)

var logger = logging.Logger("phradio/mediasession")

const (
	// AppTitle is the window title without a station.
	AppTitle     = "PH Radio"
	defaultAlbum = "Philippine Radio Live"
	fallbackArt  = "PH Radio Live"
)

// Metadata describes the playing station to the platform.
type Metadata struct {
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
}

// MetadataFor derives metadata from st. The artist line is the station's
// region, falling back to the app name.
func MetadataFor(st catalog.Station) Metadata {
	return Metadata{
		Title:      st.Name,
		Artist:     st.Region(fallbackArt),
		Album:      defaultAlbum,
		ArtworkURL: strings.TrimSpace(st.Favicon),
	}
}

// WindowTitle returns the title for a window showing st, AppTitle for nil.
func WindowTitle(st *catalog.Station) string {
	if st == nil || strings.TrimSpace(st.Name) == "" {
		return AppTitle
	}
	return AppTitle + " — " + st.Name
}

// Controls are invoked from tray actions.
type Controls struct {
	Play  func()
	Pause func()
	Stop  func()
}

// Session mirrors playback into the window title and tray menu.
type Session struct {
	win  fyne.Window
	tray desktop.App

	icon    fyne.Resource
	artwork string

	menu  *fyne.Menu
	now   *fyne.MenuItem
	play  *fyne.MenuItem
	pause *fyne.MenuItem
	stop  *fyne.MenuItem
}

// New wires a session for win. The tray menu is installed only when app is a
// desktop app with tray support.
func New(app fyne.App, win fyne.Window, c Controls, icon fyne.Resource) *Session {
	s := &Session{win: win, icon: icon}
	tray, ok := app.(desktop.App)
	if !ok {
		return s
	}
	s.tray = tray
	s.now = fyne.NewMenuItem(AppTitle, nil)
	s.now.Disabled = true
	s.play = fyne.NewMenuItem("Play", safe(c.Play))
	s.pause = fyne.NewMenuItem("Pause", safe(c.Pause))
	s.stop = fyne.NewMenuItem("Stop", safe(c.Stop))
	s.menu = fyne.NewMenu(AppTitle, s.now, fyne.NewMenuItemSeparator(), s.play, s.pause, s.stop)
	s.applyMenu(nil, false)
	if icon != nil {
		tray.SetSystemTrayIcon(icon)
	}
	tray.SetSystemTrayMenu(s.menu)
	return s
}

// HasTray reports whether a system tray menu was installed.
func (s *Session) HasTray() bool { return s.tray != nil }

// Update publishes st (nil for none) and the playing flag.
func (s *Session) Update(st *catalog.Station, playing bool) {
	if s.win != nil {
		s.win.SetTitle(WindowTitle(st))
	}
	if s.menu == nil {
		return
	}
	s.applyMenu(st, playing)
	s.menu.Refresh()
}

func (s *Session) applyMenu(st *catalog.Station, playing bool) {
	if st == nil {
		s.now.Label = AppTitle
	} else {
		md := MetadataFor(*st)
		s.now.Label = md.Title + " · " + md.Artist
	}
	s.play.Disabled = st == nil || playing
	s.pause.Disabled = st == nil || !playing
	s.stop.Disabled = st == nil || !playing
}

func safe(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	return fn
}

// SetArtwork shows img, fetched from url (a Metadata.ArtworkURL), as the
// tray icon. A nil img restores the app icon.
func (s *Session) SetArtwork(url string, img image.Image) {
	if s.tray == nil {
		return
	}
	if img == nil {
		if s.artwork != "" {
			s.artwork = ""
			s.tray.SetSystemTrayIcon(s.icon)
		}
		return
	}
	if url == s.artwork {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		logger.Debugf("encode artwork %s: %v", url, err)
		return
	}
	s.artwork = url
	s.tray.SetSystemTrayIcon(fyne.NewStaticResource("artwork.png", buf.Bytes()))
}

// Artwork returns the URL of the artwork shown in the tray, "" for the app
// icon.
func (s *Session) Artwork() string { return s.artwork }
