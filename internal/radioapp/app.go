// Package radioapp wires the catalog, session, playback binding and fyne
// widgets together into the PH Radio window.
package radioapp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	logging "github.com/ipfs/go-log/v2"

	"github.com/edward-ap/phradio/internal/artwork"
	"github.com/edward-ap/phradio/internal/catalog"
	"github.com/edward-ap/phradio/internal/config"
	"github.com/edward-ap/phradio/internal/favorites"
	"github.com/edward-ap/phradio/internal/mediasession"
	"github.com/edward-ap/phradio/internal/playback"
	playerpkg "github.com/edward-ap/phradio/internal/player"
	"github.com/edward-ap/phradio/internal/session"
	"github.com/edward-ap/phradio/internal/share"
)

var logger = logging.Logger("phradio/app")

// Deps are the collaborators the window drives. Config, Source and Primitive
// are required; the rest fall back to in-memory or no-op versions.
type Deps struct {
	Config    *config.Config
	Source    catalog.Source
	Primitive playback.Primitive
	Store     favorites.Store
	Artwork   *artwork.Fetcher
	Native    share.Native
	Icon      fyne.Resource
}

// App owns the window and keeps the widgets in step with the session.
type App struct {
	fa  fyne.App
	w   fyne.Window
	cfg *config.Config

	src     catalog.Source
	sess    *session.Session
	binding *playback.Binding
	media   *mediasession.Session
	sharer  *share.Sharer
	art     *artwork.Fetcher

	// dispatch runs f on the UI goroutine; every completion from another
	// goroutine goes through it
	dispatch func(func())

	// station whose artwork the tray shows or awaits
	trayStation string

	browse *browseView
	bar    *playerBar
	detail *detailView

	saveMu    sync.Mutex
	saveTimer *time.Timer

	closers []func()
}

// New builds the window around d inside fa. Nothing is fetched until Start.
func New(fa fyne.App, d Deps) *App {
	if d.Artwork == nil {
		d.Artwork = artwork.NewFetcher(nil, d.Config.UserAgent)
	}
	a := &App{
		fa:       fa,
		cfg:      d.Config,
		src:      d.Source,
		art:      d.Artwork,
		dispatch: fyne.Do,
	}
	a.w = fa.NewWindow(mediasession.AppTitle)
	a.w.SetMaster()
	if d.Icon != nil {
		a.w.SetIcon(d.Icon)
	}
	a.w.Resize(fyne.NewSize(float32(a.cfg.WindowW), float32(a.cfg.WindowH)))

	a.sess = session.New(favorites.Load(d.Store), a.cfg.Volume)
	a.sess.SetCategory(a.cfg.LastCategory)
	a.binding = playback.NewBinding(d.Primitive, func(f func()) { a.dispatch(f) })
	a.binding.OnChange(a.onPlaybackChange)
	a.sharer = share.New(d.Native, a.w.Clipboard())
	a.media = mediasession.New(fa, a.w, mediasession.Controls{
		Play:  a.resume,
		Pause: a.sess.Stop,
		Stop:  a.sess.Stop,
	}, d.Icon)

	a.browse = newBrowseView(a)
	a.bar = newPlayerBar(a)
	a.detail = newDetailView(a)

	main := container.NewBorder(a.browse.header(), a.bar.object(), nil, nil, a.browse.body())
	a.w.SetContent(container.NewStack(main, a.detail.object()))
	a.w.Canvas().SetOnTypedKey(a.handleShortcutKey)
	a.w.SetCloseIntercept(a.shutdown)

	a.sess.Subscribe(a.render)
	a.render(a.sess.Snapshot())
	return a
}

// Session exposes the state machine, mostly for tests and the CLI.
func (a *App) Session() *session.Session { return a.sess }

// Window returns the main window.
func (a *App) Window() fyne.Window { return a.w }

// OnClose registers fn to run when the window closes.
func (a *App) OnClose(fn func()) { a.closers = append(a.closers, fn) }

// Start requests the catalog in the background. The result re-enters the UI
// goroutine through dispatch.
func (a *App) Start(ctx context.Context) {
	a.sess.BeginLoad()
	go func() {
		stations, err := a.src.Stations(ctx)
		a.dispatch(func() { a.sess.FinishLoad(stations, err) })
	}()
}

// Run starts the catalog load and enters the fyne event loop.
func (a *App) Run() {
	a.Start(context.Background())
	a.w.ShowAndRun()
}

// render is the single session listener: it pushes the snapshot into the
// binding, the widgets, the media session and the config.
func (a *App) render(snap session.Snapshot) {
	a.binding.Apply(snap)
	a.browse.update(snap)
	a.bar.update(snap, a.binding.Status(), a.binding.NowPlaying())
	a.detail.update(snap)
	a.media.Update(snap.Current, snap.Playing)
	a.publishArtwork(snap.Current)
	a.rememberPreferences(snap)
}

// publishArtwork hands the current station's favicon to the media session
// once per station change.
func (a *App) publishArtwork(cur *catalog.Station) {
	id := ""
	if cur != nil {
		id = cur.ID
	}
	if id == a.trayStation {
		return
	}
	a.trayStation = id
	if cur == nil || cur.Favicon == "" {
		a.media.SetArtwork("", nil)
		return
	}
	url := mediasession.MetadataFor(*cur).ArtworkURL
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), artworkTimeout)
		defer cancel()
		img, err := a.art.Fetch(ctx, url)
		a.dispatch(func() {
			if a.trayStation != id {
				return
			}
			if err != nil {
				logger.Debugf("tray artwork for %s: %v", id, err)
				img = nil
			}
			a.media.SetArtwork(url, img)
		})
	}()
}

func (a *App) onPlaybackChange(st playback.Status, title string) {
	a.bar.setStatus(st, title)
	a.detail.setStatus(st)
}

// resume sets the play intent for the current station.
func (a *App) resume() {
	if snap := a.sess.Snapshot(); snap.Current != nil && !snap.Playing {
		a.sess.TogglePlay()
	}
}

func (a *App) share(st catalog.Station) {
	out, err := a.sharer.Share(st)
	switch {
	case err != nil && out == share.Copied:
		dialog.ShowInformation("Share", err.Error(), a.w)
	case err != nil:
		logger.Debugf("share %q: %v", st.Name, err)
	case out == share.Copied:
		dialog.ShowInformation("Share", "Station link copied to clipboard!", a.w)
	}
}

// handleShortcutKey maps keys to intents when no widget holds focus.
func (a *App) handleShortcutKey(ke *fyne.KeyEvent) {
	if ke == nil {
		return
	}
	snap := a.sess.Snapshot()
	switch ke.Name {
	case fyne.KeySpace:
		a.sess.TogglePlay()
	case fyne.KeyUp:
		a.sess.SetVolume(snap.Volume + 0.1)
	case fyne.KeyDown:
		a.sess.SetVolume(snap.Volume - 0.1)
	case fyne.KeyEscape:
		a.sess.CloseDetail()
	}
}

// rememberPreferences copies volume and category into the config and saves
// it shortly after the last change.
func (a *App) rememberPreferences(snap session.Snapshot) {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if a.cfg.Volume == snap.Volume && a.cfg.LastCategory == snap.Category {
		return
	}
	a.cfg.Volume = snap.Volume
	a.cfg.LastCategory = snap.Category
	if a.saveTimer != nil {
		a.saveTimer.Stop()
	}
	a.saveTimer = time.AfterFunc(400*time.Millisecond, a.saveConfig)
}

func (a *App) saveConfig() {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if err := a.cfg.Save(); err != nil {
		logger.Warnf("save config: %v", err)
	}
}

func (a *App) shutdown() {
	a.saveMu.Lock()
	if a.saveTimer != nil {
		a.saveTimer.Stop()
		a.saveTimer = nil
	}
	sz := a.w.Canvas().Size()
	if sz.Width > 0 && sz.Height > 0 {
		a.cfg.WindowW, a.cfg.WindowH = int(sz.Width), int(sz.Height)
	}
	a.saveMu.Unlock()
	a.saveConfig()

	a.bar.close()
	a.detail.close()
	a.binding.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.w.Close()
	a.fa.Quit()
}

// Options configure NewApp.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string
}

// NewApp builds the production app: config file, fyne app, favorites backend,
// libVLC player and Radio Browser client.
func NewApp(opts Options) *App {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		logger.Errorf("config load error: %v", err)
		path := opts.ConfigPath
		if path == "" {
			path, _ = config.ConfigPath()
		}
		cfg = config.Defaults(path)
	}

	fa := fyneapp.NewWithID(config.AppID)
	fa.SetIcon(AppIcon)
	fa.Settings().SetTheme(theme.DarkTheme())

	store, closeStore := openFavoritesStore(cfg, fa)
	p := playerpkg.New(cfg.UserAgent)
	client := catalog.NewClient(nil, cfg.CatalogOptions())

	a := New(fa, Deps{
		Config:    cfg,
		Source:    client,
		Primitive: p,
		Store:     store,
		Icon:      AppIcon,
	})
	a.OnClose(closeStore)
	a.OnClose(p.Release)

	// libVLC loads slowly on some systems; keep the window responsive
	go func() {
		if err := p.Init(); err != nil {
			a.dispatch(func() {
				dialog.ShowError(fmt.Errorf("cannot initialize VLC: %w\n\nInstall VLC or place libvlc and its plugins folder next to the executable.", err), a.w)
			})
			return
		}
		// anything applied before Init was rejected; load and apply again
		a.dispatch(func() {
			a.binding.Invalidate()
			a.binding.Apply(a.sess.Snapshot())
		})
	}()
	return a
}

// openFavoritesStore picks the configured backend. A SQLite store that cannot
// be opened falls back to preferences.
func openFavoritesStore(cfg *config.Config, fa fyne.App) (favorites.Store, func()) {
	prefs := favorites.NewPreferencesStore(fa.Preferences())
	if cfg.FavoritesBackend != config.BackendSQLite {
		return prefs, func() {}
	}
	db, err := favorites.OpenSQLite(cfg.Dir())
	if err != nil {
		logger.Warnf("favorites database unavailable, using preferences: %v", err)
		return prefs, func() {}
	}
	logger.Infof("favorites stored in %s", db.Path())
	return db, func() {
		if err := db.Close(); err != nil {
			logger.Warnf("close favorites database: %v", err)
		}
	}
}
