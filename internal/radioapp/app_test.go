package radioapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"github.com/edward-ap/phradio/internal/catalog"
	"github.com/edward-ap/phradio/internal/config"
	"github.com/edward-ap/phradio/internal/favorites"
	"github.com/edward-ap/phradio/internal/mediasession"
	"github.com/edward-ap/phradio/internal/playback"
)

type fakeSource struct {
	stations []catalog.Station
	err      error
}

func (f fakeSource) Stations(context.Context) ([]catalog.Station, error) {
	return f.stations, f.err
}

type fakePrimitive struct {
	calls  []string
	tokens []string
	subs   []func(playback.Event)
}

func (f *fakePrimitive) Load(token, url string) error {
	f.calls = append(f.calls, "load "+url)
	f.tokens = append(f.tokens, token)
	return nil
}

func (f *fakePrimitive) Play() error {
	f.calls = append(f.calls, "play")
	return nil
}

func (f *fakePrimitive) Pause() error {
	f.calls = append(f.calls, "pause")
	return nil
}

func (f *fakePrimitive) SetVolume(v float64) error {
	f.calls = append(f.calls, fmt.Sprintf("volume %.2f", v))
	return nil
}

func (f *fakePrimitive) Subscribe(fn func(playback.Event)) func() {
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakePrimitive) emit(e playback.Event) {
	for _, fn := range f.subs {
		fn(e)
	}
}

var testStations = []catalog.Station{
	{ID: "a", Name: "DZBB", URL: "http://a/stream", Tags: "news,talk", State: "Metro Manila"},
	{ID: "b", Name: "Love Radio", URL: "http://b/stream", Tags: "pop,fm", Country: "Philippines"},
	{ID: "c", Name: "Radyo Veritas", URL: "http://c/stream", Tags: "catholic,religious"},
}

func newTestApp(t *testing.T, src catalog.Source) (*App, *fakePrimitive) {
	t.Helper()
	fa := test.NewApp()
	t.Cleanup(fa.Quit)

	cfg := config.Defaults(filepath.Join(t.TempDir(), config.AppConfigName))
	prim := &fakePrimitive{}
	a := New(fa, Deps{
		Config:    cfg,
		Source:    src,
		Primitive: prim,
		Store:     favorites.NewPreferencesStore(fa.Preferences()),
	})
	a.dispatch = func(f func()) { f() }
	t.Cleanup(func() {
		a.bar.close()
		a.detail.close()
		a.saveMu.Lock()
		if a.saveTimer != nil {
			a.saveTimer.Stop()
		}
		a.saveMu.Unlock()
	})
	return a, prim
}

func TestInitialStateIsLoading(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{})
	if !a.browse.loading.Visible() || a.browse.list.Visible() {
		t.Fatal("the list must show the loading state before the first fetch")
	}
	if a.bar.root.Visible() || a.detail.root.Visible() {
		t.Fatal("player bar and detail must be hidden without a station")
	}
	if got := a.Window().Title(); got != "PH Radio" {
		t.Fatalf("title = %q", got)
	}
}

func TestCatalogLoadFillsList(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{stations: testStations})
	a.sess.LoadCatalog(context.Background(), a.src)

	if len(a.browse.visible) != 3 {
		t.Fatalf("visible = %d", len(a.browse.visible))
	}
	if got := a.browse.count.Text; got != "3 Stations" {
		t.Fatalf("count = %q", got)
	}
	if got := a.browse.section.Text; got != "All Stations" {
		t.Fatalf("section = %q", got)
	}
	if a.browse.loading.Visible() || a.browse.empty.Visible() || !a.browse.list.Visible() {
		t.Fatal("list must be shown after a successful load")
	}
}

func TestCatalogErrorShowsBanner(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{err: fmt.Errorf("dial: %w", catalog.ErrUnavailable)})
	a.sess.LoadCatalog(context.Background(), a.src)

	if !a.browse.errBox.Visible() {
		t.Fatal("error banner hidden")
	}
	if got, want := a.browse.errLabel.Text, catalog.ErrUnavailable.Error(); got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
	if !a.browse.empty.Visible() {
		t.Fatal("an empty catalog must show the empty state")
	}
}

func TestStartDispatchesResult(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{stations: testStations})
	queued := make(chan func(), 1)
	a.dispatch = func(f func()) { queued <- f }

	a.Start(context.Background())
	if !a.sess.Snapshot().Loading {
		t.Fatal("Start must mark the catalog as loading")
	}
	(<-queued)()
	snap := a.sess.Snapshot()
	if snap.Loading || len(snap.Catalog) != 3 {
		t.Fatalf("after dispatch: loading=%v catalog=%d", snap.Loading, len(snap.Catalog))
	}
}

func TestFilteringFollowsSession(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{stations: testStations})
	a.sess.LoadCatalog(context.Background(), a.src)

	a.browse.chips["Religion"].OnTapped()
	if got := a.browse.section.Text; got != "Religion" {
		t.Fatalf("section = %q", got)
	}
	if len(a.browse.visible) != 1 || a.browse.visible[0].ID != "c" {
		t.Fatalf("visible = %+v", a.browse.visible)
	}

	a.browse.chips[catalog.CategoryFavorites].OnTapped()
	if !a.browse.empty.Visible() {
		t.Fatal("no favorites yet, empty state expected")
	}
	a.sess.ToggleFavorite("b")
	if len(a.browse.visible) != 1 || a.browse.visible[0].ID != "b" {
		t.Fatalf("favorites = %+v", a.browse.visible)
	}

	a.browse.chips[catalog.CategoryAll].OnTapped()
	a.sess.SetSearch("ra")
	if got := a.browse.count.Text; got != "2 Stations" {
		t.Fatalf("count after search = %q", got)
	}
	if got := a.browse.search.Text; got != "ra" {
		t.Fatalf("search entry = %q", got)
	}
	if a.cfg.LastCategory != catalog.CategoryAll {
		t.Fatalf("config category = %q", a.cfg.LastCategory)
	}
}

func TestSelectStartsPlaybackAndOpensDetail(t *testing.T) {
	a, prim := newTestApp(t, fakeSource{stations: testStations})
	a.sess.LoadCatalog(context.Background(), a.src)

	a.browse.list.OnSelected(0)
	if !slices.Contains(prim.calls, "load http://a/stream") || prim.calls[len(prim.calls)-1] != "play" {
		t.Fatalf("calls = %v", prim.calls)
	}
	if !a.bar.root.Visible() || !a.detail.root.Visible() {
		t.Fatal("player bar and detail must be visible")
	}
	if got := a.detail.subtitle.Text; got != "Metro Manila" {
		t.Fatalf("subtitle = %q", got)
	}
	if got := a.detail.favBtn.Text; got != "Add to favorites" {
		t.Fatalf("favorite button = %q", got)
	}
	if got := a.Window().Title(); got != "PH Radio — DZBB" {
		t.Fatalf("title = %q", got)
	}

	a.detail.favBtn.OnTapped()
	if !a.sess.IsFavorite("a") || a.detail.favBtn.Text != "Remove from favorites" {
		t.Fatal("favorite toggle not reflected")
	}
}

func TestPlaybackEventsReachPlayerBar(t *testing.T) {
	a, prim := newTestApp(t, fakeSource{stations: testStations})
	a.sess.LoadCatalog(context.Background(), a.src)
	a.sess.Select(testStations[1])

	if got := a.bar.status.Text; got != "Buffering..." {
		t.Fatalf("status = %q", got)
	}
	tok := prim.tokens[len(prim.tokens)-1]
	prim.emit(playback.Event{Token: tok, Kind: playback.EventPlaying})
	prim.emit(playback.Event{Token: tok, Kind: playback.EventNowPlaying, Title: "Artist - Song"})
	prim.emit(playback.Event{Token: "old", Kind: playback.EventError, Err: errors.New("boom")})

	if got := a.bar.status.Text; got != "Live" {
		t.Fatalf("status = %q", got)
	}
	if got := a.bar.indicator.Status(); got != playback.StatusLive {
		t.Fatalf("indicator = %v", got)
	}
	if got := a.bar.ticker.Text(); got != "Artist - Song" {
		t.Fatalf("ticker = %q", got)
	}
	if got := a.detail.status.Text; got != "Live" {
		t.Fatalf("detail status = %q", got)
	}
}

func TestShortcutKeys(t *testing.T) {
	a, prim := newTestApp(t, fakeSource{stations: testStations})
	a.sess.LoadCatalog(context.Background(), a.src)
	a.sess.Select(testStations[0])

	a.handleShortcutKey(&fyne.KeyEvent{Name: fyne.KeySpace})
	if a.sess.Snapshot().Playing || prim.calls[len(prim.calls)-1] != "pause" {
		t.Fatalf("space must pause, calls = %v", prim.calls)
	}
	a.handleShortcutKey(&fyne.KeyEvent{Name: fyne.KeyDown})
	if v := a.sess.Snapshot().Volume; v < 0.89 || v > 0.91 {
		t.Fatalf("volume = %v", v)
	}
	if v := a.detail.volume.Value; v < 0.89 || v > 0.91 {
		t.Fatalf("slider = %v", v)
	}
	a.handleShortcutKey(&fyne.KeyEvent{Name: fyne.KeyEscape})
	if a.detail.root.Visible() {
		t.Fatal("escape must close the detail view")
	}
	if a.sess.Snapshot().Current == nil {
		t.Fatal("closing the detail must keep the current station")
	}
	a.handleShortcutKey(nil)
}

func TestTrayControlsResume(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{stations: testStations})
	a.resume()
	if a.sess.Snapshot().Playing {
		t.Fatal("resume without a station must do nothing")
	}
	a.sess.Select(testStations[2])
	a.sess.Stop()
	a.resume()
	if !a.sess.Snapshot().Playing {
		t.Fatal("resume must restore the play intent")
	}
}

func TestDrawIcon(t *testing.T) {
	img := drawIcon(64)
	if _, _, _, alpha := img.At(0, 0).RGBA(); alpha != 0 {
		t.Fatal("corner must be transparent")
	}
	if got := img.NRGBAAt(32, 32); got != iconSun {
		t.Fatalf("centre = %v", got)
	}
	if got := img.NRGBAAt(32, 4); got != iconBlue {
		t.Fatalf("top = %v", got)
	}
	if got := img.NRGBAAt(32, 60); got != iconRed {
		t.Fatalf("bottom = %v", got)
	}
	if AppIcon == nil || len(AppIcon.Content()) == 0 {
		t.Fatal("AppIcon not built")
	}
}

func TestShareCopiesInvitation(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{stations: testStations})
	a.share(testStations[0])
	want := "Listen to DZBB live on PH Radio Live! http://a/stream"
	if got := a.Window().Clipboard().Content(); got != want {
		t.Fatalf("clipboard = %q, want %q", got, want)
	}
}

func TestBackgroundCompletionsRunOnDispatcher(t *testing.T) {
	a, prim := newTestApp(t, fakeSource{stations: testStations})
	a.sess.LoadCatalog(context.Background(), a.src)
	a.sess.Select(testStations[1])
	tok := prim.tokens[len(prim.tokens)-1]

	queue := make(chan func(), 64)
	a.dispatch = func(f func()) { queue <- f }

	const titles = 20
	a.Start(context.Background())
	go func() {
		for i := range titles {
			prim.emit(playback.Event{Token: tok, Kind: playback.EventNowPlaying, Title: fmt.Sprintf("song %d", i)})
		}
	}()

	// the test goroutine owns the widgets and keeps mutating them while
	// completions arrive
	for ran := 0; ran < titles+1; ran++ {
		a.sess.SetVolume(float64(ran%10) / 10)
		_ = a.sess.Visible()
		(<-queue)()
	}

	snap := a.sess.Snapshot()
	if snap.Loading || len(snap.Catalog) != 3 {
		t.Fatalf("catalog: loading=%v stations=%d", snap.Loading, len(snap.Catalog))
	}
	if got := a.bar.ticker.Text(); got != "song 19" {
		t.Fatalf("ticker = %q", got)
	}
	if got := a.binding.NowPlaying(); got != "song 19" {
		t.Fatalf("now playing = %q", got)
	}
}

func TestPreferencesFollowSession(t *testing.T) {
	a, _ := newTestApp(t, fakeSource{stations: testStations})
	a.sess.SetVolume(0.3)
	a.sess.SetCategory("Religion")

	a.saveMu.Lock()
	vol, cat, pending := a.cfg.Volume, a.cfg.LastCategory, a.saveTimer != nil
	a.saveMu.Unlock()
	if vol != 0.3 || cat != "Religion" {
		t.Fatalf("config volume=%v category=%q", vol, cat)
	}
	if !pending {
		t.Fatal("a change must schedule a save")
	}

	a.saveConfig()
	got, err := config.Load(a.cfg.Path())
	if err != nil {
		t.Fatal(err)
	}
	if got.Volume != 0.3 || got.LastCategory != "Religion" {
		t.Fatalf("saved volume=%v category=%q", got.Volume, got.LastCategory)
	}
}

type trayTestApp struct {
	fyne.App
	icon fyne.Resource
}

func (a *trayTestApp) SetSystemTrayMenu(*fyne.Menu) {}
func (a *trayTestApp) SetSystemTrayIcon(r fyne.Resource) { a.icon = r }

func TestTrayShowsStationArtwork(t *testing.T) {
	var png16 bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	img.Set(8, 8, color.NRGBA{R: 255, A: 255})
	if err := png.Encode(&png16, img); err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png16.Bytes())
	}))
	defer srv.Close()

	a, _ := newTestApp(t, fakeSource{})
	tray := &trayTestApp{App: a.fa}
	a.media = mediasession.New(tray, a.w, mediasession.Controls{}, AppIcon)
	queue := make(chan func(), 4)
	a.dispatch = func(f func()) { queue <- f }

	st := catalog.Station{ID: "x", Name: "Art FM", URL: "http://x/stream", Favicon: srv.URL + "/icon.png"}
	a.sess.Select(st)
	// the detail view and the tray each fetch the favicon
	for range 2 {
		(<-queue)()
	}

	if got := a.media.Artwork(); got != st.Favicon {
		t.Fatalf("artwork = %q", got)
	}
	if tray.icon == AppIcon || tray.icon == nil {
		t.Fatal("tray icon must show the station artwork")
	}

	a.sess.Select(testStations[0])
	if a.media.Artwork() != "" || tray.icon != AppIcon {
		t.Fatal("a station without a favicon must restore the app icon")
	}
}
