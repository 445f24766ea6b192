// Package player drives libVLC as the app's audio primitive. Every libVLC call
// is serialised behind one lock; lifecycle callbacks and now-playing titles
// are delivered to subscribers tagged with the token of the loaded source.
package player

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	vlc "github.com/adrg/libvlc-go/v3"
	logging "github.com/ipfs/go-log/v2"

	"github.com/edward-ap/phradio/internal/metadata"
	"github.com/edward-ap/phradio/internal/playback"
)

var logger = logging.Logger("phradio/player")

// Player implements playback.Primitive on top of libVLC.
type Player struct {
	// single lock guarding all C/libVLC invocations
	vlcMu    sync.Mutex
	p        *vlc.Player
	media    *vlc.Media
	events   *vlc.EventManager
	eventIDs []vlc.EventID

	// guards the fields below, never held across libVLC calls
	mu      sync.Mutex
	token   string
	stream  string
	playing bool
	subs    map[int]func(playback.Event)
	nextSub int

	// swap replaces the libVLC media; called with vlcMu held
	swap func(url string) error

	watcher     *metadata.Watcher
	watchCancel context.CancelFunc
	watchWG     sync.WaitGroup

	userAgent string
}

var _ playback.Primitive = (*Player)(nil)

// New returns an uninitialised player. userAgent is sent with stream and
// metadata requests.
func New(userAgent string) *Player {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = metadata.DefaultUserAgent
	}
	pl := &Player{
		subs:      map[int]func(playback.Event){},
		watcher:   metadata.NewWatcher(nil, logger, userAgent),
		userAgent: userAgent,
	}
	pl.swap = pl.swapVLC
	return pl
}

// Init loads libVLC and attaches the lifecycle callbacks. It must be called
// before Load.
func (pl *Player) Init() error {
	// a "plugins" directory next to the executable wins over the system one
	if exe, err := os.Executable(); err == nil {
		plugins := filepath.Join(filepath.Dir(exe), "plugins")
		if st, err := os.Stat(plugins); err == nil && st.IsDir() {
			_ = os.Setenv("VLC_PLUGIN_PATH", plugins)
		}
	}

	pl.vlcMu.Lock()
	defer pl.vlcMu.Unlock()

	if err := vlc.Init(initArgs(isTraceLoggingEnabled())...); err != nil {
		return fmt.Errorf("libvlc init failed: %w", err)
	}
	logger.Infof("libVLC %s", vlc.Version().String())

	p, err := vlc.NewPlayer()
	if err != nil {
		_ = vlc.Release()
		return fmt.Errorf("new vlc player failed: %w", err)
	}
	em, err := p.EventManager()
	if err != nil {
		_ = p.Release()
		_ = vlc.Release()
		return fmt.Errorf("vlc event manager: %w", err)
	}

	kinds := map[vlc.Event]playback.EventKind{
		vlc.MediaPlayerBuffering:        playback.EventBuffering,
		vlc.MediaPlayerPlaying:          playback.EventPlaying,
		vlc.MediaPlayerEncounteredError: playback.EventError,
	}
	for ev, kind := range kinds {
		kind := kind
		id, err := em.Attach(ev, func(vlc.Event, interface{}) {
			// libVLC forbids calling back into the player from here
			pl.emit(pl.currentToken(), kind, "", nil)
		}, nil)
		if err != nil {
			em.Detach(pl.eventIDs...)
			_ = p.Release()
			_ = vlc.Release()
			return fmt.Errorf("attach vlc event: %w", err)
		}
		pl.eventIDs = append(pl.eventIDs, id)
	}

	pl.p, pl.events = p, em
	return nil
}

func initArgs(trace bool) []string {
	args := []string{
		"--no-video",
		"--no-color",
		"--network-caching=1500",
		"--live-caching=1500",
		"--http-reconnect",
	}
	if trace {
		args = append(args, vlcTraceArgs()...)
	}
	return args
}

// Release stops playback and frees libVLC.
func (pl *Player) Release() {
	pl.stopWatcher()

	pl.vlcMu.Lock()
	defer pl.vlcMu.Unlock()
	if pl.events != nil {
		pl.events.Detach(pl.eventIDs...)
		pl.events, pl.eventIDs = nil, nil
	}
	if pl.p != nil {
		_ = pl.p.Stop()
		_ = pl.p.Release()
		pl.p = nil
	}
	if pl.media != nil {
		_ = pl.media.Release()
		pl.media = nil
	}
	_ = vlc.Release()
}

// Subscribe registers fn for lifecycle events. fn runs on libVLC or watcher
// goroutines.
func (pl *Player) Subscribe(fn func(playback.Event)) func() {
	pl.mu.Lock()
	id := pl.nextSub
	pl.nextSub++
	pl.subs[id] = fn
	pl.mu.Unlock()
	return func() {
		pl.mu.Lock()
		delete(pl.subs, id)
		pl.mu.Unlock()
	}
}

func (pl *Player) emit(token string, kind playback.EventKind, title string, err error) {
	if token == "" {
		return
	}
	pl.mu.Lock()
	ids := make([]int, 0, len(pl.subs))
	for id := range pl.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(playback.Event), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, pl.subs[id])
	}
	pl.mu.Unlock()

	e := playback.Event{Token: token, Kind: kind, Title: title, Err: err}
	for _, fn := range fns {
		fn(e)
	}
}

func (pl *Player) currentToken() string {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.token
}

// Load swaps the media for url. The token is published only once the new
// media is set, so callbacks raised while the old media shuts down carry no
// token and are dropped.
func (pl *Player) Load(token, url string) error {
	pl.stopWatcher()

	u := strings.TrimSpace(url)
	pl.mu.Lock()
	pl.token, pl.stream, pl.playing = "", "", false
	pl.mu.Unlock()

	pl.vlcMu.Lock()
	err := pl.swap(u)
	pl.vlcMu.Unlock()
	if err != nil {
		return err
	}

	pl.mu.Lock()
	pl.token, pl.stream = token, u
	pl.mu.Unlock()
	return nil
}

func (pl *Player) swapVLC(url string) error {
	if pl.p == nil {
		return fmt.Errorf("vlc player not initialized")
	}
	_ = pl.p.Stop()
	if pl.media != nil {
		_ = pl.media.Release()
		pl.media = nil
	}

	m, err := vlc.NewMediaFromURL(url)
	if err != nil {
		return fmt.Errorf("new media from url failed: %w", err)
	}
	_ = m.AddOptions(
		":http-user-agent="+pl.userAgent,
		":network-caching=1500",
		":live-caching=1500",
		":http-reconnect",
	)
	if err := pl.p.SetMedia(m); err != nil {
		_ = m.Release()
		return fmt.Errorf("set media failed: %w", err)
	}
	pl.media = m
	return nil
}

// Play starts or resumes the loaded media and the title watcher.
func (pl *Player) Play() error {
	pl.vlcMu.Lock()
	if pl.p == nil || pl.media == nil {
		pl.vlcMu.Unlock()
		return fmt.Errorf("no media loaded")
	}
	err := pl.p.Play()
	pl.vlcMu.Unlock()
	if err != nil {
		return fmt.Errorf("play failed: %w", err)
	}

	pl.mu.Lock()
	resumed := pl.playing
	pl.playing = true
	token, stream := pl.token, pl.stream
	pl.mu.Unlock()
	if !resumed {
		pl.startWatcher(token, stream)
	}
	return nil
}

// Pause halts output for the loaded media; the source stays loaded.
func (pl *Player) Pause() error {
	pl.mu.Lock()
	wasPlaying := pl.playing
	pl.playing = false
	pl.mu.Unlock()
	if !wasPlaying {
		return nil
	}
	pl.stopWatcher()

	pl.vlcMu.Lock()
	defer pl.vlcMu.Unlock()
	if pl.p == nil {
		return nil
	}
	// live streams are not seekable, so pausing means stopping
	if err := pl.p.Stop(); err != nil {
		return fmt.Errorf("pause failed: %w", err)
	}
	return nil
}

// SetVolume applies v in [0,1] as libVLC's 0..100 scale.
func (pl *Player) SetVolume(v float64) error {
	pl.vlcMu.Lock()
	defer pl.vlcMu.Unlock()
	if pl.p == nil {
		return fmt.Errorf("vlc player not initialized")
	}
	return pl.p.SetVolume(vlcVolume(v))
}

func vlcVolume(v float64) int {
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return int(math.Round(v * 100))
}

// startWatcher follows the stream's title in the background and reports each
// change as an EventNowPlaying tagged with token.
func (pl *Player) startWatcher(token, stream string) {
	pl.stopWatcher()
	if stream == "" {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	pl.mu.Lock()
	pl.watchCancel = cancel
	pl.mu.Unlock()

	pl.watchWG.Add(1)
	go func() {
		defer pl.watchWG.Done()
		err := pl.watcher.Watch(ctx, stream, func(info metadata.Info) {
			pl.emit(token, playback.EventNowPlaying, info.Title, nil)
		})
		if err != nil && ctx.Err() == nil {
			logger.Debugf("title watcher for %s ended: %v", stream, err)
		}
	}()
}

func (pl *Player) stopWatcher() {
	pl.mu.Lock()
	cancel := pl.watchCancel
	pl.watchCancel = nil
	pl.mu.Unlock()
	if cancel != nil {
		cancel()
		pl.watchWG.Wait()
	}
}
