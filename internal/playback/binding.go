package playback

import (
	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"

	"github.com/edward-ap/phradio/internal/session"
)

var logger = logging.Logger("phradio/playback")

// Binding applies session snapshots to a Primitive. Apply is level
// triggered: calling it again with the same snapshot re-issues the same
// play/pause command and is harmless.
//
// Binding is not safe for concurrent use; primitive events are routed
// through the dispatch function given to NewBinding.
type Binding struct {
	prim     Primitive
	dispatch func(func())
	newToken func() string
	unsub    func()

	token     string
	stationID string
	loaded    bool // the source for stationID was accepted by the primitive
	intent    bool // play intent of the last applied snapshot
	volume    float64
	status    Status
	title     string

	onChange func(Status, string)
}

// NewBinding subscribes to prim. dispatch moves event handling onto the
// goroutine that owns the binding; nil runs handlers inline.
func NewBinding(prim Primitive, dispatch func(func())) *Binding {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	b := &Binding{
		prim:     prim,
		dispatch: dispatch,
		newToken: uuid.NewString,
		volume:   -1,
	}
	b.unsub = prim.Subscribe(func(e Event) {
		b.dispatch(func() { b.Handle(e) })
	})
	return b
}

// OnChange registers fn to receive status and now-playing updates.
func (b *Binding) OnChange(fn func(Status, string)) { b.onChange = fn }

// Status returns the current player status.
func (b *Binding) Status() Status { return b.status }

// NowPlaying returns the latest stream title for the bound station.
func (b *Binding) NowPlaying() string { return b.title }

// Token returns the tag of the active source, "" when idle.
func (b *Binding) Token() string { return b.token }

// Close stops listening to the primitive.
func (b *Binding) Close() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}

// Invalidate forgets the bound source so the next Apply loads the current
// station again under a fresh token.
func (b *Binding) Invalidate() {
	b.stationID = ""
	b.loaded = false
}

// Apply drives the primitive from snap: switch source when the current
// station changed, then play or pause according to the intent. Volume is
// applied independently of play state. A source the primitive rejected is
// loaded again when the play intent is asserted anew.
func (b *Binding) Apply(snap session.Snapshot) {
	status, title := b.status, b.title
	defer func() {
		b.intent = snap.Playing
		if status != b.status || title != b.title {
			b.emit()
		}
	}()

	if snap.Volume != b.volume {
		if err := b.prim.SetVolume(snap.Volume); err != nil {
			logger.Warnf("set volume %.2f: %v", snap.Volume, err)
		} else {
			b.volume = snap.Volume
		}
	}

	if snap.Current == nil {
		if b.stationID != "" {
			if err := b.prim.Pause(); err != nil {
				logger.Debugf("pause: %v", err)
			}
		}
		b.token, b.stationID, b.loaded = "", "", false
		b.status, b.title = StatusIdle, ""
		return
	}

	switched := snap.Current.ID != b.stationID
	retry := !switched && !b.loaded && snap.Playing && !b.intent
	if switched || retry {
		b.stationID = snap.Current.ID
		b.loaded = false
		b.token = b.newToken()
		b.title = ""
		b.status = StatusBuffering
		logger.Infof("switching to %q (%s)", snap.Current.Name, b.token)
		if err := b.prim.Load(b.token, snap.Current.URL); err != nil {
			logger.Errorf("load %q: %v", snap.Current.URL, err)
			b.status = StatusUnavailable
			return
		}
		b.loaded = true
	}
	if !b.loaded {
		return
	}

	if snap.Playing {
		if err := b.prim.Play(); err != nil {
			logger.Errorf("playback failed: %v", err)
			b.status = StatusError
		}
		return
	}
	if err := b.prim.Pause(); err != nil {
		logger.Debugf("pause: %v", err)
	}
}

// Handle applies a primitive event. Events tagged for a source other than
// the active one are dropped.
func (b *Binding) Handle(e Event) {
	if e.Token == "" || e.Token != b.token {
		logger.Debugf("dropping stale %s event (%s)", e.Kind, e.Token)
		return
	}
	status, title := b.status, b.title
	switch e.Kind {
	case EventBuffering:
		b.status = StatusBuffering
	case EventPlaying:
		b.status = StatusLive
	case EventError:
		logger.Warnf("stream error: %v", e.Err)
		b.status = StatusUnavailable
	case EventNowPlaying:
		b.title = e.Title
	}
	if status != b.status || title != b.title {
		b.emit()
	}
}

func (b *Binding) emit() {
	if b.onChange != nil {
		b.onChange(b.status, b.title)
	}
}
