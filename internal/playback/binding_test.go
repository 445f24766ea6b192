package playback

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/edward-ap/phradio/internal/catalog"
	"github.com/edward-ap/phradio/internal/session"
)

type fakePrimitive struct {
	calls   []string
	loads   []string
	volume  float64
	playErr error
	loadErr error
	subs    []func(Event)
}

func (f *fakePrimitive) Load(token, url string) error {
	f.calls = append(f.calls, "load "+url)
	f.loads = append(f.loads, token)
	return f.loadErr
}

func (f *fakePrimitive) Play() error {
	f.calls = append(f.calls, "play")
	return f.playErr
}

func (f *fakePrimitive) Pause() error {
	f.calls = append(f.calls, "pause")
	return nil
}

func (f *fakePrimitive) SetVolume(v float64) error {
	f.calls = append(f.calls, fmt.Sprintf("volume %.2f", v))
	f.volume = v
	return nil
}

func (f *fakePrimitive) Subscribe(fn func(Event)) func() {
	f.subs = append(f.subs, fn)
	idx := len(f.subs) - 1
	return func() { f.subs[idx] = nil }
}

func (f *fakePrimitive) emit(e Event) {
	for _, fn := range f.subs {
		if fn != nil {
			fn(e)
		}
	}
}

func newTestBinding(prim *fakePrimitive) *Binding {
	b := NewBinding(prim, nil)
	n := 0
	b.newToken = func() string {
		n++
		return fmt.Sprintf("tok-%d", n)
	}
	return b
}

var (
	stA = catalog.Station{ID: "a", Name: "DZRJ", URL: "http://a"}
	stB = catalog.Station{ID: "b", Name: "Love Radio", URL: "http://b"}
)

func snap(current *catalog.Station, playing bool, volume float64) session.Snapshot {
	return session.Snapshot{Current: current, Playing: playing, Volume: volume}
}

func TestApplySwitchesSourceAndPlays(t *testing.T) {
	prim := &fakePrimitive{}
	b := newTestBinding(prim)

	b.Apply(snap(&stA, true, 1))
	want := []string{"volume 1.00", "load http://a", "play"}
	if !reflect.DeepEqual(prim.calls, want) {
		t.Fatalf("calls = %v, want %v", prim.calls, want)
	}
	if b.Status() != StatusBuffering {
		t.Fatalf("status = %v, want buffering", b.Status())
	}

	prim.emit(Event{Token: b.Token(), Kind: EventPlaying})
	if b.Status() != StatusLive {
		t.Fatalf("status = %v, want live", b.Status())
	}
}

func TestApplyIsLevelTriggered(t *testing.T) {
	prim := &fakePrimitive{}
	b := newTestBinding(prim)
	b.Apply(snap(&stA, true, 0.5))
	b.Apply(snap(&stA, true, 0.5))
	b.Apply(snap(&stA, false, 0.5))
	want := []string{"volume 0.50", "load http://a", "play", "play", "pause"}
	if !reflect.DeepEqual(prim.calls, want) {
		t.Fatalf("calls = %v, want %v", prim.calls, want)
	}
	if len(prim.loads) != 1 {
		t.Fatalf("source loaded %d times", len(prim.loads))
	}
}

func TestVolumeAppliedIndependently(t *testing.T) {
	prim := &fakePrimitive{}
	b := newTestBinding(prim)
	b.Apply(snap(nil, false, 0.3))
	if prim.volume != 0.3 {
		t.Fatalf("volume = %v", prim.volume)
	}
	b.Apply(snap(&stA, false, 0.7))
	if prim.volume != 0.7 {
		t.Fatalf("volume = %v", prim.volume)
	}
}

func TestStaleEventsAreDropped(t *testing.T) {
	prim := &fakePrimitive{}
	b := newTestBinding(prim)
	b.Apply(snap(&stA, true, 1))
	oldToken := b.Token()
	b.Apply(snap(&stB, true, 1))
	if b.Token() == oldToken {
		t.Fatal("switching station must mint a new token")
	}

	prim.emit(Event{Token: oldToken, Kind: EventError, Err: errors.New("404")})
	prim.emit(Event{Token: oldToken, Kind: EventNowPlaying, Title: "old song"})
	if b.Status() != StatusBuffering || b.NowPlaying() != "" {
		t.Fatalf("stale events leaked: status=%v title=%q", b.Status(), b.NowPlaying())
	}

	prim.emit(Event{Token: b.Token(), Kind: EventNowPlaying, Title: "Artist - Song"})
	if b.NowPlaying() != "Artist - Song" {
		t.Fatalf("title = %q", b.NowPlaying())
	}
}

func TestErrorEventsKeepIntent(t *testing.T) {
	prim := &fakePrimitive{}
	b := newTestBinding(prim)
	var updates []Status
	b.OnChange(func(s Status, _ string) { updates = append(updates, s) })

	b.Apply(snap(&stA, true, 1))
	prim.emit(Event{Token: b.Token(), Kind: EventError, Err: errors.New("unreachable")})
	if b.Status() != StatusUnavailable || b.Status().String() != "Unavailable" {
		t.Fatalf("status = %v", b.Status())
	}
	// Retry through the play toggle: pause then play again.
	b.Apply(snap(&stA, false, 1))
	b.Apply(snap(&stA, true, 1))
	if n := len(prim.loads); n != 1 {
		t.Fatalf("retry must not reload the source, loads=%d", n)
	}
	prim.emit(Event{Token: b.Token(), Kind: EventPlaying})
	if b.Status() != StatusLive {
		t.Fatalf("status = %v", b.Status())
	}
	want := []Status{StatusBuffering, StatusUnavailable, StatusLive}
	if !reflect.DeepEqual(updates, want) {
		t.Fatalf("updates = %v, want %v", updates, want)
	}
}

func TestRejectedPlaySetsError(t *testing.T) {
	prim := &fakePrimitive{playErr: errors.New("autoplay blocked")}
	b := newTestBinding(prim)
	b.Apply(snap(&stA, true, 1))
	if b.Status() != StatusError || b.Status().String() != "Error" {
		t.Fatalf("status = %v", b.Status())
	}
}

func TestLoadFailureRetriesOnPlay(t *testing.T) {
	prim := &fakePrimitive{loadErr: errors.New("vlc player not initialized")}
	b := newTestBinding(prim)

	b.Apply(snap(&stA, true, 1))
	if b.Status() != StatusUnavailable {
		t.Fatalf("status = %v", b.Status())
	}
	// unrelated changes must neither reload nor play an unloaded source
	b.Apply(snap(&stA, true, 0.5))
	if len(prim.loads) != 1 || slices.Contains(prim.calls, "play") {
		t.Fatalf("calls = %v", prim.calls)
	}
	if b.Status() != StatusUnavailable {
		t.Fatalf("status after volume change = %v", b.Status())
	}

	prim.loadErr = nil
	b.Apply(snap(&stA, false, 0.5))
	b.Apply(snap(&stA, true, 0.5))
	if len(prim.loads) != 2 || prim.loads[1] != "tok-2" {
		t.Fatalf("loads = %v", prim.loads)
	}
	if last := prim.calls[len(prim.calls)-1]; last != "play" {
		t.Fatalf("calls = %v", prim.calls)
	}
	if b.Status() != StatusBuffering || b.Token() != "tok-2" {
		t.Fatalf("status=%v token=%q", b.Status(), b.Token())
	}
	prim.emit(Event{Token: "tok-1", Kind: EventError, Err: errors.New("late")})
	if b.Status() != StatusBuffering {
		t.Fatal("events for the rejected source must be dropped")
	}
}

func TestInvalidateReloadsCurrentStation(t *testing.T) {
	prim := &fakePrimitive{loadErr: errors.New("vlc player not initialized")}
	b := newTestBinding(prim)
	b.Apply(snap(&stA, true, 1))

	prim.loadErr = nil
	b.Invalidate()
	b.Apply(snap(&stA, true, 1))
	if len(prim.loads) != 2 || prim.calls[len(prim.calls)-1] != "play" {
		t.Fatalf("calls = %v", prim.calls)
	}
	if b.Status() != StatusBuffering {
		t.Fatalf("status = %v", b.Status())
	}
}

func TestNoCurrentStationIsIdle(t *testing.T) {
	prim := &fakePrimitive{}
	b := newTestBinding(prim)
	b.Apply(snap(nil, true, 1))
	if b.Status() != StatusIdle || b.Token() != "" {
		t.Fatalf("status=%v token=%q", b.Status(), b.Token())
	}
	prim.emit(Event{Token: "", Kind: EventPlaying})
	if b.Status() != StatusIdle {
		t.Fatal("untagged events must be ignored")
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	prim := &fakePrimitive{}
	b := newTestBinding(prim)
	b.Apply(snap(&stA, true, 1))
	b.Close()
	prim.emit(Event{Token: b.Token(), Kind: EventPlaying})
	if b.Status() != StatusBuffering {
		t.Fatalf("closed binding handled an event: %v", b.Status())
	}
}

func TestDispatchIsUsed(t *testing.T) {
	prim := &fakePrimitive{}
	var queued []func()
	b := NewBinding(prim, func(f func()) { queued = append(queued, f) })
	b.Apply(snap(&stA, true, 1))
	prim.emit(Event{Token: b.Token(), Kind: EventPlaying})
	if b.Status() != StatusBuffering {
		t.Fatal("event must wait for dispatch")
	}
	for _, f := range queued {
		f()
	}
	if b.Status() != StatusLive {
		t.Fatalf("status = %v", b.Status())
	}
}

func TestStatusLabels(t *testing.T) {
	tests := map[Status]string{
		StatusIdle:        "",
		StatusBuffering:   "Buffering...",
		StatusLive:        "Live",
		StatusUnavailable: "Unavailable",
		StatusError:       "Error",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(s), s.String(), want)
		}
	}
	if !StatusError.Failed() || StatusLive.Failed() {
		t.Error("Failed mismatch")
	}
}
