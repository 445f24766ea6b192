package player

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/edward-ap/phradio/internal/playback"
)

func TestVLCVolume(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.5, 50},
		{0.333, 33},
		{1, 100},
		{1.7, 100},
		{-0.2, 0},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := vlcVolume(tt.in); got != tt.want {
			t.Errorf("vlcVolume(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestInitArgsTrace(t *testing.T) {
	if slices.Contains(initArgs(false), "--file-logging") {
		t.Fatal("file logging must be off by default")
	}
	args := initArgs(true)
	if !slices.Contains(args, "--file-logging") || !slices.Contains(args, "--logfile=vlc.log") {
		t.Fatalf("trace args = %v", args)
	}
}

func TestEmitTagsEvents(t *testing.T) {
	pl := New("")
	var got []playback.Event
	unsub := pl.Subscribe(func(e playback.Event) { got = append(got, e) })

	pl.emit("", playback.EventPlaying, "", nil)
	pl.emit("tok", playback.EventNowPlaying, "Song", nil)
	unsub()
	pl.emit("tok", playback.EventPlaying, "", nil)

	if len(got) != 1 {
		t.Fatalf("events = %+v", got)
	}
	if got[0].Token != "tok" || got[0].Kind != playback.EventNowPlaying || got[0].Title != "Song" {
		t.Fatalf("event = %+v", got[0])
	}
}

func TestUninitialisedPlayerFails(t *testing.T) {
	pl := New("")
	if err := pl.Load("tok", "http://example/stream"); err == nil {
		t.Fatal("Load without Init should fail")
	}
	if err := pl.Play(); err == nil {
		t.Fatal("Play without media should fail")
	}
	if err := pl.Pause(); err != nil {
		t.Fatalf("Pause while stopped = %v", err)
	}
}

func TestLoadPublishesTokenAfterSwap(t *testing.T) {
	pl := New("")
	var got []playback.Event
	pl.Subscribe(func(e playback.Event) { got = append(got, e) })

	pl.swap = func(string) error { return nil }
	if err := pl.Load("old", "http://a/stream"); err != nil {
		t.Fatal(err)
	}

	var duringSwap string
	pl.swap = func(url string) error {
		duringSwap = pl.currentToken()
		// an error raised while the old media stops
		pl.emit(pl.currentToken(), playback.EventError, "", errors.New("teardown"))
		return nil
	}
	if err := pl.Load("new", " http://b/stream "); err != nil {
		t.Fatal(err)
	}
	if duringSwap != "" {
		t.Fatalf("token during swap = %q", duringSwap)
	}
	if len(got) != 0 {
		t.Fatalf("teardown events leaked: %+v", got)
	}
	if tok := pl.currentToken(); tok != "new" {
		t.Fatalf("token after swap = %q", tok)
	}
}

func TestFailedLoadLeavesNoToken(t *testing.T) {
	pl := New("")
	pl.swap = func(string) error { return nil }
	_ = pl.Load("old", "http://a/stream")

	pl.swap = func(string) error { return errors.New("bad media") }
	if err := pl.Load("new", "http://b/stream"); err == nil {
		t.Fatal("Load must report the swap failure")
	}
	if tok := pl.currentToken(); tok != "" {
		t.Fatalf("token = %q", tok)
	}
}
