// Package playback binds the session's current station, play intent and
// volume to an audio primitive, and turns the primitive's lifecycle events
// into a compact player status.
package playback

import "fmt"

// EventKind enumerates the lifecycle signals a Primitive emits.
type EventKind int

const (
	// EventBuffering reports that the source is (re)filling its buffer.
	EventBuffering EventKind = iota
	// EventPlaying reports that audio output has started.
	EventPlaying
	// EventError reports a stream or decoder failure.
	EventError
	// EventNowPlaying carries a new stream title in Event.Title.
	EventNowPlaying
)

// String returns a readable label for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventBuffering:
		return "buffering"
	case EventPlaying:
		return "playing"
	case EventError:
		return "error"
	case EventNowPlaying:
		return "now-playing"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a lifecycle signal tagged with the token of the source it
// belongs to.
type Event struct {
	Token string
	Kind  EventKind
	Title string
	Err   error
}

// Primitive is the audio output the binding drives. Load switches the source
// and tags every later event for it with token. Subscribe may deliver events
// on any goroutine.
type Primitive interface {
	Load(token, url string) error
	Play() error
	Pause() error
	SetVolume(v float64) error
	Subscribe(fn func(Event)) (unsubscribe func())
}

// Status is the player state shown next to the controls.
type Status int

const (
	// StatusIdle means no station is bound.
	StatusIdle Status = iota
	// StatusBuffering means the source is loading.
	StatusBuffering
	// StatusLive means audio is playing.
	StatusLive
	// StatusUnavailable means the primitive reported a stream error.
	StatusUnavailable
	// StatusError means a play command was rejected.
	StatusError
)

// String returns the label displayed in the player bar.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return ""
	case StatusBuffering:
		return "Buffering..."
	case StatusLive:
		return "Live"
	case StatusUnavailable:
		return "Unavailable"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Failed reports whether the status is one of the error states.
func (s Status) Failed() bool {
	return s == StatusUnavailable || s == StatusError
}
