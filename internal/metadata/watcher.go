// Package metadata follows the now-playing title of an internet radio stream.
// It reads ICY blocks interleaved with the audio first and falls back to the
// Icecast status page next to the mount.
package metadata

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// DefaultUserAgent is sent when the caller does not configure one.
const DefaultUserAgent = "PhilippineRadioApp/1.0"

// ErrNoMetadata reports that a source exposes no usable title information.
var ErrNoMetadata = errors.New("stream metadata unavailable")

// Info is one metadata observation.
type Info struct {
	Title   string
	Station string
}

// Logger receives non-fatal diagnostics. go-log's loggers satisfy it.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}

// Watcher resolves titles for one stream at a time; it holds no per-stream
// state and may be shared.
type Watcher struct {
	client    *http.Client
	log       Logger
	userAgent string
	pollEvery time.Duration
}

// NewWatcher returns a watcher using client, or a streaming-friendly default
// client when nil.
func NewWatcher(client *http.Client, log Logger, userAgent string) *Watcher {
	if client == nil {
		client = &http.Client{Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSHandshakeTimeout:   7 * time.Second,
			ResponseHeaderTimeout: 10 * time.Second,
		}}
	}
	if log == nil {
		log = nopLogger{}
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Watcher{client: client, log: log, userAgent: userAgent, pollEvery: 10 * time.Second}
}

// Watch blocks until ctx is cancelled or no source yields metadata. onUpdate
// is called on the watcher's goroutine, only when the title changes.
func (w *Watcher) Watch(ctx context.Context, streamURL string, onUpdate func(Info)) error {
	if streamURL == "" || onUpdate == nil {
		return ErrNoMetadata
	}
	last := ""
	emit := func(info Info) {
		info.Title = strings.TrimSpace(info.Title)
		if info.Title == "" || info.Title == last {
			return
		}
		last = info.Title
		onUpdate(info)
	}

	err := w.watchICY(ctx, streamURL, emit)
	if !errors.Is(err, ErrNoMetadata) {
		return err
	}
	w.log.Debugf("no icy metadata on %s, trying status page", streamURL)
	return w.watchStatus(ctx, streamURL, emit)
}
