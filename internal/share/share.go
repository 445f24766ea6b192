// Package share hands a station to the platform share facility, or copies a
// listening invitation to the clipboard when there is none.
package share

import (
	"errors"
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"

	"github.com/edward-ap/phradio/internal/catalog"
)

var logger = logging.Logger("phradio/share")

// ErrUnsupported is returned when neither a native sharer nor a clipboard is
// available.
var ErrUnsupported = errors.New("Sharing is not supported on this device.")

// Payload is what gets shared.
type Payload struct {
	Title string
	Text  string
	URL   string
}

// Native is a platform share sheet.
type Native interface {
	Share(p Payload) error
}

// Clipboard is the subset of fyne.Clipboard used here.
type Clipboard interface {
	SetContent(content string)
}

// Outcome tells the caller what happened so it can show a notice.
type Outcome int

const (
	// Shared means the native sharer accepted the payload.
	Shared Outcome = iota
	// Copied means the invitation went to the clipboard.
	Copied
)

// PayloadFor builds the share payload for st. The link is the station
// homepage, or the stream URL when there is no homepage.
func PayloadFor(st catalog.Station) Payload {
	link := strings.TrimSpace(st.Homepage)
	if link == "" {
		link = strings.TrimSpace(st.URL)
	}
	return Payload{
		Title: st.Name,
		Text:  fmt.Sprintf("Listen to %s live on PH Radio Live!", st.Name),
		URL:   link,
	}
}

// ClipboardText joins the invitation and the link.
func (p Payload) ClipboardText() string {
	if p.URL == "" {
		return p.Text
	}
	return p.Text + " " + p.URL
}

// Sharer picks the share route.
type Sharer struct {
	native Native
	clip   Clipboard
}

// New returns a sharer. Either argument may be nil.
func New(native Native, clip Clipboard) *Sharer {
	return &Sharer{native: native, clip: clip}
}

// Share shares st. A failing native share is logged and returned without
// falling back, since it usually means the user dismissed the sheet.
func (s *Sharer) Share(st catalog.Station) (Outcome, error) {
	p := PayloadFor(st)
	if s.native != nil {
		if err := s.native.Share(p); err != nil {
			logger.Debugf("native share: %v", err)
			return Shared, fmt.Errorf("share %q: %w", st.Name, err)
		}
		return Shared, nil
	}
	if s.clip == nil {
		logger.Warnf("no clipboard to share %q", st.Name)
		return Copied, ErrUnsupported
	}
	s.clip.SetContent(p.ClipboardText())
	return Copied, nil
}
