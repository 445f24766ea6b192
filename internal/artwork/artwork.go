// Package artwork downloads and decodes station favicons. Radio Browser
// favicons come in every format a browser accepts, so WebP and BMP decoders
// are registered next to the standard ones.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var logger = logging.Logger("phradio/artwork")

// ErrNoArtwork reports a station without a usable favicon.
var ErrNoArtwork = errors.New("no artwork")

const maxImageBytes = 2 << 20

// Fetcher downloads favicons and remembers the outcome per URL, failures
// included, so a broken favicon is requested once per run.
type Fetcher struct {
	client    *http.Client
	userAgent string

	mu    sync.Mutex
	cache map[string]result
}

type result struct {
	img image.Image
	err error
}

// NewFetcher returns a fetcher; a nil client gets a short timeout.
func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fetcher{client: client, userAgent: userAgent, cache: map[string]result{}}
}

// Fetch returns the decoded image behind url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrNoArtwork
	}
	f.mu.Lock()
	if r, ok := f.cache[url]; ok {
		f.mu.Unlock()
		return r.img, r.err
	}
	f.mu.Unlock()

	img, err := f.download(ctx, url)
	if err != nil {
		logger.Debugf("favicon %s: %v", url, err)
		err = fmt.Errorf("%w: %w", ErrNoArtwork, err)
	}
	if ctx.Err() == nil {
		f.mu.Lock()
		f.cache[url] = result{img: img, err: err}
		f.mu.Unlock()
	}
	return img, err
}

func (f *Fetcher) download(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	img, format, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	logger.Debugf("favicon %s decoded as %s %v", url, format, img.Bounds().Size())
	return img, nil
}
