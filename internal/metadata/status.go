package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// watchStatus polls the Icecast status-json.xsl page next to the mount. The
// first poll must succeed, later failures are skipped until the next tick.
func (w *Watcher) watchStatus(ctx context.Context, streamURL string, emit func(Info)) error {
	api, err := statusURL(streamURL)
	if err != nil {
		return err
	}
	info, err := w.pollStatus(ctx, api)
	if err != nil {
		return err
	}
	emit(info)

	t := time.NewTicker(w.pollEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			info, err := w.pollStatus(ctx, api)
			if err != nil {
				w.log.Debugf("status poll %s: %v", api, err)
				continue
			}
			emit(info)
		}
	}
}

func (w *Watcher) pollStatus(ctx context.Context, api string) (Info, error) {
	cctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, api, nil)
	if err != nil {
		return Info{}, err
	}
	req.Header.Set("User-Agent", w.userAgent)
	resp, err := w.client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("status page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Info{}, fmt.Errorf("status page: status %d: %w", resp.StatusCode, ErrNoMetadata)
	}

	var doc struct {
		IceStats struct {
			Source json.RawMessage `json:"source"`
		} `json:"icestats"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&doc); err != nil {
		return Info{}, fmt.Errorf("status page: %w: %w", ErrNoMetadata, err)
	}
	for _, src := range decodeSources(doc.IceStats.Source) {
		if strings.TrimSpace(src.Title) == "" {
			continue
		}
		station := src.ServerName
		if strings.TrimSpace(station) == "" {
			station = src.IcyName
		}
		return Info{Title: src.Title, Station: station}, nil
	}
	return Info{}, ErrNoMetadata
}

// statusURL maps ".../live/rock" to ".../live/status-json.xsl".
func statusURL(streamURL string) (string, error) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return "", fmt.Errorf("status page url: %w", err)
	}
	u.Path = path.Join("/", path.Dir(u.Path), "status-json.xsl")
	u.RawQuery = ""
	return u.String(), nil
}

type iceSource struct {
	Title      string `json:"title"`
	ServerName string `json:"server_name"`
	IcyName    string `json:"icy-name"`
}

// decodeSources accepts Icecast's "source" as one object or a list of them.
func decodeSources(raw json.RawMessage) []iceSource {
	var list []iceSource
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var one iceSource
	if json.Unmarshal(raw, &one) == nil {
		return []iceSource{one}
	}
	return nil
}
