package metadata

import (
	"bufio"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// watchICY requests the stream with Icy-MetaData and decodes the metadata
// block that follows every icy-metaint bytes of audio.
func (w *Watcher) watchICY(ctx context.Context, streamURL string, emit func(Info)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("icy request: %w", err)
	}
	req.Header.Set("Icy-MetaData", "1")
	req.Header.Set("User-Agent", w.userAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("icy connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("icy connect: status %d: %w", resp.StatusCode, ErrNoMetadata)
	}
	interval, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("icy-metaint")))
	if err != nil || interval <= 0 {
		return ErrNoMetadata
	}
	station := html.UnescapeString(strings.TrimSpace(resp.Header.Get("icy-name")))
	w.log.Debugf("icy metaint=%d station=%q", interval, station)

	r := bufio.NewReader(resp.Body)
	for {
		block, err := nextMetaBlock(r, interval)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("icy read: %w", err)
		}
		if title := parseStreamTitle(block); title != "" {
			emit(Info{Title: title, Station: station})
		}
	}
}

// nextMetaBlock skips interval bytes of audio and returns the metadata block
// after them, "" when the block is empty.
func nextMetaBlock(r *bufio.Reader, interval int) (string, error) {
	if _, err := r.Discard(interval); err != nil {
		return "", err
	}
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, int(n)*16)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return strings.TrimRight(string(buf), "\x00"), nil
}

// parseStreamTitle extracts StreamTitle from an ICY block. Quoted values may
// contain the quote character; only a quote followed by ';' and another key,
// or the end of the block, closes the value.
func parseStreamTitle(block string) string {
	const key = "StreamTitle="
	i := strings.Index(block, key)
	if i < 0 {
		return ""
	}
	v := strings.TrimSpace(block[i+len(key):])
	if v == "" {
		return ""
	}

	q := v[0]
	if q != '\'' && q != '"' {
		if end := strings.IndexByte(v, ';'); end >= 0 {
			v = v[:end]
		}
		return html.UnescapeString(strings.TrimSpace(v))
	}

	v = v[1:]
	end := -1
	for j := 0; j < len(v); j++ {
		if v[j] != q {
			continue
		}
		rest := strings.TrimLeft(v[j+1:], " \t")
		if rest == "" || (rest[0] == ';' && (strings.TrimSpace(rest[1:]) == "" || strings.Contains(rest[1:], "="))) {
			end = j
			break
		}
	}
	if end < 0 {
		end = strings.LastIndexByte(v, q)
	}
	if end >= 0 {
		v = v[:end]
	}
	return html.UnescapeString(strings.TrimSpace(v))
}
