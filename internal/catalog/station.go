// Package catalog holds the station directory model: the station record
// returned by Radio Browser, the fixed category table, the filter engine and
// the HTTP client that fetches the catalog.
package catalog

import (
	"encoding/json"
	"strings"
)

// Station is one entry of the directory catalog. Values are immutable once
// fetched; ID is the identity key.
type Station struct {
	ID       string `json:"stationuuid"`
	Name     string `json:"name"`
	URL      string `json:"url_resolved"`
	Tags     string `json:"tags"`
	Language string `json:"language"`
	Country  string `json:"country"`
	State    string `json:"state"`
	Favicon  string `json:"favicon"`
	Homepage string `json:"homepage"`
	Votes    int    `json:"votes"`
	Codec    string `json:"codec"`
	Bitrate  int    `json:"bitrate"`
}

// UnmarshalJSON decodes a Radio Browser record, falling back to the raw "url"
// field when "url_resolved" is empty.
func (s *Station) UnmarshalJSON(b []byte) error {
	type plain Station
	var aux struct {
		plain
		RawURL string `json:"url"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = Station(aux.plain)
	if strings.TrimSpace(s.URL) == "" {
		s.URL = strings.TrimSpace(aux.RawURL)
	}
	return nil
}

// TagList splits the comma separated tags into trimmed, lower-cased tokens.
// Empty tokens are dropped.
func (s Station) TagList() []string {
	if s.Tags == "" {
		return nil
	}
	parts := strings.Split(strings.ToLower(s.Tags), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PrimaryTag returns the first tag for display, or "Radio" when none exist.
func (s Station) PrimaryTag() string {
	if tags := s.TagList(); len(tags) > 0 {
		return tags[0]
	}
	return "Radio"
}

// Region returns the most specific location known for the station.
func (s Station) Region(fallback string) string {
	if v := strings.TrimSpace(s.State); v != "" {
		return v
	}
	if v := strings.TrimSpace(s.Country); v != "" {
		return v
	}
	return fallback
}

// IsFM reports whether the station advertises itself as FM radio.
func (s Station) IsFM() bool {
	return strings.Contains(strings.ToLower(s.Tags), "fm")
}
