package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var logger = logging.Logger("phradio/catalog")

const (
	// DefaultEndpoint is the Radio Browser node queried when none is configured.
	DefaultEndpoint = "https://de1.api.radio-browser.info"
	// DefaultCountryCode restricts the catalog to Philippine stations.
	DefaultCountryCode = "PH"
	// DefaultLimit caps the number of returned stations.
	DefaultLimit = 500
	// DefaultUserAgent identifies the app to Radio Browser.
	DefaultUserAgent = "PhilippineRadioApp/1.0"

	searchPath = "/json/stations/search"
	maxBody    = 16 << 20
)

// ErrUnavailable is returned for every failed catalog fetch. Its message is
// the one shown to the user; the underlying cause is wrapped alongside it.
var ErrUnavailable = errors.New("Could not fetch radio stations. Please check your network connection.")

// Source returns the ordered station catalog.
type Source interface {
	Stations(ctx context.Context) ([]Station, error)
}

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	Endpoint    string
	CountryCode string
	Limit       int
	UserAgent   string
	Timeout     time.Duration
}

// Client fetches stations from the Radio Browser search endpoint.
type Client struct {
	http *http.Client
	opts Options
}

// NewClient builds a Client. A nil httpClient uses a client with opts.Timeout.
func NewClient(httpClient *http.Client, opts Options) *Client {
	if strings.TrimSpace(opts.Endpoint) == "" {
		opts.Endpoint = DefaultEndpoint
	}
	opts.Endpoint = strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if strings.TrimSpace(opts.CountryCode) == "" {
		opts.CountryCode = DefaultCountryCode
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{http: httpClient, opts: opts}
}

// SearchURL builds the query: target country, no broken streams, capped
// result count, most voted first.
func (c *Client) SearchURL() string {
	q := url.Values{}
	q.Set("countrycode", c.opts.CountryCode)
	q.Set("hidebroken", "true")
	q.Set("limit", strconv.Itoa(c.opts.Limit))
	q.Set("order", "votes")
	q.Set("reverse", "true")
	return c.opts.Endpoint + searchPath + "?" + q.Encode()
}

// Stations performs the one catalog request. Any failure, including a non-2xx
// status or a malformed payload, is reported as ErrUnavailable.
func (c *Client) Stations(ctx context.Context) ([]Station, error) {
	stations, err := c.fetch(ctx)
	if err != nil {
		logger.Errorf("failed to fetch stations: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	logger.Infof("fetched %d stations", len(stations))
	return stations, nil
}

func (c *Client) fetch(ctx context.Context) ([]Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SearchURL(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var stations []Station
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBody))
	if err := dec.Decode(&stations); err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}
	if stations == nil {
		stations = []Station{}
	}
	return stations, nil
}

// UserMessage extracts the user-facing text for a catalog error.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnavailable) {
		return ErrUnavailable.Error()
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return "An unknown error occurred."
}
