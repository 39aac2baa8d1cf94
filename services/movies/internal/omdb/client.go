// Package omdb is a minimal client for the OMDb movie metadata API.
package omdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// ErrNotFound is returned when OMDb has no entry for the requested title.
var ErrNotFound = errors.New("omdb: movie not found")

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = "https://www.omdbapi.com"
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether the client has an API key configured.
// Without a key every lookup fails upstream, so callers skip enrichment.
func (c *Client) Enabled() bool {
	return c != nil && c.APIKey != ""
}

// MovieData is the subset of the OMDb payload the catalog uses.
type MovieData struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Director string `json:"Director"`
	Plot     string `json:"Plot"`
	Genre    string `json:"Genre"`
	Poster   string `json:"Poster"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// YearInt parses the leading digits of the Year field. OMDb formats
// series years as ranges like "1995-1998".
func (d MovieData) YearInt() int {
	digits := d.Year
	for i, r := range digits {
		if r < '0' || r > '9' {
			digits = digits[:i]
			break
		}
	}
	y, _ := strconv.Atoi(digits)
	return y
}

// ByTitle looks a movie up by exact title.
func (c *Client) ByTitle(ctx context.Context, title string) (*MovieData, error) {
	u := fmt.Sprintf("%s/?apikey=%s&t=%s", c.BaseURL, url.QueryEscape(c.APIKey), url.QueryEscape(title))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "movie-platform/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("omdb: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out MovieData
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("omdb: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	if !strings.EqualFold(out.Response, "True") {
		if strings.Contains(strings.ToLower(out.Error), "not found") {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("omdb: %s", out.Error)
	}
	return &out, nil
}
