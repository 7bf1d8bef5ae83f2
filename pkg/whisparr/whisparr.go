// Package whisparr is the acquisition backend client. It matches missing
// scenes to the backend's series/episode records and queues search commands.
package whisparr

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/match"
	"github.com/stashkit/scenematch/pkg/whttp"
)

type Series struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type Episode struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"releaseDate,omitempty"`
}

type Client struct {
	baseURL string
	apiKey  string
	delay   time.Duration
	http    *retryablehttp.Client
}

// NewClient builds a client that sleeps delay before every call, spacing
// back-to-back requests the way the backend expects.
func NewClient(baseURL, apiKey string, delay time.Duration) *Client {
	return &Client{
		baseURL: utils.NormalizeBaseURL(baseURL),
		apiKey:  apiKey,
		delay:   delay,
		http:    whttp.GetDefaultClient(),
	}
}

func (c *Client) throttle() {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
}

func (c *Client) get(path string, params url.Values) (gjson.Result, error) {
	c.throttle()
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	res, err := whttp.SendHTTPRequest(&whttp.Request{
		Method:  "GET",
		URL:     u,
		Headers: []whttp.Header{{Name: "X-Api-Key", Value: c.apiKey}},
	}, c.http)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("whisparr GET %s: %w", path, err)
	}
	if res.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("whisparr GET %s: HTTP %d", path, res.StatusCode)
	}
	return gjson.Parse(res.BodyString), nil
}

func (c *Client) post(path string, payload interface{}) (gjson.Result, error) {
	c.throttle()
	body, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, err
	}
	res, err := whttp.SendHTTPRequest(&whttp.Request{
		Method: "POST",
		URL:    c.baseURL + path,
		Headers: []whttp.Header{
			{Name: "X-Api-Key", Value: c.apiKey},
			{Name: "Content-Type", Value: "application/json"},
		},
		Body: body,
	}, c.http)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("whisparr POST %s: %w", path, err)
	}
	if res.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("whisparr POST %s: HTTP %d", path, res.StatusCode)
	}
	return gjson.Parse(res.BodyString), nil
}

// SeriesByTitle caches the full series list keyed by normalized title.
func (c *Client) SeriesByTitle() (map[string]Series, error) {
	data, err := c.get("/api/v3/series", nil)
	if err != nil {
		return nil, err
	}
	idx := make(map[string]Series)
	for _, raw := range data.Array() {
		title := raw.Get("title").String()
		key := match.NormalizeTitle(title)
		if key == "" {
			continue
		}
		idx[key] = Series{ID: raw.Get("id").Int(), Title: title}
	}
	utils.Log.WithField("series", len(idx)).Debug("whisparr series cache built")
	return idx, nil
}

// Episodes lists all episodes of one series.
func (c *Client) Episodes(seriesID int64) ([]Episode, error) {
	params := url.Values{}
	params.Set("seriesId", fmt.Sprintf("%d", seriesID))
	data, err := c.get("/api/v3/episode", params)
	if err != nil {
		return nil, err
	}
	var out []Episode
	for _, raw := range data.Array() {
		e := Episode{ID: raw.Get("id").Int(), Title: raw.Get("title").String()}
		if d := match.NormalizeDate(raw.Get("releaseDate").String()); d != nil {
			e.ReleaseDate = d
		}
		out = append(out, e)
	}
	return out, nil
}

// MatchEpisode finds the backend episode for a missing scene. Tiers: exact
// normalized title plus release date, then title alone, then date alone as a
// last resort. Returns nil when nothing fits.
func MatchEpisode(episodes []Episode, title string, date *time.Time) *Episode {
	normTitle := match.NormalizeTitle(title)

	if normTitle != "" && date != nil {
		for i := range episodes {
			if match.NormalizeTitle(episodes[i].Title) == normTitle &&
				episodes[i].ReleaseDate != nil && episodes[i].ReleaseDate.Equal(*date) {
				return &episodes[i]
			}
		}
	}
	if normTitle != "" {
		for i := range episodes {
			if match.NormalizeTitle(episodes[i].Title) == normTitle {
				return &episodes[i]
			}
		}
	}
	if date != nil {
		for i := range episodes {
			if episodes[i].ReleaseDate != nil && episodes[i].ReleaseDate.Equal(*date) {
				return &episodes[i]
			}
		}
	}
	return nil
}

// QueueEpisodeSearch submits an EpisodeSearch command and returns its ID.
func (c *Client) QueueEpisodeSearch(episodeID int64) (int64, error) {
	resp, err := c.post("/api/v3/command", map[string]interface{}{
		"name":       "EpisodeSearch",
		"episodeIds": []int64{episodeID},
	})
	if err != nil {
		return 0, err
	}
	return resp.Get("id").Int(), nil
}
