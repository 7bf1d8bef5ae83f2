// Package stashdb is the reference-catalog source: a StashDB GraphQL client.
// A reference scene's own UUID is its cross-reference identifier.
package stashdb

import (
	"fmt"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/match"
	"github.com/stashkit/scenematch/pkg/whttp"
)

const perPage = 100

type Performer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: utils.NormalizeBaseURL(baseURL),
		apiKey:  apiKey,
		http:    whttp.GetDefaultClient(),
	}
}

func (c *Client) gql(query string, variables map[string]interface{}) (gjson.Result, error) {
	return whttp.SendGraphQL(c.http, c.baseURL+"/graphql", c.apiKey, query, variables)
}

const findPerformerQuery = `
query FindPerformer($id: ID!) {
  findPerformer(id: $id) {
    id
    name
  }
}`

// FindPerformer resolves a performer UUID to its basic record.
func (c *Client) FindPerformer(id string) (*Performer, error) {
	data, err := c.gql(findPerformerQuery, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("stashdb findPerformer: %w", err)
	}
	perf := data.Get("findPerformer")
	if !perf.Exists() || perf.Type == gjson.Null {
		return nil, fmt.Errorf("stashdb: performer %s not found or not accessible", id)
	}
	return &Performer{ID: perf.Get("id").String(), Name: perf.Get("name").String()}, nil
}

// queryScenes paginates directly on the input object, unlike StashApp's
// filter argument.
const queryScenesQuery = `
query QueryScenes($input: SceneQueryInput!) {
  queryScenes(input: $input) {
    count
    scenes {
      id
      title
      date
      code
      studio { id name }
    }
  }
}`

// ScenesForPerformer pages through every reference scene of one performer,
// newest first.
func (c *Client) ScenesForPerformer(performerID string) ([]match.Scene, error) {
	var out []match.Scene
	total := -1
	for page := 1; ; page++ {
		data, err := c.gql(queryScenesQuery, map[string]interface{}{
			"input": map[string]interface{}{
				"performers": map[string]interface{}{"value": []string{performerID}, "modifier": "INCLUDES"},
				"page":       page,
				"per_page":   perPage,
				"sort":       "DATE",
				"direction":  "DESC",
			},
		})
		if err != nil {
			return nil, fmt.Errorf("stashdb queryScenes page %d: %w", page, err)
		}
		block := data.Get("queryScenes")
		if !block.Exists() {
			return nil, fmt.Errorf("stashdb: queryScenes returned no data")
		}
		scenes := block.Get("scenes").Array()
		if total < 0 {
			total = int(block.Get("count").Int())
		}
		for _, raw := range scenes {
			out = append(out, mapScene(raw))
		}
		utils.Log.WithFields(map[string]interface{}{
			"page": page, "returned": len(scenes), "total": total,
		}).Debug("stashdb scenes page")
		if len(out) >= total || len(scenes) == 0 {
			break
		}
	}
	return out, nil
}

func mapScene(raw gjson.Result) match.Scene {
	id := raw.Get("id").String()
	s := match.Scene{ID: id}
	if id != "" {
		s.CrossRefs = []string{id}
	}
	if title := raw.Get("title"); title.Type == gjson.String {
		v := title.Str
		s.Title = &v
	}
	if d := match.NormalizeDate(raw.Get("date").String()); d != nil {
		s.Date = d
	}
	if studio := raw.Get("studio.name"); studio.Type == gjson.String && studio.Str != "" {
		v := studio.Str
		s.Studio = &v
	}
	return s
}
