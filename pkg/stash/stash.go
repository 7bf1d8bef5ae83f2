// Package stash is the local-library catalog source: a StashApp GraphQL
// client that maps scene records into the matching engine's Scene shape.
package stash

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/stashkit/scenematch/internal/utils"
	"github.com/stashkit/scenematch/pkg/match"
	"github.com/stashkit/scenematch/pkg/whttp"
)

const (
	perPage = 100

	// SavedTagName marks user-protected scenes; its presence sets the
	// engine's saved flag.
	SavedTagName = "Saved"

	// DuplicateTagName is applied to remove-candidates of duplicate groups.
	DuplicateTagName = "_DuplicateMarkForDeletion"
)

type Performer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CrossRefID string `json:"crossRefId,omitempty"`
	Favorite   bool   `json:"favorite,omitempty"`
}

// Scene wraps the engine scene with the tag IDs needed to update the record
// later without refetching it.
type Scene struct {
	match.Scene
	TagIDs []string `json:"tagIds,omitempty"`
}

// Catalog strips client-side extras, leaving the engine's input shape.
func Catalog(scenes []Scene) []match.Scene {
	out := make([]match.Scene, len(scenes))
	for i, s := range scenes {
		out[i] = s.Scene
	}
	return out
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

const findScenesQuery = `
query FindScenes($scene_filter: SceneFilterType, $filter: FindFilterType!) {
  findScenes(scene_filter: $scene_filter, filter: $filter) {
    count
    scenes {
      id
      title
      date
      stash_ids { endpoint stash_id }
      studio { id name }
      tags { id name }
      files { size height }
    }
  }
}`

// ScenesForPerformer pages through every scene of one local performer.
func (c *Client) ScenesForPerformer(performerID string) ([]Scene, error) {
	sceneFilter := map[string]interface{}{
		"performers": map[string]interface{}{"value": []string{performerID}, "modifier": "INCLUDES"},
	}
	return c.fetchScenes(sceneFilter)
}

// AllScenes pages through the entire library, for whole-catalog duplicate
// detection.
func (c *Client) AllScenes() ([]Scene, error) {
	return c.fetchScenes(nil)
}

// OrganizedScenes pages through every scene the user marked organized.
func (c *Client) OrganizedScenes() ([]Scene, error) {
	return c.fetchScenes(map[string]interface{}{"organized": true})
}

func (c *Client) fetchScenes(sceneFilter map[string]interface{}) ([]Scene, error) {
	var out []Scene
	for page := 1; ; page++ {
		variables := map[string]interface{}{
			"filter": map[string]interface{}{"per_page": perPage, "page": page},
		}
		if sceneFilter != nil {
			variables["scene_filter"] = sceneFilter
		}
		data, err := c.gql(findScenesQuery, variables)
		if err != nil {
			return nil, fmt.Errorf("stash findScenes page %d: %w", page, err)
		}
		block := data.Get("findScenes")
		scenes := block.Get("scenes").Array()
		for _, raw := range scenes {
			out = append(out, mapScene(raw))
		}
		total := int(block.Get("count").Int())
		utils.Log.WithFields(map[string]interface{}{
			"page": page, "returned": len(scenes), "total": total,
		}).Debug("stash scenes page")
		if len(out) >= total || len(scenes) == 0 {
			break
		}
	}
	return out, nil
}

// mapScene converts one GraphQL scene record. Quality signals take the best
// value across all files attached to the scene.
func mapScene(raw gjson.Result) Scene {
	s := Scene{Scene: match.Scene{ID: raw.Get("id").String()}}

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

	s.CrossRefs = crossRefs(raw.Get("stash_ids"))

	for _, tag := range raw.Get("tags").Array() {
		name := tag.Get("name").String()
		s.Tags = append(s.Tags, name)
		s.TagIDs = append(s.TagIDs, tag.Get("id").String())
		if strings.EqualFold(strings.TrimSpace(name), SavedTagName) {
			s.Saved = true
		}
	}

	var bestHeight int64 = -1
	var bestSize int64 = -1
	for _, f := range raw.Get("files").Array() {
		if h := f.Get("height").Int(); h > bestHeight {
			bestHeight = h
		}
		if sz := f.Get("size").Int(); sz > bestSize {
			bestSize = sz
		}
	}
	if bestHeight >= 0 {
		v := int(bestHeight)
		s.Resolution = &v
	}
	if bestSize >= 0 {
		s.Size = &bestSize
	}
	return s
}

// crossRefs collects the reference-catalog UUIDs linked to a scene or
// performer, deduplicated.
func crossRefs(stashIDs gjson.Result) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, sid := range stashIDs.Array() {
		endpoint := strings.ToLower(sid.Get("endpoint").String())
		id := sid.Get("stash_id").String()
		if id == "" || !strings.Contains(endpoint, "stashdb") {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		refs = append(refs, id)
	}
	return refs
}

const findPerformersQuery = `
query FindPerformers($perPage: Int!, $page: Int!) {
  findPerformers(filter: { per_page: $perPage, page: $page }) {
    count
    performers {
      id
      name
      favorite
      stash_ids { endpoint stash_id }
    }
  }
}`

// FindPerformerByCrossRef scans local performers for one linked to the given
// reference-catalog UUID. Returns nil when no performer carries the link.
func (c *Client) FindPerformerByCrossRef(crossRefID string) (*Performer, error) {
	target := strings.TrimSpace(crossRefID)
	var found *Performer
	err := c.eachPerformer(func(p Performer) bool {
		if p.CrossRefID == target {
			found = &p
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FavoritePerformers lists performers flagged as favorites.
func (c *Client) FavoritePerformers() ([]Performer, error) {
	var out []Performer
	err := c.eachPerformer(func(p Performer) bool {
		if p.Favorite {
			out = append(out, p)
		}
		return true
	})
	return out, err
}

func (c *Client) eachPerformer(visit func(Performer) bool) error {
	seen := 0
	for page := 1; ; page++ {
		data, err := c.gql(findPerformersQuery, map[string]interface{}{"perPage": perPage, "page": page})
		if err != nil {
			return fmt.Errorf("stash findPerformers page %d: %w", page, err)
		}
		block := data.Get("findPerformers")
		performers := block.Get("performers").Array()
		for _, raw := range performers {
			p := Performer{
				ID:       raw.Get("id").String(),
				Name:     raw.Get("name").String(),
				Favorite: raw.Get("favorite").Bool(),
			}
			if refs := crossRefs(raw.Get("stash_ids")); len(refs) > 0 {
				p.CrossRefID = refs[0]
			}
			if !visit(p) {
				return nil
			}
		}
		seen += len(performers)
		if seen >= int(block.Get("count").Int()) || len(performers) == 0 {
			return nil
		}
	}
}

const findTagsQuery = `
query FindTags($filter: FindFilterType) {
  findTags(filter: $filter) {
    tags { id name }
  }
}`

const tagCreateMutation = `
mutation TagCreate($input: TagCreateInput!) {
  tagCreate(input: $input) { id name }
}`

// EnsureTag returns the ID of the named tag, creating it if absent.
func (c *Client) EnsureTag(name string) (string, error) {
	data, err := c.gql(findTagsQuery, map[string]interface{}{
		"filter": map[string]interface{}{"q": name, "per_page": 10, "page": 1},
	})
	if err != nil {
		return "", fmt.Errorf("stash findTags: %w", err)
	}
	for _, tag := range data.Get("findTags.tags").Array() {
		if strings.EqualFold(strings.TrimSpace(tag.Get("name").String()), name) {
			return tag.Get("id").String(), nil
		}
	}

	created, err := c.gql(tagCreateMutation, map[string]interface{}{
		"input": map[string]interface{}{"name": name},
	})
	if err != nil {
		return "", fmt.Errorf("stash tagCreate: %w", err)
	}
	return created.Get("tagCreate.id").String(), nil
}

const sceneUpdateMutation = `
mutation SceneUpdate($input: SceneUpdateInput!) {
  sceneUpdate(input: $input) { id }
}`

// TagScene adds tagID to a scene, preserving its existing tags. A scene that
// already carries the tag is left untouched.
func (c *Client) TagScene(scene Scene, tagID string) error {
	for _, existing := range scene.TagIDs {
		if existing == tagID {
			utils.Log.WithField("scene", scene.ID).Debug("already tagged, skipping")
			return nil
		}
	}
	tagIDs := append(append([]string{}, scene.TagIDs...), tagID)
	_, err := c.gql(sceneUpdateMutation, map[string]interface{}{
		"input": map[string]interface{}{"id": scene.ID, "tag_ids": tagIDs},
	})
	if err != nil {
		return fmt.Errorf("stash sceneUpdate %s: %w", scene.ID, err)
	}
	return nil
}
