package stash

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"
)

func TestMapScene(t *testing.T) {
	raw := gjson.Parse(`{
		"id": "42",
		"title": "Pool Day",
		"date": "2021-06-15",
		"studio": {"id": "7", "name": "Acme"},
		"stash_ids": [
			{"endpoint": "https://stashdb.org/graphql", "stash_id": "uuid-a"},
			{"endpoint": "https://stashdb.org/graphql", "stash_id": "uuid-a"},
			{"endpoint": "https://other.example/graphql", "stash_id": "uuid-b"}
		],
		"tags": [
			{"id": "t1", "name": "saved"},
			{"id": "t2", "name": "outdoor"}
		],
		"files": [
			{"size": 1000, "height": 720},
			{"size": 5000, "height": 1080}
		]
	}`)
	s := mapScene(raw)

	if s.ID != "42" {
		t.Fatalf("wrong id: %s", s.ID)
	}
	if s.Title == nil || *s.Title != "Pool Day" {
		t.Fatalf("wrong title: %v", s.Title)
	}
	if s.Date == nil || s.Date.Format("2006-01-02") != "2021-06-15" {
		t.Fatalf("wrong date: %v", s.Date)
	}
	if s.Studio == nil || *s.Studio != "Acme" {
		t.Fatalf("wrong studio: %v", s.Studio)
	}
	// Duplicated cross-refs collapse and foreign endpoints are ignored.
	if len(s.CrossRefs) != 1 || s.CrossRefs[0] != "uuid-a" {
		t.Fatalf("wrong cross refs: %v", s.CrossRefs)
	}
	// Saved tag match is case-insensitive.
	if !s.Saved {
		t.Fatal("expected saved flag")
	}
	if len(s.TagIDs) != 2 || s.TagIDs[0] != "t1" {
		t.Fatalf("wrong tag ids: %v", s.TagIDs)
	}
	if s.Resolution == nil || *s.Resolution != 1080 {
		t.Fatalf("wrong resolution: %v", s.Resolution)
	}
	if s.Size == nil || *s.Size != 5000 {
		t.Fatalf("wrong size: %v", s.Size)
	}
}

func TestMapSceneMissingFields(t *testing.T) {
	s := mapScene(gjson.Parse(`{"id": "9"}`))
	if s.Title != nil || s.Date != nil || s.Studio != nil {
		t.Fatalf("expected nil optionals, got %+v", s)
	}
	if s.Resolution != nil || s.Size != nil {
		t.Fatalf("expected nil quality signals, got %+v", s)
	}
	if s.Saved || len(s.CrossRefs) != 0 {
		t.Fatalf("unexpected flags: %+v", s)
	}
}

func TestScenesForPerformerPaginates(t *testing.T) {
	pages := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		// Two pages, three scenes total.
		var scenes string
		switch pages {
		case 1:
			scenes = `{"id": "1"}, {"id": "2"}`
		default:
			scenes = `{"id": "3"}`
		}
		fmt.Fprintf(w, `{"data": {"findScenes": {"count": 3, "scenes": [%s]}}}`, scenes)
	}))
	defer srv.Close()

	// perPage is 100 in production, so the server lies about page size;
	// the client only cares about the running total versus count.
	c := NewClient(srv.URL, "")
	got, err := c.ScenesForPerformer("p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 scenes, got %d", len(got))
	}
	if pages != 2 {
		t.Fatalf("expected 2 pages, got %d", pages)
	}
}

func TestEnsureTagFindsExisting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"findTags": {"tags": [{"id": "t9", "name": "saved"}]}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	id, err := c.EnsureTag("Saved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "t9" {
		t.Fatalf("expected t9, got %s", id)
	}
}

func TestEnsureTagCreates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, `{"data": {"findTags": {"tags": []}}}`)
			return
		}
		fmt.Fprint(w, `{"data": {"tagCreate": {"id": "t10", "name": "Saved"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	id, err := c.EnsureTag("Saved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "t10" {
		t.Fatalf("expected t10, got %s", id)
	}
}

func TestTagSceneSkipsAlreadyTagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an already-tagged scene")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	s := Scene{TagIDs: []string{"t1", "t2"}}
	s.ID = "42"
	if err := c.TagScene(s, "t2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
