package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stashkit/scenematch/pkg/match"
	"github.com/stashkit/scenematch/pkg/stashdb"
)

func TestWriteReadRoundTrip(t *testing.T) {
	root := t.TempDir()
	dir, err := Dir(root, "perf-uuid")
	if err != nil {
		t.Fatalf("dir: %v", err)
	}
	if dir != filepath.Join(root, "perf-uuid") {
		t.Fatalf("wrong dir: %s", dir)
	}

	title := "Pool Day"
	in := MissingReport{
		Performer: stashdb.Performer{ID: "perf-uuid", Name: "Jane"},
		Missing:   []match.Scene{{ID: "s1", Title: &title}},
		Stats:     match.Stats{ReferenceCount: 3, MissingCount: 1},
	}
	if err := WriteJSON(dir, MissingReportFile, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out MissingReport
	if err := ReadJSON(dir, MissingReportFile, &out); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Performer.Name != "Jane" || out.Stats.MissingCount != 1 {
		t.Fatalf("lost data: %+v", out)
	}
	if len(out.Missing) != 1 || out.Missing[0].Title == nil || *out.Missing[0].Title != "Pool Day" {
		t.Fatalf("lost missing scene: %+v", out.Missing)
	}

	raw, err := os.ReadFile(filepath.Join(dir, MissingReportFile))
	if err != nil {
		t.Fatal(err)
	}
	if raw[len(raw)-1] != '\n' {
		t.Fatal("artifact should end with a newline")
	}
}

func TestReadJSONMissingFile(t *testing.T) {
	var out MissingReport
	if err := ReadJSON(t.TempDir(), MissingReportFile, &out); err == nil {
		t.Fatal("expected error")
	}
}
