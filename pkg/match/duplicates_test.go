package match

import (
	"reflect"
	"testing"
)

func pooldayScene(id, date string, res int, saved bool) Scene {
	return Scene{
		ID:         id,
		Title:      strp("Pool Day"),
		Date:       datep(date),
		Studio:     strp("Acme"),
		Resolution: intp(res),
		Saved:      saved,
	}
}

func TestGroupDuplicatesKeepsHigherResolution(t *testing.T) {
	catalog := []Scene{
		pooldayScene("1", "2023-05-01", 720, false),
		pooldayScene("2", "2023-05-08", 1080, false), // exactly 7 days apart
	}
	groups := GroupDuplicates(catalog, DuplicateOptions())
	if len(groups) != 1 {
		t.Fatalf("want one group, got %d", len(groups))
	}
	g := groups[0]
	if g.Keep != "2" || len(g.Remove) != 1 || g.Remove[0] != "1" {
		t.Fatalf("want keep=2 remove=[1], got keep=%s remove=%v", g.Keep, g.Remove)
	}
	if g.SaveAll {
		t.Fatal("no member is saved, saveAll must be false")
	}
}

func TestGroupDuplicatesSaveAll(t *testing.T) {
	catalog := []Scene{
		pooldayScene("1", "2023-05-01", 720, true),
		pooldayScene("2", "2023-05-08", 1080, false),
	}
	groups := GroupDuplicates(catalog, DuplicateOptions())
	if len(groups) != 1 {
		t.Fatalf("want one group, got %d", len(groups))
	}
	g := groups[0]
	if g.Keep != "2" || !g.SaveAll {
		t.Fatalf("keep/remove split unchanged but saveAll must be true, got keep=%s saveAll=%v", g.Keep, g.SaveAll)
	}
}

func TestGroupDuplicatesWindowBoundary(t *testing.T) {
	catalog := []Scene{
		pooldayScene("1", "2023-05-01", 720, false),
		pooldayScene("2", "2023-05-09", 1080, false), // 8 days apart
	}
	if groups := GroupDuplicates(catalog, DuplicateOptions()); len(groups) != 0 {
		t.Fatalf("dates 8 days apart must never match, got %d groups", len(groups))
	}
}

func TestGroupDuplicatesTransitive(t *testing.T) {
	// A↔B and B↔C pass the 7-day window, A↔C does not (10 days).
	catalog := []Scene{
		pooldayScene("a", "2023-05-01", 720, false),
		pooldayScene("b", "2023-05-06", 1080, false),
		pooldayScene("c", "2023-05-11", 480, false),
	}
	groups := GroupDuplicates(catalog, DuplicateOptions())
	if len(groups) != 1 {
		t.Fatalf("transitive merge must produce one group, got %d", len(groups))
	}
	if !reflect.DeepEqual(groups[0].SceneIDs, []string{"a", "b", "c"}) {
		t.Fatalf("unexpected members: %v", groups[0].SceneIDs)
	}
	if groups[0].Keep != "b" {
		t.Fatalf("want keep=b (1080), got %s", groups[0].Keep)
	}
}

func TestGroupDuplicatesOrderIndependent(t *testing.T) {
	base := []Scene{
		pooldayScene("a", "2023-05-01", 720, false),
		pooldayScene("b", "2023-05-06", 1080, false),
		pooldayScene("c", "2023-05-11", 480, false),
		{ID: "x", Title: strp("Solo"), Date: datep("2023-01-01")},
	}
	want := GroupDuplicates(base, DuplicateOptions())

	permuted := []Scene{base[2], base[3], base[0], base[1]}
	got := GroupDuplicates(permuted, DuplicateOptions())
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("grouping must not depend on catalog order:\nwant %+v\ngot  %+v", want, got)
	}
}

func TestGroupDuplicatesCrossRefJoinsDifferentTitles(t *testing.T) {
	catalog := []Scene{
		{ID: "1", CrossRefs: []string{"u9"}, Title: strp("Director Cut")},
		{ID: "2", CrossRefs: []string{"u9"}, Title: strp("Pool Day"), Date: datep("2023-05-01")},
	}
	groups := GroupDuplicates(catalog, DuplicateOptions())
	if len(groups) != 1 || len(groups[0].SceneIDs) != 2 {
		t.Fatalf("a shared cross-ref must join scenes across title buckets, got %+v", groups)
	}
}

func TestGroupDuplicatesParallelMatchesSerial(t *testing.T) {
	var catalog []Scene
	titles := []string{"Pool Day", "Beach Day", "Mountain Day"}
	dates := []string{"2023-05-01", "2023-05-05", "2023-06-20"}
	for i, title := range titles {
		for j, date := range dates {
			id := string(rune('a'+i)) + string(rune('0'+j))
			s := Scene{ID: id, Title: strp(title), Date: datep(date), Resolution: intp(480 + 10*j)}
			catalog = append(catalog, s)
		}
	}
	serial := GroupDuplicates(catalog, DuplicateOptions())
	parallel := GroupDuplicatesParallel(catalog, DuplicateOptions(), 4)
	if !reflect.DeepEqual(serial, parallel) {
		t.Fatalf("parallel grouping diverged:\nserial   %+v\nparallel %+v", serial, parallel)
	}
	if len(serial) != 3 {
		t.Fatalf("want one group per title, got %d", len(serial))
	}
}
