package match

import "testing"

func TestIndexByCrossRef(t *testing.T) {
	catalog := []Scene{
		{ID: "1", CrossRefs: []string{"u1", "u1", "u2"}},
		{ID: "2", CrossRefs: []string{"u2"}},
		{ID: "3"},
	}
	idx := NewIndex(catalog)

	if got := idx.ByCrossRef("u1"); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("ByCrossRef(u1): duplicate refs must collapse, got %d scenes", len(got))
	}
	if got := idx.ByCrossRef("u2"); len(got) != 2 {
		t.Fatalf("ByCrossRef(u2): want 2 scenes, got %d", len(got))
	}
	if got := idx.ByCrossRef("missing"); got != nil {
		t.Fatalf("ByCrossRef(missing): want nil, got %v", got)
	}
}

func TestIndexByTitleDate(t *testing.T) {
	catalog := []Scene{
		{ID: "1", Title: strp("Pool Day"), Date: datep("2023-05-01")},
		{ID: "2", Title: strp("Pool Day")}, // no date, never title/date indexed
		{ID: "3", Date: datep("2023-05-01")},
	}
	idx := NewIndex(catalog)

	got := idx.ByTitleDate("poolday", *datep("2023-05-01"))
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("ByTitleDate: want scene 1 only, got %v", got)
	}
	if got := idx.ByTitleDate("", *datep("2023-05-01")); got != nil {
		t.Fatal("empty normalized title must never be indexed")
	}
}

func TestFuzzyCandidatesWindow(t *testing.T) {
	catalog := []Scene{
		{ID: "exact", Title: strp("Pool Day"), Date: datep("2023-05-01")},
		{ID: "seven", Title: strp("Pool Day"), Date: datep("2023-05-08")},
		{ID: "eight", Title: strp("Pool Day"), Date: datep("2023-05-09")},
		{ID: "other", Title: strp("Beach Day"), Date: datep("2023-05-01")},
	}
	idx := NewIndex(catalog)

	got := idx.FuzzyCandidates("poolday", *datep("2023-05-01"), 7)
	if len(got) != 2 {
		t.Fatalf("window 7 is inclusive of 7 days and exclusive beyond: got %d candidates", len(got))
	}
	for _, s := range got {
		if s.ID == "eight" {
			t.Fatal("scene 8 days away must not be a candidate")
		}
		if s.ID == "other" {
			t.Fatal("different normalized title must not be a candidate")
		}
	}
}
