package match

import (
	"reflect"
	"testing"
)

func TestChooseKeepResolutionDominatesSize(t *testing.T) {
	group := []Scene{
		{ID: "hd", Resolution: intp(1080)},
		{ID: "big", Size: i64p(5000000000)},
	}
	d := ChooseKeep(group)
	if d.Keep != "hd" {
		t.Fatalf("present resolution beats absent resolution regardless of size, got keep=%s", d.Keep)
	}
	if !reflect.DeepEqual(d.Remove, []string{"big"}) {
		t.Fatalf("unexpected remove set: %v", d.Remove)
	}
}

func TestChooseKeepSizeBreaksResolutionTie(t *testing.T) {
	group := []Scene{
		{ID: "small", Resolution: intp(1080), Size: i64p(1000)},
		{ID: "large", Resolution: intp(1080), Size: i64p(2000)},
	}
	if d := ChooseKeep(group); d.Keep != "large" {
		t.Fatalf("equal resolution falls through to size, got keep=%s", d.Keep)
	}

	// Absent size ranks below any present value.
	group = []Scene{
		{ID: "nosize"},
		{ID: "sized", Size: i64p(1)},
	}
	if d := ChooseKeep(group); d.Keep != "sized" {
		t.Fatalf("absent size is lowest, got keep=%s", d.Keep)
	}
}

func TestChooseKeepDeterministicFallback(t *testing.T) {
	group := []Scene{{ID: "b"}, {ID: "a"}, {ID: "c"}}
	d := ChooseKeep(group)
	if d.Keep != "a" {
		t.Fatalf("full tie keeps the lexicographically smaller ID, got %s", d.Keep)
	}
	if len(d.Remove) != 2 {
		t.Fatalf("unexpected remove set: %v", d.Remove)
	}
}

func TestChooseKeepSaveAll(t *testing.T) {
	group := []Scene{
		{ID: "1", Resolution: intp(720), Saved: true},
		{ID: "2", Resolution: intp(1080)},
	}
	d := ChooseKeep(group)
	if d.Keep != "2" || !d.SaveAll {
		t.Fatalf("saved loser must not change the keep choice but sets saveAll, got %+v", d)
	}
}

func TestChooseKeepEmptyGroup(t *testing.T) {
	if d := ChooseKeep(nil); d.Keep != "" || d.Remove != nil || d.SaveAll {
		t.Fatalf("empty group yields zero decision, got %+v", d)
	}
}
