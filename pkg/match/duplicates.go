package match

import (
	"sort"
	"sync"
)

// GroupDuplicates finds groups of scenes within one catalog that denote the
// same real-world scene. Pairwise duplicate-mode matches are merged
// transitively: if A matches B and B matches C, all three land in one group
// even when A and C fail the pairwise predicate directly. Groups of size one
// are dropped. Output is canonical (members and groups sorted by scene ID),
// so any permutation of the catalog yields identical groups.
func GroupDuplicates(catalog []Scene, opts Options) []DuplicateGroup {
	return GroupDuplicatesParallel(catalog, opts, 1)
}

// GroupDuplicatesParallel is GroupDuplicates with up to workers goroutines
// scanning title buckets concurrently. Buckets partition the fuzzy search
// space (scenes with different normalized titles never fuzzy-match), so
// bucket workers share nothing; cross-reference merges, which may join scenes
// across buckets, are applied up front.
func GroupDuplicatesParallel(catalog []Scene, opts Options, workers int) []DuplicateGroup {
	idx := NewIndex(catalog)
	pos := make(map[*Scene]int, len(catalog))
	for i := range catalog {
		pos[&catalog[i]] = i
	}

	uf := newUnionFind(len(catalog))

	// A shared cross-reference identifier is authoritative regardless of
	// title or date divergence.
	for _, linked := range idx.byCrossRef {
		for i := 1; i < len(linked); i++ {
			uf.union(pos[linked[0]], pos[linked[i]])
		}
	}

	titles := idx.bucketTitles()
	if workers <= 1 {
		for _, title := range titles {
			mergeBucket(idx.buckets[title], pos, opts, uf.union)
		}
	} else {
		var mu sync.Mutex
		union := func(a, b int) {
			mu.Lock()
			uf.union(a, b)
			mu.Unlock()
		}
		titleChan := make(chan string, workers)
		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				for title := range titleChan {
					mergeBucket(idx.buckets[title], pos, opts, union)
				}
			}()
		}
		for _, title := range titles {
			titleChan <- title
		}
		close(titleChan)
		wg.Wait()
	}

	members := make(map[int][]*Scene)
	for i := range catalog {
		root := uf.find(i)
		members[root] = append(members[root], &catalog[i])
	}

	var groups []DuplicateGroup
	for _, scenes := range members {
		if len(scenes) < 2 {
			continue
		}
		group := make([]Scene, len(scenes))
		for i, s := range scenes {
			group[i] = *s
		}
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
		ids := make([]string, len(group))
		for i := range group {
			ids[i] = group[i].ID
		}
		decision := ChooseKeep(group)
		groups = append(groups, DuplicateGroup{
			SceneIDs: ids,
			Keep:     decision.Keep,
			Remove:   decision.Remove,
			SaveAll:  decision.SaveAll,
		})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].SceneIDs[0] < groups[j].SceneIDs[0] })
	return groups
}

// mergeBucket unions every pair in one normalized-title bucket that passes
// the date window and studio rule. Bucket entries always carry a date.
func mergeBucket(entries []indexed, pos map[*Scene]int, opts Options, union func(a, b int)) {
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if daysApart(*entries[i].date, *entries[j].date) > opts.WindowDays {
				continue
			}
			if opts.StudioMustMatch && entries[i].studio != "" && entries[j].studio != "" &&
				entries[i].studio != entries[j].studio {
				continue
			}
			union(pos[entries[i].scene], pos[entries[j].scene])
		}
	}
}

type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
