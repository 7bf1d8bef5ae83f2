package match

import "time"

// indexed is one catalog scene with its precomputed comparison keys.
type indexed struct {
	scene  *Scene
	title  string // normalized, "" when absent
	date   *time.Time
	studio string // normalized, "" when absent
}

// Index is the per-catalog lookup structure. Build it once per engine
// invocation; it holds no state beyond what NewIndex derives from the
// catalog.
type Index struct {
	scenes     []indexed
	byCrossRef map[string][]*Scene

	// buckets groups scenes by normalized title. Only scenes carrying both a
	// non-empty normalized title and a date are bucketed, since those are the
	// only ones a fuzzy query can hit.
	buckets map[string][]indexed
}

// NewIndex builds the identity index over one catalog. The catalog slice is
// not copied; callers must not mutate it while the index is in use.
func NewIndex(catalog []Scene) *Index {
	idx := &Index{
		scenes:     make([]indexed, 0, len(catalog)),
		byCrossRef: make(map[string][]*Scene),
		buckets:    make(map[string][]indexed),
	}
	for i := range catalog {
		s := &catalog[i]
		entry := indexed{scene: s}
		if s.Title != nil {
			entry.title = NormalizeTitle(*s.Title)
		}
		if s.Date != nil {
			d := truncateDate(*s.Date)
			entry.date = &d
		}
		if s.Studio != nil {
			entry.studio = NormalizeTitle(*s.Studio)
		}
		idx.scenes = append(idx.scenes, entry)

		seen := make(map[string]struct{}, len(s.CrossRefs))
		for _, ref := range s.CrossRefs {
			if ref == "" {
				continue
			}
			if _, dup := seen[ref]; dup {
				continue
			}
			seen[ref] = struct{}{}
			idx.byCrossRef[ref] = append(idx.byCrossRef[ref], s)
		}

		if entry.title != "" && entry.date != nil {
			idx.buckets[entry.title] = append(idx.buckets[entry.title], entry)
		}
	}
	return idx
}

// Len returns the number of indexed scenes.
func (idx *Index) Len() int { return len(idx.scenes) }

// ByCrossRef returns every scene linked to the given cross-reference
// identifier.
func (idx *Index) ByCrossRef(id string) []*Scene {
	return idx.byCrossRef[id]
}

// ByTitleDate returns the scenes whose normalized title and calendar date
// both equal the query. Scenes without a title or date are never returned.
func (idx *Index) ByTitleDate(normTitle string, date time.Time) []*Scene {
	return idx.FuzzyCandidates(normTitle, date, 0)
}

// FuzzyCandidates returns the scenes whose normalized title equals normTitle
// and whose date lies within windowDays of date, inclusive on both ends. The
// scan is restricted to the matching title bucket, so whole-library queries
// stay linear in the bucket size.
func (idx *Index) FuzzyCandidates(normTitle string, date time.Time, windowDays int) []*Scene {
	if normTitle == "" {
		return nil
	}
	date = truncateDate(date)
	var out []*Scene
	for _, entry := range idx.buckets[normTitle] {
		if daysApart(*entry.date, date) <= windowDays {
			out = append(out, entry.scene)
		}
	}
	return out
}

// bucketTitles returns the normalized titles that have at least one bucketed
// scene. Order is unspecified.
func (idx *Index) bucketTitles() []string {
	titles := make([]string, 0, len(idx.buckets))
	for t := range idx.buckets {
		titles = append(titles, t)
	}
	return titles
}
