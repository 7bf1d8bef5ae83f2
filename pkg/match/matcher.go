package match

import "sort"

// Options carries the fuzzy-match policy. The engine takes policy as explicit
// input; nothing here is read from ambient configuration.
type Options struct {
	// WindowDays is the inclusive date tolerance for a fuzzy match.
	WindowDays int
	// StudioMustMatch requires normalized studio equality when both scenes
	// carry a studio. A scene without a studio is never blocked by this rule.
	StudioMustMatch bool
}

// CompareOptions is the policy for reference-vs-local comparison: same
// calendar day, no studio rule.
func CompareOptions() Options {
	return Options{WindowDays: 0}
}

// DuplicateOptions is the policy for in-catalog duplicate detection: seven
// day window, studios must agree when both are known.
func DuplicateOptions() Options {
	return Options{WindowDays: 7, StudioMustMatch: true}
}

// Match decides whether scene denotes the same real-world scene as any
// candidate in idx. The exact cross-reference step always runs first and is
// authoritative even when titles disagree; the fuzzy step runs only when no
// cross-reference hit exists and requires both a title and a date on the
// query scene.
func Match(scene *Scene, idx *Index, opts Options) MatchResult {
	seen := make(map[string]struct{})
	var exact []*Scene
	for _, ref := range scene.CrossRefs {
		for _, cand := range idx.ByCrossRef(ref) {
			if cand == scene {
				continue
			}
			if _, dup := seen[cand.ID]; dup {
				continue
			}
			seen[cand.ID] = struct{}{}
			exact = append(exact, cand)
		}
	}
	if len(exact) > 0 {
		return newResult(TagExactID, exact)
	}

	if scene.Title == nil || scene.Date == nil {
		return MatchResult{Tag: TagNone}
	}
	normTitle := NormalizeTitle(*scene.Title)
	if normTitle == "" {
		return MatchResult{Tag: TagNone}
	}

	var studio string
	if scene.Studio != nil {
		studio = NormalizeTitle(*scene.Studio)
	}

	var fuzzy []*Scene
	for _, cand := range idx.FuzzyCandidates(normTitle, *scene.Date, opts.WindowDays) {
		if cand == scene {
			continue
		}
		if opts.StudioMustMatch && studio != "" && cand.Studio != nil {
			if candStudio := NormalizeTitle(*cand.Studio); candStudio != "" && candStudio != studio {
				continue
			}
		}
		fuzzy = append(fuzzy, cand)
	}
	if len(fuzzy) == 0 {
		return MatchResult{Tag: TagNone}
	}
	return newResult(TagFuzzy, fuzzy)
}

func newResult(tag MatchTag, candidates []*Scene) MatchResult {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	return MatchResult{Tag: tag, CandidateIDs: ids, candidates: candidates}
}
