package match

import "time"

// Scene is one catalog record. Optional metadata uses pointers so that an
// absent field stays distinguishable from an empty-but-present one; the
// engine never mutates a Scene it is given.
type Scene struct {
	ID         string     `json:"id"`
	CrossRefs  []string   `json:"crossRefs,omitempty"`
	Title      *string    `json:"title,omitempty"`
	Date       *time.Time `json:"date,omitempty"`
	Studio     *string    `json:"studio,omitempty"`
	Resolution *int       `json:"resolution,omitempty"`
	Size       *int64     `json:"size,omitempty"`
	Saved      bool       `json:"saved,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
}

// MatchTag describes which rule produced a match.
type MatchTag string

const (
	TagExactID MatchTag = "EXACT_ID"
	TagFuzzy   MatchTag = "FUZZY"
	TagNone    MatchTag = "NONE"
)

// MatchResult is the outcome for one (scene, index) pair. Fuzzy matches may
// carry multiple candidates; all of them passed the combined predicate.
type MatchResult struct {
	Tag          MatchTag `json:"tag"`
	CandidateIDs []string `json:"candidateIds,omitempty"`

	candidates []*Scene
}

// Candidates returns the matched scenes, in candidate-ID order.
func (r MatchResult) Candidates() []*Scene {
	return r.candidates
}

// Matched reports whether any rule produced a hit.
func (r MatchResult) Matched() bool {
	return r.Tag != TagNone
}

// Stats summarizes one missing-set resolution.
type Stats struct {
	ReferenceCount int `json:"referenceCount"`
	ExactMatches   int `json:"exactMatches"`
	FuzzyMatches   int `json:"fuzzyMatches"`
	MissingCount   int `json:"missingCount"`
}

// DuplicateGroup is a maximal set of scenes from one catalog judged to be the
// same real-world scene, with the arbiter's keep/remove split applied.
type DuplicateGroup struct {
	SceneIDs []string `json:"sceneIds"`
	Keep     string   `json:"keep"`
	Remove   []string `json:"remove"`
	SaveAll  bool     `json:"saveAll"`
}
