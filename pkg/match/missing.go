package match

// CompareResult partitions a reference catalog against a local index.
// Missing preserves reference-catalog order so downstream consumers that
// rate-limit or sample the list behave deterministically.
type CompareResult struct {
	Present []Scene `json:"present"`
	Missing []Scene `json:"missing"`
	Stats   Stats   `json:"stats"`
}

// ResolveMissing runs the matcher for every reference scene against the local
// catalog's index and splits the reference catalog into scenes already present
// locally and scenes missing locally.
func ResolveMissing(reference []Scene, local *Index) CompareResult {
	res := CompareResult{Stats: Stats{ReferenceCount: len(reference)}}
	opts := CompareOptions()
	for i := range reference {
		m := Match(&reference[i], local, opts)
		switch m.Tag {
		case TagExactID:
			res.Stats.ExactMatches++
			res.Present = append(res.Present, reference[i])
		case TagFuzzy:
			res.Stats.FuzzyMatches++
			res.Present = append(res.Present, reference[i])
		default:
			res.Stats.MissingCount++
			res.Missing = append(res.Missing, reference[i])
		}
	}
	return res
}
