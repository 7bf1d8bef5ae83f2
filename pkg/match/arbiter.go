package match

// Decision is the quality arbiter's verdict for one duplicate group. The
// arbiter only classifies; callers decide what removal means.
type Decision struct {
	Keep    string   `json:"keep"`
	Remove  []string `json:"remove"`
	SaveAll bool     `json:"saveAll"`
}

// ChooseKeep selects exactly one scene of a duplicate group to retain. Higher
// vertical resolution wins, then larger file size, then the lexicographically
// smaller identifier; an absent signal ranks below any present value. SaveAll
// is set when any group member carries the saved flag, telling the caller the
// group contains protected content.
func ChooseKeep(group []Scene) Decision {
	if len(group) == 0 {
		return Decision{}
	}
	best := 0
	saveAll := group[0].Saved
	for i := 1; i < len(group); i++ {
		if group[i].Saved {
			saveAll = true
		}
		if betterQuality(&group[i], &group[best]) {
			best = i
		}
	}
	d := Decision{Keep: group[best].ID, SaveAll: saveAll}
	for i := range group {
		if i != best {
			d.Remove = append(d.Remove, group[i].ID)
		}
	}
	return d
}

// betterQuality reports whether a should be kept over b.
func betterQuality(a, b *Scene) bool {
	if ra, rb := intOr(a.Resolution, -1), intOr(b.Resolution, -1); ra != rb {
		return ra > rb
	}
	if sa, sb := int64Or(a.Size, -1), int64Or(b.Size, -1); sa != sb {
		return sa > sb
	}
	return a.ID < b.ID
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func int64Or(p *int64, def int64) int64 {
	if p == nil {
		return def
	}
	return *p
}
