package matcher

// Stats reports cache activity.
//
// Hit and miss counters accumulate across Clear calls; the entry counts
// describe the current generation only.
type Stats struct {
	ExactHits     int64 `json:"exact_hits"`
	QuantizedHits int64 `json:"quantized_hits"`
	Misses        int64 `json:"misses"`
	LabHits       int64 `json:"lab_hits"` // misses whose Lab conversion was memoized
	Builds        int64 `json:"index_builds"`
	Generation    int64 `json:"generation"`

	ExactEntries     int `json:"exact_entries"`
	QuantizedEntries int `json:"quantized_entries"`
	LabEntries       int `json:"lab_entries"`
}

// Lookups returns the total number of lookups that reached a tier.
func (s Stats) Lookups() int64 {
	return s.ExactHits + s.QuantizedHits + s.Misses
}

// HitRate returns the fraction of lookups served from either tier.
func (s Stats) HitRate() float64 {
	total := s.Lookups()
	if total == 0 {
		return 0
	}
	return float64(s.ExactHits+s.QuantizedHits) / float64(total)
}

// Add returns the element-wise sum of two snapshots.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		ExactHits:        s.ExactHits + o.ExactHits,
		QuantizedHits:    s.QuantizedHits + o.QuantizedHits,
		Misses:           s.Misses + o.Misses,
		LabHits:          s.LabHits + o.LabHits,
		Builds:           s.Builds + o.Builds,
		Generation:       max(s.Generation, o.Generation),
		ExactEntries:     s.ExactEntries + o.ExactEntries,
		QuantizedEntries: s.QuantizedEntries + o.QuantizedEntries,
		LabEntries:       s.LabEntries + o.LabEntries,
	}
}
