package service

// AccumulateRent merges one rent observation into the per-year totals
// and returns the updated totals plus the lifetime sum. The input map is
// not mutated. Callers must skip zero amounts and missing years before
// calling; this function just adds.
func AccumulateRent(existing map[string]float64, year string, amount float64) (map[string]float64, float64) {
	updated := make(map[string]float64, len(existing)+1)
	for y, total := range existing {
		updated[y] = total
	}
	updated[year] += amount

	var lifetime float64
	for _, total := range updated {
		lifetime += total
	}
	return updated, lifetime
}
