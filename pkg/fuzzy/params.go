package fuzzy

import "math"

// Flatten packs the sets into a single parameter vector as alternating
// center and width slots, dimension by dimension and term by term.
func Flatten(sets []MembershipSet) []float64 {
	vec := make([]float64, 0, 2*totalTerms(sets))
	for _, set := range sets {
		for _, term := range set {
			vec = append(vec, term.Center, term.Sigma)
		}
	}
	return vec
}

// Unflatten rebuilds membership sets from a parameter vector produced by
// Flatten over the same term counts.
func Unflatten(vec []float64, termCounts []int) []MembershipSet {
	sets := make([]MembershipSet, len(termCounts))
	i := 0
	for d, count := range termCounts {
		set := make(MembershipSet, count)
		for t := 0; t < count; t++ {
			set[t] = Term{Center: vec[i], Sigma: vec[i+1]}
			i += 2
		}
		sets[d] = set
	}
	return sets
}

// SigmaLowerBounds returns elementwise lower bounds for a flattened
// parameter vector: width slots stay at or above floor while center slots
// remain unconstrained.
func SigmaLowerBounds(termCounts []int, floor float64) []float64 {
	total := 0
	for _, c := range termCounts {
		total += c
	}
	bounds := make([]float64, 2*total)
	for i := range bounds {
		if i%2 == 1 {
			bounds[i] = floor
		} else {
			bounds[i] = math.Inf(-1)
		}
	}
	return bounds
}

func totalTerms(sets []MembershipSet) int {
	n := 0
	for _, set := range sets {
		n += len(set)
	}
	return n
}
