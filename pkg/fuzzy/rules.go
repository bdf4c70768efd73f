package fuzzy

import "gonum.org/v1/gonum/floats"

// Rule selects one membership term per input dimension.
type Rule []int

// BuildRules enumerates the full Cartesian rule base over the per-dimension
// term counts. The first dimension varies slowest, so counts of [2 2] yield
// the order (0,0), (0,1), (1,0), (1,1).
func BuildRules(termCounts []int) []Rule {
	total := 1
	for _, c := range termCounts {
		if c <= 0 {
			return nil
		}
		total *= c
	}
	rules := make([]Rule, total)
	for idx := 0; idx < total; idx++ {
		rule := make(Rule, len(termCounts))
		rem := idx
		for d := len(termCounts) - 1; d >= 0; d-- {
			rule[d] = rem % termCounts[d]
			rem /= termCounts[d]
		}
		rules[idx] = rule
	}
	return rules
}

// FiringStrengths computes the product-norm firing strength of every rule at
// the given input point.
func FiringStrengths(inputs []float64, sets []MembershipSet, rules []Rule, sigmaFloor float64) []float64 {
	// Terms are shared across rules, so evaluate each membership once.
	memberships := make([][]float64, len(sets))
	for d, set := range sets {
		memberships[d] = make([]float64, len(set))
		for t, term := range set {
			memberships[d][t] = term.Membership(inputs[d], sigmaFloor)
		}
	}

	strengths := make([]float64, len(rules))
	for r, rule := range rules {
		w := 1.0
		for d, t := range rule {
			w *= memberships[d][t]
		}
		strengths[r] = w
	}
	return strengths
}

// Normalize scales the firing strengths to sum to one. When every strength
// has underflowed to zero the rules share weight uniformly.
func Normalize(strengths []float64) []float64 {
	sum := floats.Sum(strengths)
	normalized := make([]float64, len(strengths))
	if sum == 0 {
		uniform := 1.0 / float64(len(strengths))
		for i := range normalized {
			normalized[i] = uniform
		}
		return normalized
	}
	for i, w := range strengths {
		normalized[i] = w / sum
	}
	return normalized
}
