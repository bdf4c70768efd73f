// Package fuzzy implements Gaussian fuzzy partitions and the product-norm
// rule bases built over them.
package fuzzy

import "math"

// DefaultSigmaFloor is the smallest width a membership term may take.
const DefaultSigmaFloor = 1e-6

// Term is one Gaussian membership function.
type Term struct {
	Center float64
	Sigma  float64
}

// Membership evaluates the Gaussian membership of x in the term.
// The width is clamped to floor so the exponent stays finite.
func (t Term) Membership(x, floor float64) float64 {
	sigma := t.Sigma
	if sigma < floor {
		sigma = floor
	}
	d := x - t.Center
	return math.Exp(-(d * d) / (2 * sigma * sigma))
}

// MembershipSet is the ordered collection of terms covering one input dimension.
type MembershipSet []Term
