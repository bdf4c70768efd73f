package fuzzy

import (
	"sort"

	"anfis/pkg/cluster"
	"anfis/pkg/stats"
)

// fallbackSigma is the fixed term width used when the observed values carry
// no usable spread.
const fallbackSigma = 1.0

const partitionMaxIter = 100

// Partition derives a membership set for one input dimension from its
// observed values. Centers come from a one-dimensional k-means fit and each
// width from half the gap to the nearest neighboring center. When the values
// cannot support numTerms distinct clusters, centers fall back to an even
// spread across the value range and the returned flag reports that
// degradation. Centers are always sorted ascending.
//
// values must be non-empty and numTerms at least 1; the trainer validates
// both before partitioning.
func Partition(values []float64, numTerms int, sigmaFloor float64) (MembershipSet, bool) {
	km := cluster.NewKMeans(numTerms, partitionMaxIter)
	if err := km.Fit(values); err != nil {
		min, max := stats.MinMax(values)
		return evenSpread(min, max, numTerms, sigmaFloor), true
	}

	centers := append([]float64(nil), km.Centers...)
	sort.Float64s(centers)

	set := make(MembershipSet, numTerms)
	for i, c := range centers {
		set[i] = Term{Center: c, Sigma: clampSigma(neighborSigma(centers, i, values), sigmaFloor)}
	}
	return set, false
}

func neighborSigma(centers []float64, i int, values []float64) float64 {
	if len(centers) == 1 {
		if s := stats.Std(values); s > 0 {
			return s
		}
		return fallbackSigma
	}
	gap := 0.0
	if i > 0 {
		gap = centers[i] - centers[i-1]
	}
	if i < len(centers)-1 {
		if g := centers[i+1] - centers[i]; gap == 0 || g < gap {
			gap = g
		}
	}
	return gap / 2
}

// evenSpread covers [min, max] with evenly spaced terms. With no spread at
// all every term collapses onto the single observed value, which still
// evaluates to equal memberships everywhere.
func evenSpread(min, max float64, numTerms int, sigmaFloor float64) MembershipSet {
	set := make(MembershipSet, numTerms)
	if numTerms == 1 {
		sigma := (max - min) / 2
		if sigma < sigmaFloor {
			sigma = fallbackSigma
		}
		set[0] = Term{Center: (min + max) / 2, Sigma: sigma}
		return set
	}
	step := (max - min) / float64(numTerms-1)
	sigma := step / 2
	if sigma < sigmaFloor {
		sigma = fallbackSigma
	}
	for i := range set {
		set[i] = Term{Center: min + float64(i)*step, Sigma: sigma}
	}
	return set
}

func clampSigma(sigma, floor float64) float64 {
	if sigma < floor {
		return floor
	}
	return sigma
}
