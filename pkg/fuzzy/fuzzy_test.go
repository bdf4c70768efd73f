package fuzzy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermMembership(t *testing.T) {
	term := Term{Center: 70, Sigma: 10}

	assert.Equal(t, 1.0, term.Membership(70, DefaultSigmaFloor))
	assert.InDelta(t, math.Exp(-0.5), term.Membership(80, DefaultSigmaFloor), 1e-15)
	assert.Equal(t, term.Membership(60, DefaultSigmaFloor), term.Membership(80, DefaultSigmaFloor))
}

func TestTermMembershipClampsWidth(t *testing.T) {
	term := Term{Center: 1.5, Sigma: 0}

	at := term.Membership(1.5, DefaultSigmaFloor)
	away := term.Membership(2.5, DefaultSigmaFloor)

	assert.Equal(t, 1.0, at)
	assert.Equal(t, 0.0, away)
	assert.False(t, math.IsNaN(away))
}

func TestPartition(t *testing.T) {
	values := []float64{50, 60, 70, 80, 90}

	set, degenerate := Partition(values, 2, DefaultSigmaFloor)
	require.Len(t, set, 2)
	assert.False(t, degenerate)

	// Centers sorted ascending, widths at half the center gap.
	assert.InDelta(t, 60.0, set[0].Center, 1e-9)
	assert.InDelta(t, 85.0, set[1].Center, 1e-9)
	assert.InDelta(t, 12.5, set[0].Sigma, 1e-9)
	assert.InDelta(t, 12.5, set[1].Sigma, 1e-9)
}

func TestPartitionDegenerate(t *testing.T) {
	values := []float64{1.5, 1.5, 1.5, 1.5}

	set, degenerate := Partition(values, 2, DefaultSigmaFloor)
	require.Len(t, set, 2)
	assert.True(t, degenerate)

	// All terms collapse onto the single value with the fixed fallback width,
	// so downstream weights stay well defined.
	for _, term := range set {
		assert.Equal(t, 1.5, term.Center)
		assert.Equal(t, fallbackSigma, term.Sigma)
	}
	weights := Normalize(FiringStrengths([]float64{1.5}, []MembershipSet{set}, BuildRules([]int{2}), DefaultSigmaFloor))
	assert.InDelta(t, 0.5, weights[0], 1e-12)
	assert.InDelta(t, 0.5, weights[1], 1e-12)
}

func TestPartitionNarrowRange(t *testing.T) {
	// Three terms over two distinct values: even spread across the small range.
	values := []float64{1.0, 1.2, 1.0, 1.2}

	set, degenerate := Partition(values, 3, DefaultSigmaFloor)
	require.Len(t, set, 3)
	assert.True(t, degenerate)
	assert.InDelta(t, 1.0, set[0].Center, 1e-12)
	assert.InDelta(t, 1.1, set[1].Center, 1e-12)
	assert.InDelta(t, 1.2, set[2].Center, 1e-12)
	assert.InDelta(t, 0.05, set[0].Sigma, 1e-12)
}

func TestBuildRules(t *testing.T) {
	rules := BuildRules([]int{2, 2})
	require.Len(t, rules, 4)
	assert.Equal(t, Rule{0, 0}, rules[0])
	assert.Equal(t, Rule{0, 1}, rules[1])
	assert.Equal(t, Rule{1, 0}, rules[2])
	assert.Equal(t, Rule{1, 1}, rules[3])

	rules = BuildRules([]int{2, 3})
	require.Len(t, rules, 6)
	assert.Equal(t, Rule{0, 0}, rules[0])
	assert.Equal(t, Rule{0, 2}, rules[2])
	assert.Equal(t, Rule{1, 0}, rules[3])
	assert.Equal(t, Rule{1, 2}, rules[5])

	assert.Nil(t, BuildRules([]int{2, 0}))
}

func TestFiringStrengths(t *testing.T) {
	sets := []MembershipSet{
		{{Center: 0, Sigma: 1}, {Center: 2, Sigma: 1}},
		{{Center: 0, Sigma: 2}, {Center: 4, Sigma: 2}},
	}
	rules := BuildRules([]int{2, 2})

	w := FiringStrengths([]float64{0, 0}, sets, rules, DefaultSigmaFloor)
	require.Len(t, w, 4)
	assert.InDelta(t, 1.0, w[0], 1e-15)
	assert.InDelta(t, math.Exp(-2), w[1], 1e-15)
	assert.InDelta(t, math.Exp(-2), w[2], 1e-15)
	assert.InDelta(t, math.Exp(-4), w[3], 1e-15)
}

func TestNormalize(t *testing.T) {
	weights := Normalize([]float64{1, 3})
	assert.InDelta(t, 0.25, weights[0], 1e-15)
	assert.InDelta(t, 0.75, weights[1], 1e-15)

	sum := 0.0
	for _, w := range Normalize([]float64{0.2, 0.5, 0.1}) {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestNormalizeUnderflow(t *testing.T) {
	// An input far from every narrow term underflows all strengths to zero.
	sets := []MembershipSet{{{Center: 0, Sigma: DefaultSigmaFloor}, {Center: 1, Sigma: DefaultSigmaFloor}}}
	strengths := FiringStrengths([]float64{100}, sets, BuildRules([]int{2}), DefaultSigmaFloor)
	require.Equal(t, []float64{0, 0}, strengths)

	weights := Normalize(strengths)
	assert.Equal(t, []float64{0.5, 0.5}, weights)
}

func TestFlattenUnflatten(t *testing.T) {
	sets := []MembershipSet{
		{{Center: 60, Sigma: 12.5}, {Center: 85, Sigma: 12.5}},
		{{Center: 1.2, Sigma: 0.2}, {Center: 1.8, Sigma: 0.2}},
	}

	vec := Flatten(sets)
	require.Equal(t, []float64{60, 12.5, 85, 12.5, 1.2, 0.2, 1.8, 0.2}, vec)
	assert.Equal(t, sets, Unflatten(vec, []int{2, 2}))
}

func TestSigmaLowerBounds(t *testing.T) {
	bounds := SigmaLowerBounds([]int{2, 2}, DefaultSigmaFloor)
	require.Len(t, bounds, 8)
	for i, b := range bounds {
		if i%2 == 1 {
			assert.Equal(t, DefaultSigmaFloor, b)
		} else {
			assert.True(t, math.IsInf(b, -1))
		}
	}
}
