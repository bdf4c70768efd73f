package model

import "gonum.org/v1/gonum/mat"

// svdRankCutoff drops singular values below this fraction of the largest
// when solving a rank-deficient system.
const svdRankCutoff = 1e-12

// EstimateConsequents solves one global least-squares system for every
// rule's output plane. Row i of the design matrix carries, per rule, the
// sample's inputs and a constant slot, each scaled by the rule's normalized
// firing weight at that sample. The returned flag reports that the direct
// solve hit a singular system and the minimum-norm SVD fallback produced the
// coefficients instead.
//
// inputs must be non-empty with consistent row widths; the trainer validates
// the dataset before estimating.
func EstimateConsequents(inputs [][]float64, targets []float64, weights [][]float64, numRules int) ([]Consequent, bool) {
	n := len(inputs)
	dims := len(inputs[0])
	perRule := dims + 1
	cols := numRules * perRule

	A := mat.NewDense(n, cols, nil)
	row := make([]float64, cols)
	for i := 0; i < n; i++ {
		for r := 0; r < numRules; r++ {
			w := weights[i][r]
			off := r * perRule
			for d := 0; d < dims; d++ {
				row[off+d] = w * inputs[i][d]
			}
			row[off+dims] = w
		}
		A.SetRow(i, row)
	}
	b := mat.NewVecDense(n, append([]float64(nil), targets...))

	coef := mat.NewVecDense(cols, nil)
	minimumNorm := false
	if err := coef.SolveVec(A, b); err != nil {
		minimumNorm = true
		solveMinimumNorm(coef, A, b)
	}

	consequents := make([]Consequent, numRules)
	for r := 0; r < numRules; r++ {
		off := r * perRule
		wts := make([]float64, dims)
		for d := 0; d < dims; d++ {
			wts[d] = coef.AtVec(off + d)
		}
		consequents[r] = Consequent{Weights: wts, Bias: coef.AtVec(off + dims)}
	}
	return consequents, minimumNorm
}

// solveMinimumNorm computes the minimum-norm least-squares solution through
// a rank-revealing SVD. dst is zeroed when even the factorization fails.
func solveMinimumNorm(dst *mat.VecDense, a mat.Matrix, b *mat.VecDense) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		dst.Zero()
		return
	}
	rank := svd.Rank(svdRankCutoff)
	if rank == 0 {
		dst.Zero()
		return
	}
	svd.SolveVecTo(dst, b, rank)
}
