package cluster

import (
	"errors"
	"math"
	"sort"
)

// ErrDegenerate reports that the input carries fewer distinct values than
// the requested number of clusters.
var ErrDegenerate = errors.New("cluster: fewer distinct values than clusters")

// KMeans partitions scalar observations into K clusters along one axis.
// Seeding is deterministic, so repeated fits over the same values yield
// the same centers.
type KMeans struct {
	K       int
	MaxIter int
	Centers []float64
	Inertia float64 // Sum of squared distances to nearest center
}

// NewKMeans creates a KMeans model with specified K and max iterations.
func NewKMeans(k int, maxIter int) *KMeans {
	return &KMeans{
		K:       k,
		MaxIter: maxIter,
	}
}

// Fit derives K cluster centers from the values by Lloyd iteration.
// Initial centers are spread across the distinct sorted values, so the fit
// needs no random source.
func (m *KMeans) Fit(values []float64) error {
	if len(values) == 0 {
		return errors.New("input data cannot be empty")
	}
	if m.K <= 0 {
		return errors.New("number of clusters must be positive")
	}

	seeds, err := m.seedCenters(values)
	if err != nil {
		return err
	}
	m.Centers = seeds

	n := len(values)
	assign := make([]int, n)

	for it := 0; it < m.MaxIter; it++ {
		changed := false
		m.Inertia = 0.0

		// Assignment step: attach each value to its nearest center.
		for i := 0; i < n; i++ {
			best, bestdSquared := -1, math.MaxFloat64
			for k := 0; k < m.K; k++ {
				d := values[i] - m.Centers[k]
				dSquared := d * d
				if dSquared < bestdSquared {
					bestdSquared = dSquared
					best = k
				}
			}
			if assign[i] != best {
				changed = true
			}
			assign[i] = best
			m.Inertia += bestdSquared
		}

		// Update step: move each center to the mean of its members.
		sums := make([]float64, m.K)
		counts := make([]int, m.K)
		for i := 0; i < n; i++ {
			sums[assign[i]] += values[i]
			counts[assign[i]]++
		}
		for k := 0; k < m.K; k++ {
			if counts[k] == 0 {
				continue // Skip if a cluster is empty
			}
			m.Centers[k] = sums[k] / float64(counts[k])
		}

		if !changed {
			break
		}
	}
	return nil
}

// Assign returns the index of the center nearest to x.
func (m *KMeans) Assign(x float64) int {
	best, bestdSquared := -1, math.MaxFloat64
	for k := 0; k < m.K; k++ {
		d := x - m.Centers[k]
		dSquared := d * d
		if dSquared < bestdSquared {
			bestdSquared = dSquared
			best = k
		}
	}
	return best
}

// seedCenters picks K starting centers spread evenly over the sorted
// distinct values. Ascending seeds keep the converged centers ordered,
// since one-dimensional Lloyd assignment regions are intervals.
func (m *KMeans) seedCenters(values []float64) ([]float64, error) {
	distinct := make([]float64, 0, len(values))
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		distinct = append(distinct, v)
	}
	if len(distinct) < m.K {
		return nil, ErrDegenerate
	}
	sort.Float64s(distinct)

	seeds := make([]float64, m.K)
	if m.K == 1 {
		seeds[0] = distinct[len(distinct)/2]
		return seeds, nil
	}
	step := float64(len(distinct)-1) / float64(m.K-1)
	for k := 0; k < m.K; k++ {
		seeds[k] = distinct[int(math.Round(float64(k)*step))]
	}
	return seeds, nil
}
