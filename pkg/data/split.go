package data

import "math/rand"

// Split partitions the dataset into train and test subsets by testRatio.
// Ratios outside [0, 1] are clamped. The shuffle is driven by seed so a
// split reproduces across runs.
func (d *Dataset) Split(testRatio float64, seed int64) (train, test *Dataset) {
	n := len(d.Samples)
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	if nTest < 0 {
		nTest = 0
	}
	if nTest > n {
		nTest = n
	}

	testSamples := make([]Sample, 0, nTest)
	trainSamples := make([]Sample, 0, n-nTest)
	for i, idx := range indices {
		if i < nTest {
			testSamples = append(testSamples, d.Samples[idx])
		} else {
			trainSamples = append(trainSamples, d.Samples[idx])
		}
	}
	return New(trainSamples), New(testSamples)
}
