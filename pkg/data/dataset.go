package data

import "errors"

// NumInputs is the input dimensionality of a viscosity sample.
const NumInputs = 2

// Sample is one labeled observation of the fluid.
type Sample struct {
	Temperature float64
	Pressure    float64
	Viscosity   float64
}

// Inputs returns the sample's input point in dimension order.
func (s Sample) Inputs() []float64 {
	return []float64{s.Temperature, s.Pressure}
}

// Dataset is an ordered collection of samples.
type Dataset struct {
	Samples []Sample
}

// New wraps samples in a Dataset.
func New(samples []Sample) *Dataset {
	return &Dataset{Samples: samples}
}

// FromColumns builds a dataset from parallel temperature, pressure and
// viscosity columns.
func FromColumns(temperature, pressure, viscosity []float64) (*Dataset, error) {
	if len(temperature) != len(pressure) || len(temperature) != len(viscosity) {
		return nil, errors.New("data: column lengths differ")
	}
	samples := make([]Sample, len(temperature))
	for i := range samples {
		samples[i] = Sample{
			Temperature: temperature[i],
			Pressure:    pressure[i],
			Viscosity:   viscosity[i],
		}
	}
	return New(samples), nil
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Inputs returns every sample's input point, one row per sample.
func (d *Dataset) Inputs() [][]float64 {
	rows := make([][]float64, len(d.Samples))
	for i, s := range d.Samples {
		rows[i] = s.Inputs()
	}
	return rows
}

// Targets returns every sample's viscosity.
func (d *Dataset) Targets() []float64 {
	targets := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		targets[i] = s.Viscosity
	}
	return targets
}

// Column returns one input column across all samples.
func (d *Dataset) Column(dim int) []float64 {
	col := make([]float64, len(d.Samples))
	for i, s := range d.Samples {
		col[i] = s.Inputs()[dim]
	}
	return col
}
