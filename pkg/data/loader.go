package data

import (
	"bufio"
	"encoding/csv"
	"errors"
	"os"
	"strconv"
)

// StreamCSV streams viscosity samples from a CSV file through a channel.
// Rows are expected as temperature,pressure,viscosity; rows that do not
// parse as three floats (header lines included) are skipped. A reader error
// other than a malformed row ends the stream.
// Close the returned done chan to stop early.
func StreamCSV(path string, out chan<- Sample) (done chan struct{}, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bufio.NewReader(file))
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1
	done = make(chan struct{})

	go func() {
		defer file.Close()
		// Closing the output channel signals that no more samples will be sent.
		defer close(out)
		for {
			select {
			case <-done:
				return
			default:
				rec, err := reader.Read()
				if err != nil {
					var parseErr *csv.ParseError
					if errors.As(err, &parseErr) {
						continue // Skip malformed rows.
					}
					// EOF and reader failures both end the stream.
					return
				}
				s, ok := parseRow(rec)
				if !ok {
					continue
				}
				out <- s
			}
		}
	}()
	return done, nil
}

// ReadCSV loads a whole CSV file into a Dataset.
func ReadCSV(path string) (*Dataset, error) {
	rows := make(chan Sample)
	if _, err := StreamCSV(path, rows); err != nil {
		return nil, err
	}
	var samples []Sample
	for s := range rows {
		samples = append(samples, s)
	}
	return New(samples), nil
}

func parseRow(rec []string) (Sample, bool) {
	if len(rec) != 3 {
		return Sample{}, false
	}
	vals := make([]float64, 3)
	for i, field := range rec {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Sample{}, false
		}
		vals[i] = v
	}
	return Sample{Temperature: vals[0], Pressure: vals[1], Viscosity: vals[2]}, true
}
