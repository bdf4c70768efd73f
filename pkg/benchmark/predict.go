// Package benchmark measures steady-state prediction latency.
package benchmark

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"go.uber.org/zap"
)

// Predictor yields a viscosity estimate for one operating point.
type Predictor interface {
	Predict(temperature, pressure float64) (float64, error)
}

// maxLatency is the histogram ceiling in nanoseconds.
const maxLatency = 1_000_000_000

// RunPredict drives the predictor from workers goroutines, requests calls
// each, cycling over the given input rows. Every goroutine records call
// latencies in its own histogram and prints its percentiles to w once done.
func RunPredict(log *zap.Logger, w io.Writer, p Predictor, inputs [][]float64, workers, requests int) {
	if log == nil {
		log = zap.NewNop()
	}
	if len(inputs) == 0 || workers < 1 || requests < 1 {
		log.Error("nothing to benchmark",
			zap.Int("inputs", len(inputs)),
			zap.Int("workers", workers),
			zap.Int("requests", requests))
		return
	}

	var mu sync.Mutex
	sg := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := workers; i > 0; i-- {
		go func(id int) {
			hg := hdrhistogram.New(1, maxLatency, 3)

			defer wg.Done()
			<-sg
			for j := 0; j < requests; j++ {
				row := inputs[j%len(inputs)]

				t0 := time.Now()
				_, err := p.Predict(row[0], row[1])
				elapsed := time.Since(t0).Nanoseconds()

				if err != nil {
					log.Error("prediction failed during benchmark", zap.Error(err))
					return
				}
				if elapsed < 1 {
					elapsed = 1
				}
				if err := hg.RecordValue(elapsed); err != nil {
					log.Error("failed to record histogram value", zap.Error(err))
					return
				}
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(w, "worker %d latency percentiles (ns):\n", id)
			hg.PercentilesPrint(w, 1, 1.0)
		}(i)
	}
	t0 := time.Now()
	close(sg)
	wg.Wait()
	log.Info("benchmark finished",
		zap.Duration("elapsed", time.Since(t0)),
		zap.Int("workers", workers),
		zap.Int("requests", workers*requests))
}
