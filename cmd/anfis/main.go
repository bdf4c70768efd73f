// ANFIS viscosity prediction tool

package main

import (
	"bytes"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"anfis/pkg/benchmark"
	"anfis/pkg/data"
	"anfis/pkg/model"
	"anfis/pkg/stats"
)

const (
	defaultBenchWorkers  = 4
	defaultBenchRequests = 50_000
)

type runConfig struct {
	DatasetFile       string  `toml:"dataset_file,omitempty"`
	NumTerms          []int   `toml:"num_terms,omitempty"`
	MaxIterations     int     `toml:"max_iterations,omitempty"`
	SigmaFloor        float64 `toml:"sigma_floor,omitempty"`
	GradientTolerance float64 `toml:"gradient_tolerance,omitempty"`
	FreezeConsequents bool    `toml:"freeze_consequents,omitempty"`
	TestRatio         float64 `toml:"test_ratio,omitempty"`
	Seed              int64   `toml:"seed,omitempty"`
	BenchWorkers      int     `toml:"bench_workers,omitempty"`
	BenchRequests     int     `toml:"bench_requests,omitempty"`
}

// Reference viscosity measurements used when no dataset file is configured.
var builtinSamples = []data.Sample{
	{Temperature: 50, Pressure: 1.0, Viscosity: 120},
	{Temperature: 60, Pressure: 1.2, Viscosity: 125},
	{Temperature: 70, Pressure: 1.5, Viscosity: 130},
	{Temperature: 80, Pressure: 1.7, Viscosity: 135},
	{Temperature: 90, Pressure: 2.0, Viscosity: 140},
}

var log *zap.Logger

func initLogger(verbose bool) {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	var err error
	log, err = c.Build()
	if err != nil {
		panic(err)
	}
}

func loadConfig(configFile string) runConfig {
	var cfg runConfig
	if configFile == "" {
		return cfg
	}
	raw, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	err = toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		log.Fatal("failed to decode configuration", zap.Error(err))
	}
	return cfg
}

func trainConfig(cfg runConfig) model.Config {
	mc := model.DefaultConfig()
	if len(cfg.NumTerms) > 0 {
		mc.NumTerms = cfg.NumTerms
	}
	if cfg.MaxIterations > 0 {
		mc.MaxIterations = cfg.MaxIterations
	}
	if cfg.SigmaFloor > 0 {
		mc.SigmaFloor = cfg.SigmaFloor
	}
	if cfg.GradientTolerance > 0 {
		mc.GradientTolerance = cfg.GradientTolerance
	}
	mc.FreezeConsequents = cfg.FreezeConsequents
	return mc
}

func loadDataset(cfg runConfig) *data.Dataset {
	if cfg.DatasetFile == "" {
		log.Info("no dataset file configured, using built-in reference measurements")
		return data.New(builtinSamples)
	}
	ds, err := data.ReadCSV(cfg.DatasetFile)
	if err != nil {
		log.Fatal("failed to load dataset", zap.Error(err))
	}
	if ds.Len() == 0 {
		log.Fatal("dataset file contains no usable rows", zap.String("file", cfg.DatasetFile))
	}
	return ds
}

func logDatasetSummary(ds *data.Dataset) {
	temps, press, targets := ds.Column(0), ds.Column(1), ds.Targets()
	log.Info("dataset loaded",
		zap.Int("samples", ds.Len()),
		zap.Float64("temperature_mean", stats.Mean(temps)),
		zap.Float64("temperature_std", stats.Std(temps)),
		zap.Float64("temperature_span", stats.Span(temps)),
		zap.Float64("pressure_mean", stats.Mean(press)),
		zap.Float64("pressure_std", stats.Std(press)),
		zap.Float64("pressure_span", stats.Span(press)),
		zap.Float64("viscosity_median", stats.Median(targets)),
		zap.Float64("corr_temperature_viscosity", stats.Correlation(temps, targets)),
		zap.Float64("corr_pressure_viscosity", stats.Correlation(press, targets)))
}

func fitModel(cfg runConfig, ds *data.Dataset) *model.Model {
	m, err := model.NewTrainer(trainConfig(cfg), log).Fit(ds)
	if err != nil {
		log.Fatal("training failed", zap.Error(err))
	}
	return m
}

func report(name string, ds *data.Dataset, m *model.Model) {
	preds, err := m.PredictAll(ds.Inputs())
	if err != nil {
		log.Fatal("prediction failed", zap.Error(err))
	}
	targets := ds.Targets()
	fmt.Printf("%s: n=%d mse=%.6f rmse=%.6f mae=%.6f r2=%.4f\n",
		name, ds.Len(),
		model.MSE(targets, preds),
		model.RMSE(targets, preds),
		model.MAE(targets, preds),
		model.R2(targets, preds))
}

func runTrain(configFile string) {
	cfg := loadConfig(configFile)
	ds := loadDataset(cfg)

	train, test := ds, data.New(nil)
	if cfg.TestRatio > 0 {
		train, test = ds.Split(cfg.TestRatio, cfg.Seed)
	}
	logDatasetSummary(train)

	m := fitModel(cfg, train)
	report("train", train, m)
	if test.Len() > 0 {
		report("test", test, m)
	}
}

func runPredict(configFile string, temperature, pressure float64) {
	cfg := loadConfig(configFile)
	m := fitModel(cfg, loadDataset(cfg))

	v, err := m.Predict(temperature, pressure)
	if err != nil {
		log.Fatal("prediction failed", zap.Error(err))
	}
	fmt.Printf("viscosity(T=%g, P=%g) = %.4f\n", temperature, pressure, v)
}

func runBench(configFile string) {
	cfg := loadConfig(configFile)
	workers := cfg.BenchWorkers
	if workers < 1 {
		workers = defaultBenchWorkers
	}
	requests := cfg.BenchRequests
	if requests < 1 {
		requests = defaultBenchRequests
	}

	ds := loadDataset(cfg)
	m := fitModel(cfg, ds)
	benchmark.RunPredict(log, os.Stdout, m, ds.Inputs(), workers, requests)
}

func exitWithUsage() {
	fmt.Println("usage: anfis train   [-verbose] [-config <file>]")
	fmt.Println("       anfis predict [-verbose] [-config <file>] -t <temperature> -p <pressure>")
	fmt.Println("       anfis bench   [-verbose] [-config <file>]")
	os.Exit(1)
}

func main() {
	var (
		verbose     bool
		configFile  string
		temperature float64
		pressure    float64
	)

	trainFlags := flag.NewFlagSet("train", flag.ExitOnError)
	predictFlags := flag.NewFlagSet("predict", flag.ExitOnError)
	benchFlags := flag.NewFlagSet("bench", flag.ExitOnError)

	trainFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	trainFlags.StringVar(&configFile, "config", "", "Config file")

	predictFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	predictFlags.StringVar(&configFile, "config", "", "Config file")
	predictFlags.Float64Var(&temperature, "t", math.NaN(), "Temperature")
	predictFlags.Float64Var(&pressure, "p", math.NaN(), "Pressure")

	benchFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	benchFlags.StringVar(&configFile, "config", "", "Config file")

	if len(os.Args) < 2 {
		exitWithUsage()
	}

	switch os.Args[1] {
	case trainFlags.Name():
		err := trainFlags.Parse(os.Args[2:])
		if err != nil || trainFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runTrain(configFile)
	case predictFlags.Name():
		err := predictFlags.Parse(os.Args[2:])
		if err != nil || predictFlags.NArg() != 0 {
			exitWithUsage()
		}
		if math.IsNaN(temperature) || math.IsNaN(pressure) {
			exitWithUsage()
		}
		initLogger(verbose)
		runPredict(configFile, temperature, pressure)
	case benchFlags.Name():
		err := benchFlags.Parse(os.Args[2:])
		if err != nil || benchFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		runBench(configFile)
	default:
		exitWithUsage()
	}
}
