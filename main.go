// Package main provides the aircraft separation monitoring application
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/micutio/airsep/internal"
	"github.com/micutio/airsep/tickerapp"
	"github.com/micutio/airsep/tuiapp"
	"github.com/spf13/pflag"
)

const (
	// thisAppName is the name of this application as shown on notifications.
	thisAppName = "airsep"
)

type arguments struct {
	isUseTicker bool
	latLon      []float64
	home        []float64
	hMin        float64
	vMin        float64
	tick        time.Duration
	cleanup     time.Duration
	timeout     time.Duration
	horizon     int
	dataDir     string
	logLevel    string
	logFile     string
	notify      bool
}

func main() {
	defaults := internal.DefaultConfig()
	var args arguments

	setupCommandLineFlags(&args, &defaults)

	// Parse all arguments provided to the program on launch.
	pflag.Parse()

	cfg, opts, err := buildConfig(&args, defaults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", thisAppName, err)
		os.Exit(1)
	}

	if args.isUseTicker {
		err = tickerapp.Run(thisAppName, cfg, opts)
	} else {
		err = tuiapp.Run(thisAppName, cfg, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", thisAppName, err)
		os.Exit(1)
	}
}

func buildConfig(args *arguments, cfg internal.Config) (internal.Config, internal.AppOptions, error) {
	if len(args.latLon) != 2 { //nolint: mnd // lat,lon
		return cfg, internal.AppOptions{}, fmt.Errorf("--latlon expects lat,lon, got %v", args.latLon)
	}
	centre := internal.LatLon{Lat: args.latLon[0], Lon: args.latLon[1]}
	if !centre.IsValid() {
		return cfg, internal.AppOptions{}, fmt.Errorf("--latlon %s out of range", centre)
	}

	// The polling centre doubles as home base unless another one is given.
	home := centre
	if len(args.home) == 2 { //nolint: mnd // lat,lon
		home = internal.LatLon{Lat: args.home[0], Lon: args.home[1]}
	}

	cfg.HorizontalMinimumNM = args.hMin
	cfg.VerticalMinimumFt = args.vMin
	cfg.TickInterval = args.tick
	cfg.CleanupInterval = args.cleanup
	cfg.InactivityTimeout = args.timeout
	cfg.PredictionHorizonMins = args.horizon
	cfg.HomeBase = &home

	if err := cfg.Validate(); err != nil {
		return cfg, internal.AppOptions{}, err
	}

	opts := internal.AppOptions{
		Service: internal.ServiceOptions{
			Request: internal.RequestOptions{Lat: centre.Lat, Lon: centre.Lon},
			DataDir: args.dataDir,
		},
		LogLevel: args.logLevel,
		LogFile:  args.logFile,
		Desktop:  args.notify,
	}

	return cfg, opts, nil
}

func setupCommandLineFlags(args *arguments, defaults *internal.Config) {
	// Whether to launch the Ticker or TUI app.
	pflag.BoolVarP(
		&args.isUseTicker,
		"ticker",
		"t",
		false,
		"print conflict transitions on the command line without TUI")
	pflag.Lookup("ticker").NoOptDefVal = "true"

	// Location to monitor, provided as lat,lon coordinates
	pflag.Float64SliceVarP(
		&args.latLon,
		"latlon",
		"l",
		[]float64{1.3521, 103.8198},
		"centre of the monitored area")
	pflag.Float64SliceVar(
		&args.home,
		"home",
		nil,
		"home base lat,lon for the parking heuristic, defaults to --latlon")

	pflag.Float64Var(&args.hMin, "h-min", defaults.HorizontalMinimumNM, "horizontal separation minimum in NM")
	pflag.Float64Var(&args.vMin, "v-min", defaults.VerticalMinimumFt, "vertical separation minimum in ft")
	pflag.DurationVar(&args.tick, "tick", defaults.TickInterval, "conflict detection interval")
	pflag.DurationVar(&args.cleanup, "cleanup", defaults.CleanupInterval, "track cleanup interval")
	pflag.DurationVar(&args.timeout, "timeout", defaults.InactivityTimeout, "evict tracks not seen for this long")
	pflag.IntVar(&args.horizon, "horizon", defaults.PredictionHorizonMins, "prediction horizon in minutes")

	pflag.StringVar(&args.dataDir, "data-dir", "", "directory for persisted tracks and conflicts, disabled when empty")
	pflag.StringVar(&args.logLevel, "log-level", "info", "one of debug, info, warn, error")
	pflag.StringVar(&args.logFile, "log-file", "", "rotating log file, defaults to stderr in ticker mode")
	pflag.BoolVar(&args.notify, "notify", false, "raise desktop notifications for new conflicts")
}
