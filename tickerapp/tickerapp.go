// Package tickerapp launches the ticker application which writes out all conflict transitions to
// stdout and can be piped into other programs and processed further.
// This is in contrast to the TUI app, which works more like htop.
package tickerapp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/micutio/airsep/internal"
	"golang.org/x/sync/errgroup"
)

const trackEventBuffer = 1024

func Run(appName string, cfg internal.Config, opts internal.AppOptions) error {
	fmt.Printf("%s launching at Lat: %.3f, Lon: %.3f\n", appName,
		opts.Service.Request.Lat, opts.Service.Request.Lon)

	logParams := internal.LogParams{
		ConsoleOut: os.Stdout,
		ErrorOut:   os.Stderr,
	}
	if opts.LogFile != "" {
		logFile := internal.NewRotatingLogFile(opts.LogFile)
		defer logFile.Close()
		logParams.ErrorOut = logFile
	}
	logger := internal.NewLogger(logParams, opts.LogLevel)

	svc, err := internal.NewService(cfg, opts.Service, logger)
	if err != nil {
		return fmt.Errorf("tickerapp: %w", err)
	}

	notify := internal.NewNotify(appName, logParams.ConsoleOut, opts.Desktop, logger)

	conflicts, unsubscribe, err := svc.Detector.Subscribe(internal.DefaultSubscriberBuffer)
	if err != nil {
		return fmt.Errorf("tickerapp: %w", err)
	}

	// Every poll publishes a burst of updates, one per aircraft in range.
	tracks, unsubscribeTracks, err := svc.Store.Subscribe(trackEventBuffer)
	if err != nil {
		unsubscribe()
		return fmt.Errorf("tickerapp: %w", err)
	}

	summary := internal.NewPeriodicTask("summary", internal.SummaryInterval, func() {
		notify.PrintSummary(svc.Store.GetActive(), svc.Detector.GetActiveConflicts())
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return svc.Run(groupCtx) })
	group.Go(func() error { return summary.Run(groupCtx) })
	group.Go(func() error {
		for event := range conflicts {
			notify.ConflictTransition(event)
		}
		return nil
	})
	group.Go(func() error {
		for event := range tracks {
			notify.TrackTransition(event)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutdown signal received, stopping...")
		unsubscribe()
		unsubscribeTracks()
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("stopped with error", slog.Any("error", err))
		return fmt.Errorf("tickerapp: %w", err)
	}

	return nil
}
