package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// ServiceOptions are the settings of a running airsep instance which are not part of the core
// configuration.
type ServiceOptions struct {
	Request RequestOptions
	DataDir string // persistence is disabled when empty
}

// AppOptions are shared by the ticker and the TUI app.
type AppOptions struct {
	Service  ServiceOptions
	LogLevel string
	LogFile  string // the ticker app logs to stderr when empty
	Desktop  bool   // raise desktop notifications for new conflicts
}

// Service wires the feed, the track store, the conflict detector and persistence together.
type Service struct {
	Store    *TrackStore
	Detector *ConflictDetector
	Files    *FileStore

	feed      *FeedClient
	async     *AsyncPersister
	cleanup   *PeriodicTask
	detection *PeriodicTask
	logger    *slog.Logger
}

func NewService(cfg Config, opts ServiceOptions, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = discardLogger()
	}

	svc := &Service{
		Store:     nil,
		Detector:  nil,
		Files:     nil,
		feed:      NewFeedClient(opts.Request, logger),
		async:     nil,
		cleanup:   nil,
		detection: nil,
		logger:    logger,
	}

	// Store and detector must see a nil interface, not a nil *AsyncPersister.
	var persister Persister
	if opts.DataDir != "" {
		files, err := NewFileStore(opts.DataDir)
		if err != nil {
			return nil, fmt.Errorf("newService: %w", err)
		}
		svc.Files = files
		svc.async = NewAsyncPersister(files, DefaultPersistQueue, logger)
		persister = svc.async
	}

	store, err := NewTrackStore(cfg, persister, logger)
	if err != nil {
		return nil, fmt.Errorf("newService: %w", err)
	}
	svc.Store = store

	detector, err := NewConflictDetector(cfg, store, persister, logger)
	if err != nil {
		return nil, fmt.Errorf("newService: %w", err)
	}
	svc.Detector = detector

	svc.cleanup = NewPeriodicTask("cleanup", cfg.CleanupInterval, func() {
		stats := store.Cleanup()
		if stats.Evicted > 0 || stats.Tagged > 0 {
			logger.Info("cleanup", slog.Int("evicted", stats.Evicted), slog.Int("tagged", stats.Tagged))
		}
	}, logger)

	svc.detection = NewPeriodicTask("detection", cfg.TickInterval, func() {
		result := detector.Tick()
		logger.Debug("detection tick",
			slog.Int("flying", result.Flying),
			slog.Int("detected", result.Detected),
			slog.Int("updated", result.Updated),
			slog.Int("resolved", result.Resolved))
	}, logger)

	return svc, nil
}

// Run polls the feed and drives the timers until the context is cancelled. Pending saves are
// flushed after everything else has stopped.
func (svc *Service) Run(ctx context.Context) error {
	persistDone := make(chan error, 1)
	persistCtx, stopPersist := context.WithCancel(context.WithoutCancel(ctx))
	defer stopPersist()

	if svc.async != nil {
		go func() { persistDone <- svc.async.Run(persistCtx) }()
	} else {
		persistDone <- nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return svc.feed.Run(groupCtx, svc.Store) })
	group.Go(func() error { return svc.cleanup.Run(groupCtx) })
	group.Go(func() error { return svc.detection.Run(groupCtx) })

	runErr := group.Wait()
	svc.logger.Info("service stopped, flushing persistence")

	stopPersist()
	return errors.Join(runErr, <-persistDone)
}
