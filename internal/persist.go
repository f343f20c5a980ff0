package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	tracksDir    = "tracks"
	conflictsDir = "conflicts"
	recordSuffix = ".msgpack.zst"
	// DefaultPersistQueue is the number of pending saves the async persister buffers.
	DefaultPersistQueue = 256
)

var (
	ErrPersistQueueFull = errors.New("persistence queue full")
	ErrRecordNotFound   = errors.New("record not found")
)

// Persister is the storage collaborator of the track store and the conflict detector.
type Persister interface {
	SaveTrack(ctx context.Context, track AircraftTrack) error
	SaveConflict(ctx context.Context, conflict Conflict) error
}

//////////////////////////////////////////////////////////////////////////////
/// Fire-and-forget queue in front of a Persister.                          //
//////////////////////////////////////////////////////////////////////////////

type persistJob struct {
	track    *AircraftTrack
	conflict *Conflict
}

// AsyncPersister queues saves and hands them to the target from a single worker, so callers
// never block on storage. A full queue drops the save and reports ErrPersistQueueFull.
type AsyncPersister struct {
	target  Persister
	jobs    chan persistJob
	logger  *slog.Logger
	dropped atomic.Int64
}

func NewAsyncPersister(target Persister, queueSize int, logger *slog.Logger) *AsyncPersister {
	if queueSize <= 0 {
		queueSize = DefaultPersistQueue
	}
	if logger == nil {
		logger = discardLogger()
	}

	return &AsyncPersister{
		target: target,
		jobs:   make(chan persistJob, queueSize),
		logger: logger.With(slog.String("component", "persister")),
	}
}

func (ap *AsyncPersister) SaveTrack(_ context.Context, track AircraftTrack) error {
	return ap.enqueue(persistJob{track: &track, conflict: nil})
}

func (ap *AsyncPersister) SaveConflict(_ context.Context, conflict Conflict) error {
	return ap.enqueue(persistJob{track: nil, conflict: &conflict})
}

// Dropped returns the number of saves lost to a full queue.
func (ap *AsyncPersister) Dropped() int64 {
	return ap.dropped.Load()
}

func (ap *AsyncPersister) enqueue(job persistJob) error {
	select {
	case ap.jobs <- job:
		return nil
	default:
		ap.dropped.Add(1)
		return fmt.Errorf("asyncPersister: %w", ErrPersistQueueFull)
	}
}

// Run processes queued saves until the context is cancelled, then drains what is left.
func (ap *AsyncPersister) Run(ctx context.Context) error {
	for {
		select {
		case job := <-ap.jobs:
			ap.process(ctx, job)
		case <-ctx.Done():
			drainCtx := context.WithoutCancel(ctx)
			for {
				select {
				case job := <-ap.jobs:
					ap.process(drainCtx, job)
				default:
					ap.logger.Info("persistence queue drained", slog.Int64("dropped", ap.Dropped()))
					return nil
				}
			}
		}
	}
}

func (ap *AsyncPersister) process(ctx context.Context, job persistJob) {
	switch {
	case job.track != nil:
		if err := ap.target.SaveTrack(ctx, *job.track); err != nil {
			ap.logger.Error("saving track failed", slog.String("track", job.track.ID), slog.Any("error", err))
		}
	case job.conflict != nil:
		if err := ap.target.SaveConflict(ctx, *job.conflict); err != nil {
			ap.logger.Error("saving conflict failed",
				slog.String("conflict", job.conflict.ID), slog.Any("error", err))
		}
	}
}

//////////////////////////////////////////////////////////////////////////////
/// File storage: one msgpack record per track or conflict, zstd compressed. //
//////////////////////////////////////////////////////////////////////////////

// FileStore keeps the latest saved state of every track and conflict below a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) (*FileStore, error) {
	for _, sub := range []string{tracksDir, conflictsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil { //nolint: mnd // dir permissions
			return nil, fmt.Errorf("newFileStore: failed to create %s: %w", sub, err)
		}
	}

	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) SaveTrack(ctx context.Context, track AircraftTrack) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fileStore.SaveTrack: %w", err)
	}
	return fs.store(fs.recordPath(tracksDir, track.ID), &track)
}

func (fs *FileStore) SaveConflict(ctx context.Context, conflict Conflict) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fileStore.SaveConflict: %w", err)
	}
	return fs.store(fs.recordPath(conflictsDir, conflict.ID), &conflict)
}

// LoadTrack returns the persisted copy of a track, which is authoritative once it was evicted.
func (fs *FileStore) LoadTrack(id string) (*AircraftTrack, error) {
	var track AircraftTrack
	if err := fs.load(fs.recordPath(tracksDir, id), &track); err != nil {
		return nil, err
	}
	return &track, nil
}

func (fs *FileStore) LoadConflict(id string) (*Conflict, error) {
	var conflict Conflict
	if err := fs.load(fs.recordPath(conflictsDir, id), &conflict); err != nil {
		return nil, err
	}
	return &conflict, nil
}

func (fs *FileStore) recordPath(kind, id string) string {
	return filepath.Join(fs.dir, kind, url.PathEscape(id)+recordSuffix)
}

// store writes to a temporary file first so readers never see a partial record.
func (fs *FileStore) store(path string, obj any) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("fileStore: failed to create %s: %w", tmp, err)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("fileStore: %w", err)
	}

	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		_ = zw.Close()
		_ = f.Close()
		return fmt.Errorf("fileStore: failed to encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("fileStore: failed to compress %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("fileStore: error while closing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("fileStore: %w", err)
	}
	return nil
}

func (fs *FileStore) load(path string, obj any) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("fileStore: %s: %w", filepath.Base(path), ErrRecordNotFound)
	} else if err != nil {
		return fmt.Errorf("fileStore: failed to open %s: %w", path, err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("fileStore: %w", err)
	}
	defer zr.Close()

	if err := msgpack.NewDecoder(zr).Decode(obj); err != nil {
		return fmt.Errorf("fileStore: failed to decode %s: %w", path, err)
	}
	return nil
}
