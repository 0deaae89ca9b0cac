package scanner

import (
	"context"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/digimosa/pii-scanner/internal/detector"
	"github.com/digimosa/pii-scanner/internal/extractor"
	"github.com/digimosa/pii-scanner/internal/fileinfo"
	"github.com/digimosa/pii-scanner/internal/models"
)

// Progress is a snapshot of (processed, total) files for the current run.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// ProgressObserver receives progress events. Events are delivered from a
// single goroutine, in order, with Processed never decreasing.
type ProgressObserver interface {
	OnProgress(p Progress)
}

// ProgressFunc adapts a function to ProgressObserver.
type ProgressFunc func(p Progress)

func (f ProgressFunc) OnProgress(p Progress) { f(p) }

// Filter drops findings known to be safe.
type Filter interface {
	Allows(f models.Finding) bool
}

// Cache stores detector matches by content key.
type Cache interface {
	Get(ctx context.Context, key string) ([]models.Match, bool)
	Set(ctx context.Context, key string, matches []models.Match)
}

// Options tunes a Scanner. The zero value scans with one worker per CPU
// and no optional collaborators.
type Options struct {
	Workers          int
	Exclude          []string // doublestar globs, relative to the scan root
	MaxFileSize      int64    // bytes; 0 disables the limit
	DetectDuplicates bool
	Allowlist        Filter
	Cache            Cache
	Permissions      fileinfo.PermissionAnalyzer
	Logger           *zap.Logger
}

// Scanner walks a directory tree and runs every eligible file through the
// extractor and detector on a bounded worker pool.
type Scanner struct {
	detector *detector.Detector
	reader   *extractor.Reader
	opts     Options
	log      *zap.Logger

	total     atomic.Int64
	processed atomic.Int64

	mu        sync.Mutex
	observers []ProgressObserver
	hashes    map[string][]string
}

// New creates a Scanner around det.
func New(det *detector.Detector, opts Options) *Scanner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "scanner"))

	return &Scanner{
		detector: det,
		reader:   extractor.NewReader(log),
		opts:     opts,
		log:      log,
	}
}

// Subscribe registers an observer for subsequent progress events.
func (s *Scanner) Subscribe(o ProgressObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// TotalFilesScanned is the number of eligible files found by the current
// or last run. It is fixed before processing starts.
func (s *Scanner) TotalFilesScanned() int {
	return int(s.total.Load())
}

// ProcessedFiles is the number of files handled so far, with or without
// findings.
func (s *Scanner) ProcessedFiles() int {
	return int(s.processed.Load())
}

// ScanDirectory scans every eligible file under root and returns the
// findings in no particular order. A missing or unreadable root yields an
// empty result. Cancelling ctx stops dispatching new files; files already
// being processed run to completion.
func (s *Scanner) ScanDirectory(ctx context.Context, root string) []models.Finding {
	s.processed.Store(0)
	s.total.Store(0)
	s.mu.Lock()
	s.hashes = make(map[string][]string)
	s.mu.Unlock()

	files, err := s.resolveAndWalk(ctx, root)
	if err != nil {
		s.log.Warn("cannot enumerate scan root", zap.String("root", root), zap.Error(err))
		return []models.Finding{}
	}
	s.total.Store(int64(len(files)))
	s.log.Info("scan started",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Int("workers", s.opts.Workers),
		zap.String("profile", s.detector.Profile()),
	)

	jobs := make(chan models.Job, s.opts.Workers*4)
	results := make(chan fileResult, s.opts.Workers*4)

	var wg sync.WaitGroup
	for i := 0; i < s.opts.Workers; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, jobs, results)
	}

	go s.dispatch(ctx, files, jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	findings := s.processResults(results)
	s.log.Info("scan finished",
		zap.String("root", root),
		zap.Int("processed", s.ProcessedFiles()),
		zap.Int("findings", len(findings)),
	)
	return findings
}

// resolveAndWalk makes root absolute so every finding carries an absolute
// path, then enumerates it.
func (s *Scanner) resolveAndWalk(ctx context.Context, root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return s.walkFiles(ctx, abs)
}

func (s *Scanner) dispatch(ctx context.Context, files []string, jobs chan<- models.Job) {
	defer close(jobs)
	for _, path := range files {
		select {
		case <-ctx.Done():
			return
		case jobs <- models.Job{FilePath: path}:
		}
	}
}

func (s *Scanner) notify(p Progress) {
	s.mu.Lock()
	observers := append([]ProgressObserver(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.OnProgress(p)
	}
}
