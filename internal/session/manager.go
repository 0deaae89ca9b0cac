// Package session runs scans in the background and tracks them by id.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/digimosa/pii-scanner/internal/detector"
	"github.com/digimosa/pii-scanner/internal/models"
	"github.com/digimosa/pii-scanner/internal/scanner"
	"github.com/digimosa/pii-scanner/internal/stats"
	"github.com/digimosa/pii-scanner/internal/storage"
)

var (
	ErrScanNotFound = errors.New("scan not found")
	ErrInvalidRoot  = errors.New("invalid scan root")
	ErrNotCompleted = errors.New("scan not completed")
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Notifier receives scan lifecycle events. Calls for one scan come from a
// single goroutine; calls for different scans may be concurrent.
type Notifier interface {
	OnProgress(id string, p scanner.Progress)
	Complete(id string)
	Error(id, message string)
}

// Store persists scan sessions. *storage.Store implements it.
type Store interface {
	CreateScan(id, rootPath, profile string) (*storage.ScanModel, error)
	SaveFindings(id string, findings []models.Finding) error
	CompleteScan(id string, st stats.Statistics) error
	FailScan(id, msg string) error
}

// Info is a point-in-time view of a scan.
type Info struct {
	ID         string     `json:"id"`
	Root       string     `json:"root"`
	Status     Status     `json:"status"`
	Processed  int        `json:"processed"`
	Total      int        `json:"total"`
	Percent    float64    `json:"percent"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Results holds the output of a completed scan.
type Results struct {
	ID         string           `json:"id"`
	Findings   []models.Finding `json:"findings"`
	Statistics stats.Statistics `json:"statistics"`
	Duplicates [][]string       `json:"duplicates,omitempty"`
}

type run struct {
	id      string
	root    string
	scanner *scanner.Scanner
	cancel  context.CancelFunc
	done    chan struct{}
	started time.Time

	// guarded by Manager.mu
	status   Status
	err      string
	finished time.Time
	results  Results
}

// Option configures a Manager.
type Option func(*Manager)

func WithStore(s Store) Option        { return func(m *Manager) { m.store = s } }
func WithNotifier(n Notifier) Option  { return func(m *Manager) { m.notifier = n } }
func WithLogger(l *zap.Logger) Option { return func(m *Manager) { m.log = l } }

// WithIDGenerator replaces the uuid generator, mostly for tests.
func WithIDGenerator(f func() string) Option { return func(m *Manager) { m.newID = f } }

// Manager owns the scans started through it.
type Manager struct {
	det      *detector.Detector
	opts     scanner.Options
	store    Store
	notifier Notifier
	log      *zap.Logger
	newID    func() string

	mu    sync.RWMutex
	scans map[string]*run
}

// NewManager creates a Manager that builds one Scanner per scan from det
// and scanOpts.
func NewManager(det *detector.Detector, scanOpts scanner.Options, opts ...Option) *Manager {
	m := &Manager{
		det:      det,
		opts:     scanOpts,
		notifier: nopNotifier{},
		log:      zap.NewNop(),
		newID:    uuid.NewString,
		scans:    make(map[string]*run),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(zap.String("component", "session"))
	if m.opts.Logger == nil {
		m.opts.Logger = m.log
	}
	return m
}

// Start validates root and launches a scan in the background. The scan is
// cancelled when ctx is done.
func (m *Manager) Start(ctx context.Context, root string) (string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	id := m.newID()
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{
		id:      id,
		root:    root,
		scanner: scanner.New(m.det, m.opts),
		cancel:  cancel,
		done:    make(chan struct{}),
		started: time.Now(),
		status:  StatusRunning,
	}
	r.scanner.Subscribe(scanner.ProgressFunc(func(p scanner.Progress) {
		m.notifier.OnProgress(id, p)
	}))

	m.mu.Lock()
	m.scans[id] = r
	m.mu.Unlock()

	if m.store != nil {
		if _, err := m.store.CreateScan(id, root, m.det.Profile()); err != nil {
			m.log.Error("failed to record scan", zap.String("scan_id", id), zap.Error(err))
		}
	}

	m.log.Info("scan queued", zap.String("scan_id", id), zap.String("root", root))
	go m.execute(runCtx, r)
	return id, nil
}

func (m *Manager) execute(ctx context.Context, r *run) {
	defer close(r.done)
	defer r.cancel()

	findings := r.scanner.ScanDirectory(ctx, r.root)

	if err := ctx.Err(); err != nil {
		m.finish(r, StatusFailed, "scan cancelled", Results{})
		if m.store != nil {
			if err := m.store.FailScan(r.id, "scan cancelled"); err != nil {
				m.log.Error("failed to record scan failure", zap.String("scan_id", r.id), zap.Error(err))
			}
		}
		m.notifier.Error(r.id, "scan cancelled")
		return
	}

	res := Results{
		ID:         r.id,
		Findings:   findings,
		Statistics: stats.Calculate(findings, r.scanner.TotalFilesScanned()),
		Duplicates: r.scanner.Duplicates(),
	}
	if m.store != nil {
		m.persist(r.id, res)
	}
	m.finish(r, StatusCompleted, "", res)

	m.log.Info("scan completed",
		zap.String("scan_id", r.id),
		zap.Int("files", res.Statistics.TotalFilesScanned),
		zap.Int("findings", res.Statistics.TotalPiiFound),
	)
	m.notifier.Complete(r.id)
}

// persist failures are logged; the in-memory results stay available.
func (m *Manager) persist(id string, res Results) {
	if err := m.store.SaveFindings(id, res.Findings); err != nil {
		m.log.Error("failed to save findings", zap.String("scan_id", id), zap.Error(err))
		return
	}
	if err := m.store.CompleteScan(id, res.Statistics); err != nil {
		m.log.Error("failed to complete scan record", zap.String("scan_id", id), zap.Error(err))
	}
}

func (m *Manager) finish(r *run, status Status, msg string, res Results) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.status = status
	r.err = msg
	r.results = res
	r.finished = time.Now()
}

func (m *Manager) get(id string) (*run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.scans[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrScanNotFound, id)
	}
	return r, nil
}

// Progress returns the current state of a scan.
func (m *Manager) Progress(id string) (Info, error) {
	r, err := m.get(id)
	if err != nil {
		return Info{}, err
	}
	return m.info(r), nil
}

func (m *Manager) info(r *run) Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info := Info{
		ID:        r.id,
		Root:      r.root,
		Status:    r.status,
		Processed: r.scanner.ProcessedFiles(),
		Total:     r.scanner.TotalFilesScanned(),
		Error:     r.err,
		StartedAt: r.started,
	}
	if info.Total > 0 {
		info.Percent = float64(info.Processed) * 100 / float64(info.Total)
	}
	if !r.finished.IsZero() {
		finished := r.finished
		info.FinishedAt = &finished
	}
	return info
}

// List returns every tracked scan, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	runs := make([]*run, 0, len(m.scans))
	for _, r := range m.scans {
		runs = append(runs, r)
	}
	m.mu.RUnlock()

	out := make([]Info, 0, len(runs))
	for _, r := range runs {
		out = append(out, m.info(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Results returns findings and statistics once the scan has completed.
func (m *Manager) Results(id string) (Results, error) {
	r, err := m.get(id)
	if err != nil {
		return Results{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r.status != StatusCompleted {
		return Results{}, fmt.Errorf("%w: %s is %s", ErrNotCompleted, id, r.status)
	}
	return r.results, nil
}

// Wait blocks until the scan finishes or ctx is done.
func (m *Manager) Wait(ctx context.Context, id string) error {
	r, err := m.get(id)
	if err != nil {
		return err
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel stops dispatching files for a running scan.
func (m *Manager) Cancel(id string) error {
	r, err := m.get(id)
	if err != nil {
		return err
	}
	r.cancel()
	return nil
}

// Cleanup cancels the scan if needed and forgets it.
func (m *Manager) Cleanup(id string) error {
	r, err := m.get(id)
	if err != nil {
		return err
	}
	r.cancel()

	m.mu.Lock()
	delete(m.scans, id)
	m.mu.Unlock()
	m.log.Debug("scan cleaned up", zap.String("scan_id", id))
	return nil
}

type nopNotifier struct{}

func (nopNotifier) OnProgress(string, scanner.Progress) {}
func (nopNotifier) Complete(string)                     {}
func (nopNotifier) Error(string, string)                {}
