package cli

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/digimosa/pii-scanner/internal/allowlist"
	"github.com/digimosa/pii-scanner/internal/cache"
	"github.com/digimosa/pii-scanner/internal/config"
	"github.com/digimosa/pii-scanner/internal/detector"
	"github.com/digimosa/pii-scanner/internal/fileinfo"
	"github.com/digimosa/pii-scanner/internal/logger"
	"github.com/digimosa/pii-scanner/internal/scanner"
	"github.com/digimosa/pii-scanner/internal/session"
	"github.com/digimosa/pii-scanner/internal/storage"
)

// app holds the components a command needs, built from one config.
type app struct {
	mu    sync.Mutex // guards cfg.Scan and det across config reloads
	cfg   *config.Config
	log   *zap.Logger
	det   *detector.Detector
	allow *allowlist.Allowlist
	store *storage.Store
	cache *cache.RedisStore
}

func loadConfig(opts *GlobalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File: &logger.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
}

// newApp wires the scan pipeline. The cache is optional: an unreachable
// Redis only produces a warning.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	set, err := detector.ProfileByName(cfg.Scan.Profile)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg: cfg,
		log: log,
		det: detector.New(set),
	}

	if cfg.Allowlist.Path != "" {
		a.allow, err = allowlist.New(cfg.Allowlist.Path, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		if cfg.Allowlist.Watch {
			if err := a.allow.Watch(ctx); err != nil {
				log.Warn("allowlist watch disabled", zap.Error(err))
			}
		}
	}

	if cfg.Storage.DBPath != "" {
		a.store, err = storage.Open(cfg.Storage.DBPath)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.Cache.RedisURL != "" {
		a.cache, err = cache.NewRedisStore(cache.Config{
			RedisURL:  cfg.Cache.RedisURL,
			KeyPrefix: cfg.Cache.KeyPrefix,
			TTL:       cfg.Cache.TTL,
		}, log)
		if err != nil {
			log.Warn("detection cache disabled", zap.Error(err))
			a.cache = nil
		}
	}

	return a, nil
}

// reload applies the scan section of a changed config to later scans.
// Storage, cache and logging settings need a restart.
func (a *app) reload(cfg *config.Config) {
	set, err := detector.ProfileByName(cfg.Scan.Profile)
	if err != nil {
		a.log.Warn("ignoring config reload", zap.Error(err))
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if set.Name() != a.det.Profile() {
		a.det = detector.New(set)
	}
	a.cfg.Scan = cfg.Scan
	a.log.Info("configuration reloaded",
		zap.String("profile", set.Name()),
		zap.Int("workers", cfg.Scan.Workers),
	)
}

// scanOptions must be called with a.mu held.
func (a *app) scanOptions() scanner.Options {
	opts := scanner.Options{
		Workers:          a.cfg.Scan.Workers,
		Exclude:          a.cfg.Scan.ExcludePaths,
		MaxFileSize:      a.cfg.Scan.MaxFileSizeBytes(),
		DetectDuplicates: a.cfg.Scan.DetectDuplicates,
		Logger:           a.log,
	}
	// interface fields stay nil unless the component exists
	if a.allow != nil {
		opts.Allowlist = a.allow
	}
	if a.cache != nil {
		opts.Cache = a.cache
	}
	if a.cfg.Scan.AnalyzePermissions {
		opts.Permissions = fileinfo.ModeAnalyzer{}
	}
	return opts
}

func (a *app) manager(n session.Notifier) *session.Manager {
	opts := []session.Option{
		session.WithLogger(a.log),
		session.WithNotifier(n),
	}
	if a.store != nil {
		opts = append(opts, session.WithStore(a.store))
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	return session.NewManager(a.det, a.scanOptions(), opts...)
}

func (a *app) Close() {
	if a.cache != nil {
		if s := a.cache.Stats(); s.Hits+s.Misses > 0 {
			a.log.Debug("detection cache stats",
				zap.Int64("hits", s.Hits),
				zap.Int64("misses", s.Misses),
				zap.Float64("hit_rate", s.HitRate),
			)
		}
		a.cache.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("failed to close database", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}
