package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"go.uber.org/zap"

	"github.com/digimosa/pii-scanner/internal/detector"
	"github.com/digimosa/pii-scanner/internal/fileinfo"
	"github.com/digimosa/pii-scanner/internal/models"
)

type fileResult struct {
	path     string
	findings []models.Finding
	hash     string
}

func (s *Scanner) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan models.Job, results chan<- fileResult) {
	defer wg.Done()

	for job := range jobs {
		results <- s.scanFile(ctx, job.FilePath)
	}
}

// scanFile never fails: read or detection problems give zero findings.
func (s *Scanner) scanFile(ctx context.Context, path string) (res fileResult) {
	res.path = path
	defer func() {
		if p := recover(); p != nil {
			s.log.Error("file processing panicked", zap.String("path", path), zap.Any("panic", p))
			res = fileResult{path: path}
		}
	}()

	content := s.reader.ReadFile(path)
	if content == "" {
		return res
	}
	if s.opts.DetectDuplicates {
		sum := sha256.Sum256([]byte(content))
		res.hash = hex.EncodeToString(sum[:])
	}

	var meta models.FileMeta
	if at, ok := fileinfo.LastAccessed(path); ok {
		meta.LastAccessed = &at
	}
	if s.opts.Permissions != nil {
		if p, ok := s.opts.Permissions.Analyze(path); ok {
			meta.Permissions = &p
		}
	}

	findings := detector.Bind(s.matches(ctx, content), path, meta)
	if s.opts.Allowlist != nil {
		kept := findings[:0]
		for _, f := range findings {
			if !s.opts.Allowlist.Allows(f) {
				kept = append(kept, f)
			}
		}
		findings = kept
	}

	if len(findings) > 0 {
		s.log.Debug("findings in file", zap.String("path", path), zap.Int("count", len(findings)))
	}
	res.findings = findings
	return res
}

func (s *Scanner) matches(ctx context.Context, content string) []models.Match {
	if s.opts.Cache == nil {
		return s.detector.Matches(content)
	}

	key := ContentKey(s.detector.Profile(), content)
	if m, ok := s.opts.Cache.Get(ctx, key); ok {
		return m
	}
	m := s.detector.Matches(content)
	s.opts.Cache.Set(ctx, key, m)
	return m
}

// ContentKey identifies detector output for content under a profile.
func ContentKey(profile, content string) string {
	h := sha256.New()
	h.Write([]byte(profile))
	h.Write([]byte{0})
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}
