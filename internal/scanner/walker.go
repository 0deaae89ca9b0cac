package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/digimosa/pii-scanner/internal/extractor"
)

// walkFiles lists eligible files under root. Unreadable subtrees are
// skipped; only a failure on root itself is returned. root may be a
// symlink; returned paths stay under root as given. Symlinked regular
// files are included, symlinked directories are not followed.
func (s *Scanner) walkFiles(ctx context.Context, root string) ([]string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == resolved {
				return err
			}
			s.log.Debug("skipping inaccessible path", zap.String("path", path), zap.Error(err))
			return nil
		}

		if path != resolved && s.excluded(resolved, path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !extractor.IsSupported(path) {
			return nil
		}

		fi, ok := regularFile(path, d)
		if !ok {
			return nil
		}
		if s.opts.MaxFileSize > 0 && fi.Size() > s.opts.MaxFileSize {
			return nil
		}

		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.Join(root, rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// regularFile returns the file info of d, following a symlink. Anything
// that is not a regular file in the end is rejected.
func regularFile(path string, d fs.DirEntry) (fs.FileInfo, bool) {
	var (
		fi  fs.FileInfo
		err error
	)
	if d.Type()&fs.ModeSymlink != 0 {
		fi, err = os.Stat(path)
	} else {
		fi, err = d.Info()
	}
	if err != nil || !fi.Mode().IsRegular() {
		return nil, false
	}
	return fi, true
}

func (s *Scanner) excluded(root, path string) bool {
	if len(s.opts.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range s.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
