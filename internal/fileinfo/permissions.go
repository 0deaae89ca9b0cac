package fileinfo

import (
	"io/fs"
	"os"
	"strings"

	"github.com/digimosa/pii-scanner/internal/models"
)

// Exposure labels, from widest to narrowest audience.
const (
	ExposureCritical = "Critique"
	ExposureMedium   = "Moyen"
	ExposureLow      = "Faible"
)

// PermissionAnalyzer reports how broadly a file is readable.
type PermissionAnalyzer interface {
	Analyze(path string) (models.PermissionInfo, bool)
}

// ModeAnalyzer derives exposure from POSIX permission bits.
type ModeAnalyzer struct{}

func (ModeAnalyzer) Analyze(path string) (models.PermissionInfo, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return models.PermissionInfo{}, false
	}
	p := FromMode(info.Mode())
	p.IsNetworkShare = IsNetworkPath(path)
	return p, true
}

// FromMode classifies a permission mode. UserGroupCount is the number of
// permission classes (owner, group, others) that can read the file.
func FromMode(mode fs.FileMode) models.PermissionInfo {
	perm := mode.Perm()

	readers := 0
	for _, bit := range []fs.FileMode{0o400, 0o040, 0o004} {
		if perm&bit != 0 {
			readers++
		}
	}

	p := models.PermissionInfo{UserGroupCount: readers}
	switch {
	case perm&0o004 != 0:
		p.ExposureLevel = ExposureCritical
		p.AccessibleToEveryone = true
	case perm&0o040 != 0:
		p.ExposureLevel = ExposureMedium
	default:
		p.ExposureLevel = ExposureLow
	}
	return p
}

// IsNetworkPath reports UNC (\\server\share) and //server/share paths.
func IsNetworkPath(path string) bool {
	return strings.HasPrefix(path, `\\`) || strings.HasPrefix(path, "//")
}
