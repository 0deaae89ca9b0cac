package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digimosa/pii-scanner/internal/models"
	"github.com/digimosa/pii-scanner/internal/stats"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "scans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestScanLifecycle(t *testing.T) {
	s := openTestStore(t)
	start := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return start }

	scan, err := s.CreateScan("scan-1", "/data", "standard")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, scan.Status)

	everyone := true
	findings := []models.Finding{
		{FilePath: "/data/a.txt", PiiType: "Email", Match: "jean.dupont@example.com"},
		{FilePath: "/data/a.txt", PiiType: "DateNaissance", Match: "15/03/1985", ExposureLevel: "Critique", AccessibleToEveryone: &everyone},
	}
	require.NoError(t, s.SaveFindings("scan-1", findings))
	require.NoError(t, s.SaveFindings("scan-1", nil))

	s.now = func() time.Time { return start.Add(90 * time.Second) }
	require.NoError(t, s.CompleteScan("scan-1", stats.CalculateAt(findings, 3, start)))

	got, err := s.GetScan("scan-1")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, int64(3), got.TotalFiles)
	assert.Equal(t, int64(1), got.PIIFiles)
	assert.Equal(t, int64(2), got.TotalFindings)
	assert.Equal(t, 90*time.Second, got.Duration)
	require.Len(t, got.Findings, 2)

	var restored []models.Finding
	for _, f := range got.Findings {
		restored = append(restored, f.Finding())
	}
	assert.ElementsMatch(t, findings, restored)
}

func TestFailScan(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateScan("scan-2", "/data", "benin")
	require.NoError(t, err)

	require.NoError(t, s.FailScan("scan-2", "root vanished"))

	got, err := s.GetScan("scan-2")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got.Status)
	assert.Equal(t, "root vanished", got.Error)
}

func TestListScansNewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		_, err := s.CreateScan(id, "/data", "standard")
		require.NoError(t, err)
	}

	scans, err := s.ListScans()
	require.NoError(t, err)
	require.Len(t, scans, 3)
	assert.Equal(t, "new", scans[0].ID)
	assert.Equal(t, "old", scans[2].ID)
}

func TestDeleteScan(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateScan("scan-3", "/data", "standard")
	require.NoError(t, err)
	require.NoError(t, s.SaveFindings("scan-3", []models.Finding{{FilePath: "/a", PiiType: "Email", Match: "a@b.fr"}}))

	require.NoError(t, s.DeleteScan("scan-3"))

	_, err = s.GetScan("scan-3")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteScan("scan-3"), ErrNotFound)

	var remaining int64
	require.NoError(t, s.db.Model(&FindingModel{}).Where("scan_id = ?", "scan-3").Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestUnknownScan(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetScan("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.CompleteScan("nope", stats.Statistics{}), ErrNotFound)
	assert.ErrorIs(t, s.FailScan("nope", "x"), ErrNotFound)
}
