// Package stats aggregates a finished scan into decision-ready numbers.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/digimosa/pii-scanner/internal/models"
	"github.com/digimosa/pii-scanner/internal/staleness"
)

// RiskLevel is the per-file risk label.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

const topRiskyLimit = 10

// TypeCount is one entry of the per-type breakdown.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// FileRiskInfo ranks a single file.
type FileRiskInfo struct {
	FilePath  string          `json:"file_path"`
	PiiCount  int             `json:"pii_count"`
	RiskLevel RiskLevel       `json:"risk_level"`
	Types     []string        `json:"types"`
	Staleness staleness.Level `json:"staleness"`
	// empty unless the file was last opened six months ago or more
	StalenessMessage string `json:"staleness_message,omitempty"`
}

// Statistics summarizes a set of findings.
type Statistics struct {
	TotalFilesScanned int            `json:"total_files_scanned"`
	FilesWithPii      int            `json:"files_with_pii"`
	TotalPiiFound     int            `json:"total_pii_found"`
	PiiByType         []TypeCount    `json:"pii_by_type"`
	TopRiskyFiles     []FileRiskInfo `json:"top_risky_files"`
	StaleFiles        int            `json:"stale_files"`
}

// Calculate aggregates findings using the current time for staleness.
func Calculate(findings []models.Finding, totalFilesScanned int) Statistics {
	return CalculateAt(findings, totalFilesScanned, time.Now())
}

// CalculateAt is Calculate with an explicit reference time. It does not
// modify findings and returns the same result for the same input.
func CalculateAt(findings []models.Finding, totalFilesScanned int, now time.Time) Statistics {
	st := Statistics{
		TotalFilesScanned: totalFilesScanned,
		TotalPiiFound:     len(findings),
		PiiByType:         []TypeCount{},
		TopRiskyFiles:     []FileRiskInfo{},
	}

	typeIdx := make(map[string]int)
	fileIdx := make(map[string]int)
	var files []FileRiskInfo
	var accessed []time.Time

	for _, f := range findings {
		if i, ok := typeIdx[f.PiiType]; ok {
			st.PiiByType[i].Count++
		} else {
			typeIdx[f.PiiType] = len(st.PiiByType)
			st.PiiByType = append(st.PiiByType, TypeCount{Type: f.PiiType, Count: 1})
		}

		i, ok := fileIdx[f.FilePath]
		if !ok {
			i = len(files)
			fileIdx[f.FilePath] = i
			files = append(files, FileRiskInfo{FilePath: f.FilePath})
			accessed = append(accessed, time.Time{})
		}
		files[i].PiiCount++
		if !containsString(files[i].Types, f.PiiType) {
			files[i].Types = append(files[i].Types, f.PiiType)
		}
		if accessed[i].IsZero() && f.LastAccessedDate != nil {
			accessed[i] = *f.LastAccessedDate
		}
	}

	st.FilesWithPii = len(files)
	for i := range files {
		files[i].RiskLevel = RiskLevelOf(files[i].PiiCount, files[i].Types)
		files[i].Staleness = staleness.LevelOf(accessed[i], now)
		files[i].StalenessMessage = staleness.Message(files[i].PiiCount, accessed[i], now)
		if files[i].Staleness >= staleness.SixMonths {
			st.StaleFiles++
		}
	}

	sort.SliceStable(st.PiiByType, func(a, b int) bool {
		return st.PiiByType[a].Count > st.PiiByType[b].Count
	})
	sort.SliceStable(files, func(a, b int) bool {
		return files[a].PiiCount > files[b].PiiCount
	})
	if len(files) > topRiskyLimit {
		files = files[:topRiskyLimit]
	}
	st.TopRiskyFiles = append(st.TopRiskyFiles, files...)

	return st
}

// RiskLevelOf labels a file: banking data or more than 10 findings is HIGH,
// 3 to 10 findings is MEDIUM, anything else LOW.
func RiskLevelOf(piiCount int, types []string) RiskLevel {
	for _, t := range types {
		if strings.Contains(t, "IBAN") || strings.Contains(t, "CarteBancaire") {
			return RiskHigh
		}
	}
	switch {
	case piiCount > 10:
		return RiskHigh
	case piiCount >= 3:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Summary renders the statistics as a short text block.
func (s Statistics) Summary() string {
	var sb strings.Builder
	sb.WriteString("=== STATISTIQUES DU SCAN ===\n")
	fmt.Fprintf(&sb, "Fichiers scannés : %d\n", s.TotalFilesScanned)
	fmt.Fprintf(&sb, "Fichiers contenant des PII : %d\n", s.FilesWithPii)
	fmt.Fprintf(&sb, "Total de PII détectées : %d\n", s.TotalPiiFound)
	if s.StaleFiles > 0 {
		fmt.Fprintf(&sb, "Fichiers non ouverts depuis 6 mois : %d\n", s.StaleFiles)
	}

	if len(s.PiiByType) > 0 {
		sb.WriteString("\nRépartition par type :\n")
		for _, tc := range s.PiiByType {
			pct := float64(tc.Count) * 100 / float64(s.TotalPiiFound)
			fmt.Fprintf(&sb, "  - %s: %d (%.1f%%)\n", tc.Type, tc.Count, pct)
		}
	}
	return sb.String()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
