package scanner

import (
	"sort"

	"github.com/digimosa/pii-scanner/internal/models"
)

// processResults is the single consumer of worker output. Owning the
// counter here keeps progress events ordered.
func (s *Scanner) processResults(results <-chan fileResult) []models.Finding {
	findings := []models.Finding{}
	total := s.TotalFilesScanned()

	for res := range results {
		findings = append(findings, res.findings...)
		if res.hash != "" {
			s.mu.Lock()
			s.hashes[res.hash] = append(s.hashes[res.hash], res.path)
			s.mu.Unlock()
		}

		n := s.processed.Add(1)
		s.notify(Progress{Processed: int(n), Total: total})
	}
	return findings
}

// Duplicates returns groups of two or more files from the last run whose
// extracted content is identical. Each group and the list are sorted.
// It is empty unless Options.DetectDuplicates is set.
func (s *Scanner) Duplicates() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := [][]string{}
	for _, paths := range s.hashes {
		if len(paths) < 2 {
			continue
		}
		g := append([]string(nil), paths...)
		sort.Strings(g)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i][0] < groups[j][0]
	})
	return groups
}
