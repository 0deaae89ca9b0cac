package detector

import (
	"time"

	"github.com/digimosa/pii-scanner/internal/models"
)

// Detector runs a fixed PatternSet over free text. It holds no mutable
// state and is safe for concurrent use.
type Detector struct {
	set *PatternSet
	now func() time.Time
}

// Option configures a Detector.
type Option func(*Detector)

// WithClock overrides the time source used by date validators.
func WithClock(now func() time.Time) Option {
	return func(d *Detector) {
		d.now = now
	}
}

// New creates a detector bound to an immutable pattern set.
func New(set *PatternSet, opts ...Option) *Detector {
	d := &Detector{
		set: set,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Profile returns the name of the underlying pattern set.
func (d *Detector) Profile() string {
	return d.set.Name()
}

// Matches returns every validated hit in content, pattern by pattern in
// table order. A span may be reported under several pattern names.
func (d *Detector) Matches(content string) []models.Match {
	if content == "" {
		return nil
	}

	now := d.now()
	var found []models.Match
	for _, p := range d.set.patterns {
		for _, val := range p.expr.FindAllString(content, -1) {
			if val == "" {
				continue
			}
			if p.validate != nil && !p.validate(val, now) {
				continue
			}
			found = append(found, models.Match{Type: p.typ, Value: val})
		}
	}
	return found
}

// Detect classifies content and returns one finding per validated match,
// tagged with sourceID and the optional file metadata.
func (d *Detector) Detect(content, sourceID string, meta models.FileMeta) []models.Finding {
	return Bind(d.Matches(content), sourceID, meta)
}

// Bind turns raw matches into findings for one file.
func Bind(matches []models.Match, sourceID string, meta models.FileMeta) []models.Finding {
	if len(matches) == 0 {
		return nil
	}
	findings := make([]models.Finding, 0, len(matches))
	for _, m := range matches {
		f := models.Finding{
			FilePath: sourceID,
			PiiType:  string(m.Type),
			Match:    m.Value,
		}
		meta.Apply(&f)
		findings = append(findings, f)
	}
	return findings
}
