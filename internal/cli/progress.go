package cli

import (
	"fmt"
	"io"
	"sync"

	"golang.org/x/time/rate"

	"github.com/digimosa/pii-scanner/internal/scanner"
)

// progressPrinter renders scan events on a terminal. Intermediate updates
// are throttled; the final update of a scan is always printed.
type progressPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	limiter *rate.Limiter
}

func newProgressPrinter(out io.Writer, perSecond float64) *progressPrinter {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &progressPrinter{out: out, limiter: rate.NewLimiter(limit, 1)}
}

func (p *progressPrinter) OnProgress(id string, pr scanner.Progress) {
	final := pr.Processed >= pr.Total
	if !final && !p.limiter.Allow() {
		return
	}

	var pct float64
	if pr.Total > 0 {
		pct = float64(pr.Processed) * 100 / float64(pr.Total)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\r[%s] %d/%d files (%.0f%%)", shortID(id), pr.Processed, pr.Total, pct)
	if final {
		fmt.Fprintln(p.out)
	}
}

func (p *progressPrinter) Complete(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "[%s] scan completed\n", shortID(id))
}

func (p *progressPrinter) Error(id, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "\n[%s] scan failed: %s\n", shortID(id), message)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
