package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/open-rag/reporag/internal/index"
)

// ProgressReporter drives a CLI progress bar during `index`, grounded on
// the teacher's CLIProgressReporter (internal/cli/progress.go), reduced
// to the one phase this system's indexer actually reports: per-file
// incremental upsert. There is no separate embedding or graph-building
// phase at the CLI layer — both happen inside Coordinator.IndexFile.
type ProgressReporter struct {
	quiet     bool
	bar       *progressbar.ProgressBar
	startTime time.Time
}

// NewProgressReporter creates a reporter; quiet suppresses all output.
func NewProgressReporter(quiet bool) *ProgressReporter {
	return &ProgressReporter{quiet: quiet, startTime: time.Now()}
}

func (p *ProgressReporter) OnDiscoveryComplete(fileCount int) {
	if p.quiet {
		return
	}
	log.Printf("Indexing %d files\n", fileCount)
	p.bar = progressbar.NewOptions(fileCount,
		progressbar.OptionSetDescription("Indexing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() { fmt.Println() }),
	)
}

// OnFile is passed as the onFile callback to Coordinator.IndexAllWithProgress.
func (p *ProgressReporter) OnFile(f index.File, report index.FileReport) {
	if p.quiet || p.bar == nil {
		return
	}
	_ = p.bar.Add(1)
}

// OnComplete prints a one-line summary across every file's report.
func (p *ProgressReporter) OnComplete(reports []index.FileReport) {
	if p.quiet {
		return
	}
	var upserted, recovered, softDeleted, skipped int
	for _, r := range reports {
		upserted += r.Upserted
		recovered += r.Recovered
		softDeleted += r.SoftDeleted
		if r.Skipped {
			skipped++
		}
	}
	fmt.Println()
	fmt.Printf("Indexing complete in %.1fs: %d upserted, %d recovered, %d soft-deleted, %d skipped\n",
		time.Since(p.startTime).Seconds(), upserted, recovered, softDeleted, skipped)
}
