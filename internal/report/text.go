package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fping-influx/internal/models"
	"fping-influx/internal/parser"
)

// recentRunLimit bounds the run log at the end of the summary
const recentRunLimit = 20

func (g *Generator) generateTextReport(ctx context.Context, outputDir string, since time.Time, hours int) error {
	summaries, err := g.db.TargetSummaries(ctx, since)
	if err != nil {
		return err
	}
	runs, err := g.db.RecentRuns(ctx, recentRunLimit)
	if err != nil {
		return err
	}

	filename := filepath.Join(outputDir, "summary.txt")
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "fping Loss and Latency Report\n")
	fmt.Fprintf(file, "Generated: %s\n", g.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Period: Last %d hours\n\n", hours)
	fmt.Fprintln(file, strings.Repeat("=", 60))

	fmt.Fprintln(file, "\nTARGET STATISTICS")

	for _, s := range summaries {
		fmt.Fprintf(file, "Target: %s\n", s.Target)
		fmt.Fprintf(file, "  Runs: %d\n", s.Runs)
		fmt.Fprintf(file, "  Packets: %d sent, %d received\n", s.Transmitted, s.Received)
		fmt.Fprintf(file, "  Average Loss: %.2f%%\n", s.AvgLossPercent)

		if s.Received > 0 {
			fmt.Fprintf(file, "  Average RTT: %.2f ms\n", s.AvgMs)
			fmt.Fprintf(file, "  Min RTT: %.2f ms\n", s.MinMs)
			fmt.Fprintf(file, "  Max RTT: %.2f ms\n", s.MaxMs)
		}
		fmt.Fprintln(file)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(file, "No targets archived in this period.")
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))

	fmt.Fprintln(file, "\nRECENT RUNS")

	for _, r := range runs {
		fmt.Fprintf(file, "%s  %s  %s - %s  targets=%d  status=%s",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.ID,
			r.Params.RangeStart, r.Params.RangeEnd, r.TargetCount, r.Status)
		if r.Status == models.RunStatusFailed {
			fmt.Fprintf(file, "  stage=%s  error=%s", r.Stage, r.Error)
		}
		fmt.Fprintln(file)
	}

	fmt.Fprintln(file, strings.Repeat("=", 60))

	// Last observed line per target, in fping's own format
	latest, err := g.latestStats(ctx, since)
	if err != nil {
		return err
	}
	if len(latest) > 0 {
		fmt.Fprintln(file, "\nLAST SWEEP")
		for _, stats := range latest {
			fmt.Fprintln(file, parser.FormatLine(stats))
		}
	}

	return nil
}

func (g *Generator) latestStats(ctx context.Context, since time.Time) ([]models.TargetStats, error) {
	samples, err := g.db.TargetHistory(ctx, since)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, nil
	}

	lastRun := samples[len(samples)-1].RunID
	var latest []models.TargetStats
	for _, s := range samples {
		if s.RunID == lastRun {
			latest = append(latest, s.TargetStats)
		}
	}
	return latest, nil
}
