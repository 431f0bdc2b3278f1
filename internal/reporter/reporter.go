package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/autorandr/autorandr-launcher/internal/models"
	"github.com/autorandr/autorandr-launcher/pkg/utils"
)

// DefaultLimit is the number of launches listed when no limit is given
const DefaultLimit = 20

// HistoryStore is the read side of the launch history
type HistoryStore interface {
	RecentLaunches(limit int) ([]*models.LaunchEvent, error)
	CountLaunches() (total int64, failed int64, err error)
}

// Reporter handles history report generation
type Reporter struct {
	store HistoryStore
}

// New creates a new reporter
func New(store HistoryStore) *Reporter {
	return &Reporter{store: store}
}

// GenerateReport collects the latest launches and totals
func (r *Reporter) GenerateReport(limit int) (*models.HistoryReport, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	launches, err := r.store.RecentLaunches(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent launches: %w", err)
	}

	total, failed, err := r.store.CountLaunches()
	if err != nil {
		return nil, fmt.Errorf("failed to count launches: %w", err)
	}

	return &models.HistoryReport{
		Launches:    launches,
		Total:       total,
		Failed:      failed,
		GeneratedAt: time.Now(),
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.HistoryReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Launch History\n")
	fmt.Fprintf(&b, "Total launches: %d (failed: %d)\n\n", report.Total, report.Failed)

	if len(report.Launches) == 0 {
		b.WriteString("No launches recorded.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-19s %12s %11s %8s %6s  %s\n", "Started", "Server time", "Screen", "Took", "Exit", "Error")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	for _, ev := range report.Launches {
		fmt.Fprintf(&b, "%-19s %12d %11s %8s %6d  %s\n",
			ev.StartedAt.Local().Format("2006-01-02 15:04:05"),
			ev.ServerTimestamp,
			fmt.Sprintf("%dx%d", ev.Width, ev.Height),
			utils.FormatRoundedUnit(time.Duration(ev.DurationMs)*time.Millisecond),
			ev.ExitCode,
			truncate(ev.Error, 30))
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.HistoryReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
