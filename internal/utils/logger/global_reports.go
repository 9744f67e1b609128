package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type StringListReport struct {
	Title string
	RunID string
	Items []string
}

var GlobalStringListReport StringListReport
var ReportPath = "builds"

func init() {
	GlobalStringListReport = StringListReport{
		Title: "CreatedPackages",
		Items: []string{},
	}
}

// AddReportItem appends one line to the global report.
func AddReportItem(item string) {
	GlobalStringListReport.Items = append(GlobalStringListReport.Items, item)
}

// reportFileName maps a report title to packages-<title>.txt, keeping only
// ASCII letters and digits.
func reportFileName(title string) string {
	if title == "" {
		title = "untitled"
	}
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, title)
	return "packages-" + safe + ".txt"
}

// WriteListReportToFile appends one block for the current run to the report
// file under ReportPath: a "# run <id>" line when RunID is set, one line per
// item, then a blank line. Items are cleared once written.
func WriteListReportToFile() (string, error) {
	if err := os.MkdirAll(ReportPath, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}
	reportFullPath := filepath.Join(ReportPath, reportFileName(GlobalStringListReport.Title))

	var block strings.Builder
	if id := GlobalStringListReport.RunID; id != "" {
		fmt.Fprintf(&block, "# run %s\n", id)
	}
	for _, item := range GlobalStringListReport.Items {
		block.WriteString(item)
		block.WriteByte('\n')
	}
	block.WriteByte('\n')

	f, err := os.OpenFile(reportFullPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(block.String()); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	GlobalStringListReport.Items = []string{}
	return reportFullPath, nil
}
