package changelog

import (
	"fmt"
	"os"
)

// ResolveSummary returns the summary text given inline or read from
// summaryFile. At most one of them may be set.
func ResolveSummary(summary, summaryFile string) (string, error) {
	if summary != "" && summaryFile != "" {
		return "", fmt.Errorf("only one of --summary or --summary-file may be specified")
	}
	if summaryFile == "" {
		return summary, nil
	}

	info, err := os.Stat(summaryFile)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("summary file does not exist: %s", summaryFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat summary file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("summary file is not a regular file: %s", summaryFile)
	}

	data, err := os.ReadFile(summaryFile)
	if err != nil {
		return "", fmt.Errorf("summary file is not readable: %w", err)
	}
	return string(data), nil
}
