// Package reports writes timestamped JSON report files.
//
// The probe uses this package when the --json flag is set.
package reports

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteJSON pretty-prints data as JSON into a timestamped file under dir.
// Filenames follow {prefix}-{YYYYMMDD-HHMMSS}.json, in UTC. The written path
// is returned.
func WriteJSON(dir, prefix string, data any) (string, error) {
	return writeJSON(dir, prefix, data, time.Now())
}

func writeJSON(dir, prefix string, data any, now time.Time) (string, error) {
	if prefix == "" {
		prefix = "report"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	ts := now.UTC().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.json", prefix, ts))

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}
