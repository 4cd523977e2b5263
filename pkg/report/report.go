package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"auditum-hq/callisto/pkg/audit"
)

// Writer renders audit results into OutputDir.
type Writer struct {
	// OutputDir is created on first write if it does not exist.
	OutputDir string
}

// NewWriter creates a report writer for dir.
func NewWriter(dir string) *Writer {
	return &Writer{OutputDir: dir}
}

// Write renders the result in every requested format and returns the
// paths written. Supported formats are "json" and "html".
func (w *Writer) Write(result *audit.Result, formats []string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case "json":
			path, err = w.WriteJSON(result)
		case "html":
			path, err = w.WriteHTML(result)
		default:
			err = fmt.Errorf("unknown report format %q", format)
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteJSON writes the canonical JSON report and returns its path.
func (w *Writer) WriteJSON(result *audit.Result) (string, error) {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(w.OutputDir, fmt.Sprintf("audit_report_%s.json", result.AuditID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// WriteHTML writes the standalone HTML report and returns its path.
func (w *Writer) WriteHTML(result *audit.Result) (string, error) {
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	path := filepath.Join(w.OutputDir, fmt.Sprintf("audit_report_%s.html", result.AuditID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := htmlTemplate.Execute(f, newHTMLData(result)); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return path, nil
}

// WriteRemediationScripts writes each remediation script as its own file
// under a scripts/ subdirectory and returns the paths written.
func (w *Writer) WriteRemediationScripts(result *audit.Result) ([]string, error) {
	if len(result.Remediations) == 0 {
		return nil, nil
	}

	dir := filepath.Join(w.OutputDir, fmt.Sprintf("scripts_%s", result.AuditID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scripts directory: %w", err)
	}

	var paths []string
	for _, script := range result.Remediations {
		path := filepath.Join(dir, script.Filename)
		// Not executable on purpose; scripts need review before running.
		if err := os.WriteFile(path, []byte(script.Content), 0o644); err != nil {
			return paths, fmt.Errorf("write script %s: %w", script.Filename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
