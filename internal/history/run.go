package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"pagecompare/internal/align"
	"pagecompare/internal/report"
)

// Run is one recorded comparison.
type Run struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	DocumentA  string         `json:"document_a"`
	DocumentB  string         `json:"document_b"`
	PagesA     int            `json:"pages_a"`
	PagesB     int            `json:"pages_b"`
	Settings   align.Settings `json:"settings"`
	Params     align.Params   `json:"params"`
	Summary    report.Summary `json:"summary"`
	Steps      []align.Step   `json:"steps"`
	Duration   time.Duration  `json:"duration"`
	ReportPath string         `json:"report_path,omitempty"`
}

// timeLayout keeps fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, created_at, document_a, document_b, pages_a, pages_b, matches, inserted, deleted, mean_similarity, identical, duration_ms, report_path, settings_json, params_json, steps_json"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		createdRaw   string
		identical    int64
		durationMS   int64
		reportPath   sql.NullString
		settingsJSON string
		paramsJSON   string
		stepsJSON    string
	)
	if err := scanner.Scan(
		&run.ID,
		&createdRaw,
		&run.DocumentA,
		&run.DocumentB,
		&run.PagesA,
		&run.PagesB,
		&run.Summary.Matches,
		&run.Summary.Inserted,
		&run.Summary.Deleted,
		&run.Summary.MeanSimilarity,
		&identical,
		&durationMS,
		&reportPath,
		&settingsJSON,
		&paramsJSON,
		&stepsJSON,
	); err != nil {
		return nil, err
	}

	created, err := time.Parse(timeLayout, createdRaw)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	run.CreatedAt = created
	run.Summary.Identical = identical != 0
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.ReportPath = reportPath.String

	if err := json.Unmarshal([]byte(settingsJSON), &run.Settings); err != nil {
		return nil, fmt.Errorf("decode settings for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(paramsJSON), &run.Params); err != nil {
		return nil, fmt.Errorf("decode params for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(stepsJSON), &run.Steps); err != nil {
		return nil, fmt.Errorf("decode steps for run %s: %w", run.ID, err)
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
