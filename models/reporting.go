package models

import "encoding/json"

// TestExecution is the flattened, canonical record of one test run leaf.
// IDs are assigned by emission order within a single parse pass and are
// not stable across files; cross-run identity is always recomputed from
// (projectName, title, file).
type TestExecution struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	Duration        string          `json:"duration"`
	DurationSeconds float64         `json:"duration_seconds"`
	Timestamp       string          `json:"timestamp"`
	File            string          `json:"file,omitempty"`
	Steps           []ExecutionStep `json:"steps"`
}

// ExecutionStep is one step carried over from the first result.
type ExecutionStep struct {
	Title    string          `json:"title"`
	Duration float64         `json:"duration"`
	Error    json.RawMessage `json:"error,omitempty"`
}

// DashboardMetrics summarizes one set of flattened executions.
type DashboardMetrics struct {
	TotalTests   int     `json:"total_tests"`
	PassedTests  int     `json:"passed_tests"`
	FailedTests  int     `json:"failed_tests"`
	SkippedTests int     `json:"skipped_tests"`
	AvgDuration  float64 `json:"avg_duration"`
	PassRate     float64 `json:"pass_rate"`
}

// RunReport is the payload for one run's results view.
type RunReport struct {
	Metrics     DashboardMetrics `json:"metrics"`
	TestResults []TestExecution  `json:"test_results"`
	FileName    string           `json:"file_name"`
}

// HistoryEntry is one dated run summary in the historical listing.
type HistoryEntry struct {
	Date        string           `json:"date"`
	Metrics     DashboardMetrics `json:"metrics"`
	TestResults []TestExecution  `json:"test_results"`
}

// TrendPoint is one day's pass/fail counts.
type TrendPoint struct {
	Date   string `json:"date"`
	Passed int    `json:"passed"`
	Failed int    `json:"failed"`
}

// SuiteInfo is one spec file's accumulated duration and test count on one
// day.
type SuiteInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	TestCount       int     `json:"test_count"`
}

// SuiteDurationPoint is one day's per-spec-file duration map.
type SuiteDurationPoint struct {
	Date   string               `json:"date"`
	Suites map[string]SuiteInfo `json:"suites"`
}

// SuiteDurationReport is the payload for the suite-duration chart.
type SuiteDurationReport struct {
	ChartData  []SuiteDurationPoint `json:"chart_data"`
	SuiteNames []string             `json:"suite_names"`
	TotalDates int                  `json:"total_dates"`
}

// AllResultsReport is the raw dump of every live results file.
type AllResultsReport struct {
	Files   []string     `json:"files"`
	Results []*RunResult `json:"results"`
}

// ArchiveResult reports what the archive operation did.
type ArchiveResult struct {
	Archived []string `json:"archived"`
	Merged   []string `json:"merged"`
	Count    int      `json:"count"`
	Message  string   `json:"message"`
}

// FlakyStatus is one observed status of a test on one day.
type FlakyStatus struct {
	Date   string `json:"date"`
	Status string `json:"status"`
	Time   string `json:"time"`
}

// FlakyTest is a test whose status disagreed across the observed days.
// Statuses are ordered newest first.
type FlakyTest struct {
	TestName    string        `json:"test_name"`
	ProjectName string        `json:"project_name"`
	FilePath    string        `json:"file_path"`
	Statuses    []FlakyStatus `json:"statuses"`
}

// FlakyReport is the flaky-test analysis payload. Message is set instead
// of FlakyTests when fewer than two dated runs were available.
type FlakyReport struct {
	FlakyTests         []FlakyTest `json:"flaky_tests"`
	DatesAnalyzed      []string    `json:"dates_analyzed,omitempty"`
	TotalTestsAnalyzed int         `json:"total_tests_analyzed"`
	Message            string      `json:"message,omitempty"`
}

// TestRef identifies one test inside a file group listing.
type TestRef struct {
	TestID   string `json:"test_id"`
	TestName string `json:"test_name"`
}

// TestFileGroup lists the distinct tests observed for one spec file.
type TestFileGroup struct {
	FileName string    `json:"file_name"`
	Tests    []TestRef `json:"tests"`
}

// TestExecutionPoint is one dated execution of a single test.
type TestExecutionPoint struct {
	Date            string  `json:"date"`
	DurationSeconds float64 `json:"duration_seconds"`
	Status          string  `json:"status"`
}

// TestHistory is the execution history of one test across dated runs.
type TestHistory struct {
	TestID     string               `json:"test_id"`
	TestName   string               `json:"test_name"`
	FilePath   string               `json:"file_path"`
	Executions []TestExecutionPoint `json:"executions"`
}
