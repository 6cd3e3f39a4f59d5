package models

import "time"

// TestStep is one scripted step extracted from a spec source file.
type TestStep struct {
	StepNumber      int    `json:"step_number"`
	Description     string `json:"description"`
	BusinessReason  string `json:"business_reason,omitempty"`
	Field           string `json:"field,omitempty"`
	ExpectedOutcome string `json:"expected_outcome,omitempty"`
}

// TestCase is one declared test extracted from a spec source file. ID is
// content-derived and display-only; collisions are possible, so matching
// always keys on Title plus FilePath.
type TestCase struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Feature      string     `json:"feature"`
	Tags         []string   `json:"tags"`
	FilePath     string     `json:"file_path"`
	Steps        []TestStep `json:"steps"`
	Status       string     `json:"status,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// TestSuite is the parsed view of one spec source file.
type TestSuite struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	FilePath    string     `json:"file_path"`
	TestCases   []TestCase `json:"test_cases"`
}

// TestCaseReport is the payload for the parsed test-case listing.
type TestCaseReport struct {
	Suites      []TestSuite `json:"suites"`
	TotalTests  int         `json:"total_tests"`
	TotalSuites int         `json:"total_suites"`
}

// SpecFileCoverage is one spec file's requirement-coverage record.
type SpecFileCoverage struct {
	FileName            string    `json:"file_name"`
	RelativePath        string    `json:"relative_path"`
	FilePath            string    `json:"file_path"`
	Size                int64     `json:"size"`
	Modified            time.Time `json:"modified"`
	TestCount           int       `json:"test_count"`
	StepCount           int       `json:"step_count"`
	RequirementIDs      []string  `json:"requirement_ids"`
	RequirementCoverage float64   `json:"requirement_coverage"`
}

// CoverageReport is the payload for the coverage listing. Mapping carries
// the raw requirement table so consumers can resolve descriptions.
type CoverageReport struct {
	Files             []SpecFileCoverage `json:"files"`
	Count             int                `json:"count"`
	TotalTests        int                `json:"total_tests"`
	TotalSteps        int                `json:"total_steps"`
	TotalRequirements int                `json:"total_requirements"`
	Mapping           map[string]string  `json:"mapping"`
}
