package models

import "encoding/json"

// Normalized status values for a test execution. Playwright reports more
// states than these (timedOut, interrupted); everything that is not passed
// or skipped normalizes to failed.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// NormalizeStatus maps a raw Playwright result status onto the three
// normalized values. An empty status means the test never ran.
func NormalizeStatus(raw string) string {
	switch raw {
	case StatusPassed:
		return StatusPassed
	case StatusSkipped, "":
		return StatusSkipped
	default:
		return StatusFailed
	}
}

// RunResult is the top-level shape of one Playwright JSON reporter file.
// The config block is carried opaquely so archived files keep it intact.
type RunResult struct {
	Config json.RawMessage `json:"config,omitempty"`
	Suites []Suite         `json:"suites"`
	Stats  RunStats        `json:"stats"`
}

// RunStats mirrors the reporter's stats block.
type RunStats struct {
	StartTime  string  `json:"startTime"`
	Duration   float64 `json:"duration"`
	Expected   int     `json:"expected"`
	Skipped    int     `json:"skipped"`
	Unexpected int     `json:"unexpected"`
	Flaky      int     `json:"flaky"`
}

// Suite is one node of the (arbitrarily nested) suite tree. File is only
// reliably present on some levels and is inherited downward during
// flattening.
type Suite struct {
	Title  string  `json:"title"`
	File   string  `json:"file,omitempty"`
	Specs  []Spec  `json:"specs,omitempty"`
	Suites []Suite `json:"suites,omitempty"`
}

// Spec is one declared test case under a suite.
type Spec struct {
	Title string `json:"title"`
	File  string `json:"file,omitempty"`
	Tests []Test `json:"tests,omitempty"`
}

// Test is one project/browser execution slot for a spec.
type Test struct {
	ProjectName    string   `json:"projectName"`
	ExpectedStatus string   `json:"expectedStatus,omitempty"`
	Results        []Result `json:"results,omitempty"`
}

// Result is one execution attempt, duration in milliseconds.
type Result struct {
	Status    string       `json:"status"`
	Duration  float64      `json:"duration"`
	Retry     int          `json:"retry,omitempty"`
	StartTime string       `json:"startTime"`
	Steps     []ResultStep `json:"steps,omitempty"`
	Error     *ResultError `json:"error,omitempty"`
}

// ResultStep is one recorded step inside a result.
type ResultStep struct {
	Title    string          `json:"title"`
	Duration float64         `json:"duration"`
	Error    json.RawMessage `json:"error,omitempty"`
}

// ResultError carries the failure message of a failed result.
type ResultError struct {
	Message string `json:"message"`
}

// The reporter output is untrusted: individual branches can miss fields or
// carry the wrong shape entirely. Decoding drops a malformed branch and
// keeps its siblings instead of failing the whole file, so one corrupt
// suite never hides the rest of a run.

func (r *RunResult) UnmarshalJSON(data []byte) error {
	type raw struct {
		Config json.RawMessage `json:"config"`
		Suites json.RawMessage `json:"suites"`
		Stats  RunStats        `json:"stats"`
	}
	var v raw
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.Config = v.Config
	r.Stats = v.Stats
	r.Suites = decodeList[Suite](v.Suites)
	return nil
}

func (s *Suite) UnmarshalJSON(data []byte) error {
	type raw struct {
		Title  string          `json:"title"`
		File   string          `json:"file"`
		Specs  json.RawMessage `json:"specs"`
		Suites json.RawMessage `json:"suites"`
	}
	var v raw
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Title = v.Title
	s.File = v.File
	s.Specs = decodeList[Spec](v.Specs)
	s.Suites = decodeList[Suite](v.Suites)
	return nil
}

func (s *Spec) UnmarshalJSON(data []byte) error {
	type raw struct {
		Title string          `json:"title"`
		File  string          `json:"file"`
		Tests json.RawMessage `json:"tests"`
	}
	var v raw
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Title = v.Title
	s.File = v.File
	s.Tests = decodeList[Test](v.Tests)
	return nil
}

func (t *Test) UnmarshalJSON(data []byte) error {
	type raw struct {
		ProjectName    string          `json:"projectName"`
		ExpectedStatus string          `json:"expectedStatus"`
		Results        json.RawMessage `json:"results"`
	}
	var v raw
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	t.ProjectName = v.ProjectName
	t.ExpectedStatus = v.ExpectedStatus
	t.Results = decodeList[Result](v.Results)
	return nil
}

// decodeList decodes a JSON array element by element. A field that is not
// an array, or an element that does not decode, yields an empty subtree
// rather than an error.
func decodeList[T any](data json.RawMessage) []T {
	if len(data) == 0 {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	out := make([]T, 0, len(elems))
	for _, e := range elems {
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}
