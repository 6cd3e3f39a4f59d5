package services

import (
	"fmt"
	"math"
	"time"

	"github.com/testpulse/testpulse/models"
)

// timestampLayout renders start times the way the dashboard displays them.
const timestampLayout = "01/02/2006, 03:04:05 PM"

// notExecuted is the timestamp sentinel for tests that never ran.
const notExecuted = "Not executed"

// FlattenSuites walks a suite tree depth-first in pre-order and emits one
// execution record per (spec, test) pair, direct specs before nested
// suites. Only the first result of a test counts; retries beyond it are
// ignored. A test with no results, or a sole result without a status, is
// emitted as skipped with zero duration rather than dropped: absence of
// execution is not absence of the test case.
func FlattenSuites(suites []models.Suite) []models.TestExecution {
	out := make([]models.TestExecution, 0)
	for i := range suites {
		flattenSuite(&suites[i], "", &out)
	}
	return out
}

func flattenSuite(suite *models.Suite, inheritedFile string, out *[]models.TestExecution) {
	file := suite.File
	if file == "" {
		file = inheritedFile
	}

	for _, spec := range suite.Specs {
		specFile := spec.File
		if specFile == "" {
			specFile = file
		}
		for _, test := range spec.Tests {
			*out = append(*out, newExecution(len(*out)+1, spec.Title, specFile, test))
		}
	}

	for i := range suite.Suites {
		flattenSuite(&suite.Suites[i], file, out)
	}
}

func newExecution(ordinal int, title, file string, test models.Test) models.TestExecution {
	name := title
	if name == "" {
		name = "Untitled Test"
	}

	exec := models.TestExecution{
		ID:        fmt.Sprintf("TEST-%d", ordinal),
		Name:      name,
		Status:    models.StatusSkipped,
		Duration:  "0.00s",
		Timestamp: notExecuted,
		File:      file,
		Steps:     []models.ExecutionStep{},
	}

	if len(test.Results) == 0 {
		return exec
	}

	result := test.Results[0]
	exec.Status = models.NormalizeStatus(result.Status)
	if result.Status != "" {
		exec.DurationSeconds = roundSeconds(result.Duration / 1000)
		exec.Duration = fmt.Sprintf("%.2fs", exec.DurationSeconds)
	}
	if result.StartTime != "" {
		if ts, err := time.Parse(time.RFC3339, result.StartTime); err == nil {
			exec.Timestamp = ts.Format(timestampLayout)
		} else {
			exec.Timestamp = result.StartTime
		}
	}
	for _, step := range result.Steps {
		exec.Steps = append(exec.Steps, models.ExecutionStep{
			Title:    step.Title,
			Duration: step.Duration,
			Error:    step.Error,
		})
	}
	return exec
}

// roundSeconds rounds a duration in seconds to two decimal places.
func roundSeconds(seconds float64) float64 {
	return math.Round(seconds*100) / 100
}

// Aggregate reduces flattened executions to summary metrics. Pure
// function; divisions are zero-guarded.
func Aggregate(execs []models.TestExecution) models.DashboardMetrics {
	metrics := models.DashboardMetrics{TotalTests: len(execs)}

	var totalDuration float64
	for _, e := range execs {
		switch e.Status {
		case models.StatusPassed:
			metrics.PassedTests++
		case models.StatusFailed:
			metrics.FailedTests++
		default:
			metrics.SkippedTests++
		}
		totalDuration += e.DurationSeconds
	}

	if metrics.TotalTests > 0 {
		metrics.AvgDuration = totalDuration / float64(metrics.TotalTests)
		metrics.PassRate = float64(metrics.PassedTests) / float64(metrics.TotalTests) * 100
	}
	return metrics
}
