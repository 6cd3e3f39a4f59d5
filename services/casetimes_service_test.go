package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
)

func TestCaseTimesServiceFiles(t *testing.T) {
	cfg := newTestConfig(t)
	writeFixture(t, cfg.ResultsDir, "results-2024-01-02.json",
		runJSON("checkout.spec.ts", "Checkout", "passed", 1000, "2024-01-02T09:00:00Z"))
	writeFixture(t, cfg.ArchiveDir, "results-2024-01-01.json",
		runJSON("login.spec.ts", "Login", "failed", 500, "2024-01-01T09:00:00Z"))

	svc := NewCaseTimesService(cfg, store.NewDiskStore(), newTestLogger())
	groups := svc.Files()

	require.Len(t, groups, 2)
	assert.Equal(t, "checkout.spec.ts", groups[0].FileName)
	assert.Equal(t, "login.spec.ts", groups[1].FileName)

	require.Len(t, groups[0].Tests, 1)
	assert.Equal(t, "checkout.spec.ts::Checkout", groups[0].Tests[0].TestID)
	assert.Equal(t, "Checkout", groups[0].Tests[0].TestName)
}

func TestCaseTimesServiceFilesFallsBackToTitle(t *testing.T) {
	cfg := newTestConfig(t)
	writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json", `{
		"suites": [
			{
				"title": "untitled-group.spec.ts",
				"specs": [
					{"title": "lonely test", "tests": [{"results": [{"status": "passed", "duration": 100, "startTime": "2024-01-01T09:00:00Z"}]}]}
				]
			}
		]
	}`)

	svc := NewCaseTimesService(cfg, store.NewDiskStore(), newTestLogger())
	groups := svc.Files()

	require.Len(t, groups, 1)
	assert.Equal(t, "untitled-group.spec.ts", groups[0].FileName)
}

func TestCaseTimesServiceHistory(t *testing.T) {
	cfg := newTestConfig(t)
	writeFixture(t, cfg.ArchiveDir, "results-2024-01-01.json",
		runJSON("checkout.spec.ts", "Checkout", "passed", 1000, "2024-01-01T09:00:00Z"))
	writeFixture(t, cfg.ResultsDir, "results-2024-01-02.json",
		runJSON("checkout.spec.ts", "Checkout", "failed", 2500, "2024-01-02T09:00:00Z"))
	// Unrelated file never contributes.
	writeFixture(t, cfg.ArchiveDir, "results-2023-12-31.json",
		runJSON("login.spec.ts", "Login", "passed", 100, "2023-12-31T09:00:00Z"))

	svc := NewCaseTimesService(cfg, store.NewDiskStore(), newTestLogger())
	history := svc.History("checkout.spec.ts", "Checkout")

	assert.Equal(t, "checkout.spec.ts::Checkout", history.TestID)
	assert.Equal(t, "Checkout", history.TestName)
	assert.Equal(t, "checkout.spec.ts", history.FilePath)

	require.Len(t, history.Executions, 2)
	assert.Equal(t, models.TestExecutionPoint{
		Date: "2024-01-01", DurationSeconds: 1.0, Status: models.StatusPassed,
	}, history.Executions[0])
	assert.Equal(t, models.TestExecutionPoint{
		Date: "2024-01-02", DurationSeconds: 2.5, Status: models.StatusFailed,
	}, history.Executions[1])
}

func TestCaseTimesServiceHistoryUnknownTest(t *testing.T) {
	cfg := newTestConfig(t)
	writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json",
		runJSON("checkout.spec.ts", "Checkout", "passed", 100, "2024-01-01T09:00:00Z"))

	svc := NewCaseTimesService(cfg, store.NewDiskStore(), newTestLogger())
	history := svc.History("checkout.spec.ts", "No such test")

	assert.Empty(t, history.Executions)
	assert.NotNil(t, history.Executions)
}
