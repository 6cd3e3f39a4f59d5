package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testpulse/testpulse/models"
)

func TestFlattenSuites(t *testing.T) {
	t.Run("single passed test produces the full execution record", func(t *testing.T) {
		suites := []models.Suite{
			{
				Title: "checkout.spec.ts",
				File:  "checkout.spec.ts",
				Specs: []models.Spec{
					{
						Title: "Checkout",
						Tests: []models.Test{
							{
								ProjectName: "chromium",
								Results: []models.Result{
									{Status: "passed", Duration: 1500, StartTime: "2024-01-01T10:00:00Z"},
								},
							},
						},
					},
				},
			},
		}

		execs := FlattenSuites(suites)
		require.Len(t, execs, 1)

		assert.Equal(t, "TEST-1", execs[0].ID)
		assert.Equal(t, "Checkout", execs[0].Name)
		assert.Equal(t, models.StatusPassed, execs[0].Status)
		assert.Equal(t, "1.50s", execs[0].Duration)
		assert.Equal(t, 1.5, execs[0].DurationSeconds)
		assert.Equal(t, "01/01/2024, 10:00:00 AM", execs[0].Timestamp)
		assert.Equal(t, "checkout.spec.ts", execs[0].File)
	})

	t.Run("test without results is emitted as skipped", func(t *testing.T) {
		suites := []models.Suite{
			{
				File: "login.spec.ts",
				Specs: []models.Spec{
					{Title: "Login", Tests: []models.Test{{ProjectName: "chromium"}}},
				},
			},
		}

		execs := FlattenSuites(suites)
		require.Len(t, execs, 1)

		assert.Equal(t, models.StatusSkipped, execs[0].Status)
		assert.Equal(t, "0.00s", execs[0].Duration)
		assert.Equal(t, float64(0), execs[0].DurationSeconds)
		assert.Equal(t, "Not executed", execs[0].Timestamp)
	})

	t.Run("only the first result counts", func(t *testing.T) {
		suites := []models.Suite{
			{
				File: "retry.spec.ts",
				Specs: []models.Spec{
					{
						Title: "Retried test",
						Tests: []models.Test{
							{
								Results: []models.Result{
									{Status: "failed", Duration: 1000, StartTime: "2024-01-01T10:00:00Z"},
									{Status: "passed", Duration: 500, Retry: 1, StartTime: "2024-01-01T10:01:00Z"},
								},
							},
						},
					},
				},
			},
		}

		execs := FlattenSuites(suites)
		require.Len(t, execs, 1)
		assert.Equal(t, models.StatusFailed, execs[0].Status)
		assert.Equal(t, "1.00s", execs[0].Duration)
	})

	t.Run("direct specs come before nested suites", func(t *testing.T) {
		suites := []models.Suite{
			{
				File: "a.spec.ts",
				Specs: []models.Spec{
					{Title: "top level", Tests: []models.Test{{}}},
				},
				Suites: []models.Suite{
					{
						Title: "nested group",
						Specs: []models.Spec{
							{Title: "nested", Tests: []models.Test{{}}},
						},
					},
				},
			},
			{
				File: "b.spec.ts",
				Specs: []models.Spec{
					{Title: "second file", Tests: []models.Test{{}}},
				},
			},
		}

		execs := FlattenSuites(suites)
		require.Len(t, execs, 3)

		assert.Equal(t, "top level", execs[0].Name)
		assert.Equal(t, "nested", execs[1].Name)
		assert.Equal(t, "second file", execs[2].Name)
		assert.Equal(t, []string{"TEST-1", "TEST-2", "TEST-3"},
			[]string{execs[0].ID, execs[1].ID, execs[2].ID})
	})

	t.Run("file is inherited down the tree", func(t *testing.T) {
		suites := []models.Suite{
			{
				File: "parent.spec.ts",
				Suites: []models.Suite{
					{
						Title: "no file of its own",
						Specs: []models.Spec{
							{Title: "inherits", Tests: []models.Test{{}}},
						},
					},
				},
			},
		}

		execs := FlattenSuites(suites)
		require.Len(t, execs, 1)
		assert.Equal(t, "parent.spec.ts", execs[0].File)
	})

	t.Run("spec without a title gets a placeholder name", func(t *testing.T) {
		suites := []models.Suite{
			{
				File: "x.spec.ts",
				Specs: []models.Spec{
					{Tests: []models.Test{{}}},
				},
			},
		}

		execs := FlattenSuites(suites)
		require.Len(t, execs, 1)
		assert.Equal(t, "Untitled Test", execs[0].Name)
	})

	t.Run("durations are rounded to two decimals", func(t *testing.T) {
		suites := []models.Suite{
			{
				File: "x.spec.ts",
				Specs: []models.Spec{
					{
						Title: "precise",
						Tests: []models.Test{
							{Results: []models.Result{{Status: "passed", Duration: 1234.5}}},
						},
					},
				},
			},
		}

		execs := FlattenSuites(suites)
		require.Len(t, execs, 1)
		assert.Equal(t, 1.23, execs[0].DurationSeconds)
		assert.Equal(t, "1.23s", execs[0].Duration)
	})
}

func TestAggregate(t *testing.T) {
	t.Run("empty input yields zero metrics", func(t *testing.T) {
		metrics := Aggregate(nil)
		assert.Equal(t, models.DashboardMetrics{}, metrics)
	})

	t.Run("counts statuses and derives rates", func(t *testing.T) {
		execs := []models.TestExecution{
			{Status: models.StatusPassed, DurationSeconds: 1.5},
			{Status: models.StatusPassed, DurationSeconds: 0.5},
			{Status: models.StatusFailed, DurationSeconds: 2.0},
			{Status: models.StatusSkipped},
		}

		metrics := Aggregate(execs)
		assert.Equal(t, 4, metrics.TotalTests)
		assert.Equal(t, 2, metrics.PassedTests)
		assert.Equal(t, 1, metrics.FailedTests)
		assert.Equal(t, 1, metrics.SkippedTests)
		assert.Equal(t, 4, metrics.PassedTests+metrics.FailedTests+metrics.SkippedTests)
		assert.InDelta(t, 1.0, metrics.AvgDuration, 0.0001)
		assert.InDelta(t, 50.0, metrics.PassRate, 0.0001)
	})

	t.Run("single passed test matches the flattened record", func(t *testing.T) {
		metrics := Aggregate([]models.TestExecution{
			{Status: models.StatusPassed, DurationSeconds: 1.5},
		})
		assert.Equal(t, 1, metrics.TotalTests)
		assert.Equal(t, 1, metrics.PassedTests)
		assert.Equal(t, 0, metrics.FailedTests)
		assert.Equal(t, 0, metrics.SkippedTests)
		assert.InDelta(t, 1.5, metrics.AvgDuration, 0.0001)
		assert.InDelta(t, 100.0, metrics.PassRate, 0.0001)
	})
}
