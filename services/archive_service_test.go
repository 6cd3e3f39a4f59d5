package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
)

func readArchivedRun(t *testing.T, cfg *config.Config, name string) models.RunResult {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.ArchiveDir, name))
	require.NoError(t, err)
	var run models.RunResult
	require.NoError(t, json.Unmarshal(data, &run))
	return run
}

func TestArchiveService(t *testing.T) {
	t.Run("new files are copied verbatim", func(t *testing.T) {
		cfg := newTestConfig(t)
		content := runJSON("a.spec.ts", "first", "passed", 100, "2024-01-01T09:00:00Z")
		writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json", content)
		writeFixture(t, cfg.ResultsDir, "results.json", content) // undated, never archived

		svc := NewArchiveService(cfg, store.NewDiskStore(), newTestLogger())
		result, err := svc.Archive()
		require.NoError(t, err)

		assert.Equal(t, []string{"results-2024-01-01.json"}, result.Archived)
		assert.Empty(t, result.Merged)
		assert.Equal(t, 1, result.Count)
		assert.Equal(t, "Archived 1 file(s)", result.Message)

		archived, err := os.ReadFile(filepath.Join(cfg.ArchiveDir, "results-2024-01-01.json"))
		require.NoError(t, err)
		assert.Equal(t, content, string(archived))
	})

	t.Run("empty live directory yields ErrNothingToArchive", func(t *testing.T) {
		cfg := newTestConfig(t)
		writeFixture(t, cfg.ResultsDir, "results.json",
			runJSON("a.spec.ts", "t", "passed", 100, "2024-01-01T09:00:00Z"))

		svc := NewArchiveService(cfg, store.NewDiskStore(), newTestLogger())
		_, err := svc.Archive()
		assert.ErrorIs(t, err, ErrNothingToArchive)
	})

	t.Run("re-archiving the same file is idempotent", func(t *testing.T) {
		cfg := newTestConfig(t)
		writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json",
			runJSON("a.spec.ts", "same run", "passed", 100, "2024-01-01T09:00:00Z"))

		svc := NewArchiveService(cfg, store.NewDiskStore(), newTestLogger())

		first, err := svc.Archive()
		require.NoError(t, err)
		assert.Equal(t, []string{"results-2024-01-01.json"}, first.Archived)

		second, err := svc.Archive()
		require.NoError(t, err)
		assert.Equal(t, []string{"results-2024-01-01.json"}, second.Merged)
		assert.Equal(t, "Archived 0 new file(s) and merged 1 existing file(s)", second.Message)

		run := readArchivedRun(t, cfg, "results-2024-01-01.json")
		assert.Len(t, run.Suites, 1)
	})

	t.Run("a new run on the same date is appended", func(t *testing.T) {
		cfg := newTestConfig(t)
		writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json",
			runJSON("a.spec.ts", "morning run", "passed", 100, "2024-01-01T09:00:00Z"))

		svc := NewArchiveService(cfg, store.NewDiskStore(), newTestLogger())
		_, err := svc.Archive()
		require.NoError(t, err)

		// Same file name, different run identity via the start time.
		writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json",
			runJSON("a.spec.ts", "morning run", "failed", 100, "2024-01-01T15:00:00Z"))

		result, err := svc.Archive()
		require.NoError(t, err)
		assert.Equal(t, []string{"results-2024-01-01.json"}, result.Merged)

		run := readArchivedRun(t, cfg, "results-2024-01-01.json")
		assert.Len(t, run.Suites, 2)
	})

	t.Run("unparseable archive content is overwritten", func(t *testing.T) {
		cfg := newTestConfig(t)
		content := runJSON("a.spec.ts", "fresh", "passed", 100, "2024-01-01T09:00:00Z")
		writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json", content)
		writeFixture(t, cfg.ArchiveDir, "results-2024-01-01.json", "corrupt {{{")

		svc := NewArchiveService(cfg, store.NewDiskStore(), newTestLogger())
		result, err := svc.Archive()
		require.NoError(t, err)

		assert.Equal(t, []string{"results-2024-01-01.json"}, result.Archived)
		assert.Empty(t, result.Merged)

		run := readArchivedRun(t, cfg, "results-2024-01-01.json")
		assert.Len(t, run.Suites, 1)
	})

	t.Run("merging preserves unmodeled reporter fields", func(t *testing.T) {
		cfg := newTestConfig(t)
		writeFixture(t, cfg.ArchiveDir, "results-2024-01-01.json", `{
			"config": {"workers": 2},
			"suites": [],
			"customReporterField": "kept only when incoming carries it"
		}`)
		writeFixture(t, cfg.ResultsDir, "results-2024-01-01.json", `{
			"config": {"workers": 8},
			"suites": [],
			"extra": {"nested": true}
		}`)

		svc := NewArchiveService(cfg, store.NewDiskStore(), newTestLogger())
		_, err := svc.Archive()
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(cfg.ArchiveDir, "results-2024-01-01.json"))
		require.NoError(t, err)

		var doc map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &doc))

		// The incoming payload is the base: latest config and extra fields win.
		assert.JSONEq(t, `{"workers": 8}`, string(doc["config"]))
		assert.JSONEq(t, `{"nested": true}`, string(doc["extra"]))
	})
}
