package services

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sort"

	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
	"golang.org/x/sync/errgroup"
)

// ErrNoTestsDir is returned when the spec source tree does not exist.
var ErrNoTestsDir = errors.New("tests directory not found")

// TestCaseService parses spec source files into structured test-case
// narratives and annotates them with the latest run's outcomes. Suites are
// regenerated fresh on every request; nothing is persisted.
type TestCaseService struct {
	cfg   *config.Config
	store store.Store
	log   *utils.Logger
}

// NewTestCaseService creates a new test-case service instance.
func NewTestCaseService(cfg *config.Config, st store.Store, log *utils.Logger) *TestCaseService {
	return &TestCaseService{cfg: cfg, store: st, log: log}
}

// List parses every spec file under the tests tree. Files that fail to
// read or parse are logged and skipped without affecting the rest of the
// batch.
func (s *TestCaseService) List() (*models.TestCaseReport, error) {
	specFiles, err := s.store.Glob(s.cfg.TestsDir, "**/*.spec.ts")
	if err != nil {
		return nil, err
	}
	if len(specFiles) == 0 {
		if _, statErr := s.store.Stat(s.cfg.TestsDir); statErr != nil {
			return nil, ErrNoTestsDir
		}
	}
	sort.Strings(specFiles)

	latest := s.loadLatestRun()

	suites := make([]*models.TestSuite, len(specFiles))

	g := new(errgroup.Group)
	g.SetLimit(maxParallelReads)
	for i, path := range specFiles {
		i, path := i, path
		g.Go(func() error {
			content, err := s.store.Read(path)
			if err != nil {
				s.log.WithSource("test_cases").Warn("Failed to read spec file", map[string]interface{}{
					"file":  path,
					"error": err.Error(),
				})
				return nil
			}
			suite := ParseTestCases(string(content), s.displayPath(path))
			if suite == nil || len(suite.TestCases) == 0 {
				return nil
			}
			suites[i] = suite
			return nil
		})
	}
	_ = g.Wait()

	report := &models.TestCaseReport{Suites: []models.TestSuite{}}
	for _, suite := range suites {
		if suite == nil {
			continue
		}
		if latest != nil {
			s.annotateStatuses(suite, latest)
		}
		report.Suites = append(report.Suites, *suite)
		report.TotalTests += len(suite.TestCases)
	}
	report.TotalSuites = len(report.Suites)
	return report, nil
}

// displayPath renders a spec file path relative to the directory holding
// the tests tree, keeping the "tests" segment the feature derivation
// depends on.
func (s *TestCaseService) displayPath(fullPath string) string {
	base := filepath.Dir(filepath.Clean(s.cfg.TestsDir))
	rel, err := filepath.Rel(base, fullPath)
	if err != nil {
		return fullPath
	}
	return filepath.ToSlash(rel)
}

// loadLatestRun parses the newest dated live results file, or nil when
// none exists.
func (s *TestCaseService) loadLatestRun() *models.RunResult {
	path := newestDatedFile(s.store, s.cfg.ResultsDir)
	if path == "" {
		return nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return nil
	}
	var run models.RunResult
	if err := json.Unmarshal(data, &run); err != nil {
		s.log.WithSource("test_cases").Warn("Failed to parse latest results file", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
		return nil
	}
	return &run
}

// annotateStatuses joins parsed test cases with the latest run's outcomes.
// Matching keys on the spec title; the short content-derived ID is
// display-only and can collide.
func (s *TestCaseService) annotateStatuses(suite *models.TestSuite, run *models.RunResult) {
	for i := range suite.TestCases {
		status, message, found := findSpecOutcome(run.Suites, suite.TestCases[i].Title)
		if !found {
			continue
		}
		suite.TestCases[i].Status = status
		suite.TestCases[i].ErrorMessage = message
	}
}

// findSpecOutcome locates a spec by title anywhere in the suite tree and
// returns its normalized first-result status plus an ANSI-stripped failure
// message.
func findSpecOutcome(suites []models.Suite, title string) (status, errorMessage string, found bool) {
	for i := range suites {
		for _, spec := range suites[i].Specs {
			if spec.Title != title || len(spec.Tests) == 0 || len(spec.Tests[0].Results) == 0 {
				continue
			}
			result := spec.Tests[0].Results[0]
			status = models.NormalizeStatus(result.Status)
			if status == models.StatusFailed && result.Error != nil {
				errorMessage = utils.StripAnsi(result.Error.Message)
			}
			return status, errorMessage, true
		}
		if status, errorMessage, found = findSpecOutcome(suites[i].Suites, title); found {
			return status, errorMessage, true
		}
	}
	return "", "", false
}
