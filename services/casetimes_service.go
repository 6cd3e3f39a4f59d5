package services

import (
	"sort"

	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
)

// CaseTimesService exposes per-test execution timing across dated runs.
type CaseTimesService struct {
	cfg    *config.Config
	log    *utils.Logger
	source *runSource
}

// NewCaseTimesService creates a new case-times service instance.
func NewCaseTimesService(cfg *config.Config, st store.Store, log *utils.Logger) *CaseTimesService {
	return &CaseTimesService{
		cfg:    cfg,
		log:    log,
		source: newRunSource(st, log, cfg.ResultsDir, cfg.ArchiveDir),
	}
}

// Files returns the distinct spec files and test names observed anywhere
// in the dated runs, sorted by file name.
func (s *CaseTimesService) Files() []models.TestFileGroup {
	// fileName -> testID -> testName
	byFile := make(map[string]map[string]string)

	s.source.forEachDatedRun(func(date string, live bool, run *models.RunResult) {
		for i := range run.Suites {
			top := &run.Suites[i]
			fileName := top.File
			if fileName == "" {
				fileName = top.Title
			}
			if fileName == "" {
				fileName = "unknown.spec.ts"
			}
			tests := byFile[fileName]
			if tests == nil {
				tests = make(map[string]string)
				byFile[fileName] = tests
			}
			collectSpecTitles(top, fileName, tests)
		}
	})

	groups := make([]models.TestFileGroup, 0, len(byFile))
	for fileName, tests := range byFile {
		if len(tests) == 0 {
			continue
		}
		group := models.TestFileGroup{FileName: fileName, Tests: make([]models.TestRef, 0, len(tests))}
		for id, name := range tests {
			group.Tests = append(group.Tests, models.TestRef{TestID: id, TestName: name})
		}
		sort.Slice(group.Tests, func(i, j int) bool { return group.Tests[i].TestName < group.Tests[j].TestName })
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].FileName < groups[j].FileName })
	return groups
}

// collectSpecTitles gathers every spec title under one top-level suite.
func collectSpecTitles(suite *models.Suite, fileName string, tests map[string]string) {
	for _, spec := range suite.Specs {
		tests[fileName+"::"+spec.Title] = spec.Title
	}
	for i := range suite.Suites {
		collectSpecTitles(&suite.Suites[i], fileName, tests)
	}
}

// History returns the dated executions of one test, date ascending. The
// test is addressed by file name and spec title since flattened ids are
// not stable across runs.
func (s *CaseTimesService) History(fileName, testName string) *models.TestHistory {
	history := &models.TestHistory{
		TestID:     fileName + "::" + testName,
		TestName:   testName,
		FilePath:   fileName,
		Executions: []models.TestExecutionPoint{},
	}

	s.source.forEachDatedRun(func(date string, live bool, run *models.RunResult) {
		for i := range run.Suites {
			if point, ok := findExecutionPoint(&run.Suites[i], fileName, testName, date); ok {
				history.Executions = append(history.Executions, point)
				return
			}
		}
	})

	sort.Slice(history.Executions, func(i, j int) bool {
		return history.Executions[i].Date < history.Executions[j].Date
	})
	return history
}

// findExecutionPoint locates one test's first result inside a suite tree,
// matching the suite by file or title.
func findExecutionPoint(suite *models.Suite, fileName, testName, date string) (models.TestExecutionPoint, bool) {
	if suite.File == fileName || suite.Title == fileName {
		for _, spec := range suite.Specs {
			if spec.Title != testName || len(spec.Tests) == 0 || len(spec.Tests[0].Results) == 0 {
				continue
			}
			result := spec.Tests[0].Results[0]
			return models.TestExecutionPoint{
				Date:            date,
				DurationSeconds: roundSeconds(result.Duration / 1000),
				Status:          models.NormalizeStatus(result.Status),
			}, true
		}
	}
	for i := range suite.Suites {
		if point, ok := findExecutionPoint(&suite.Suites[i], fileName, testName, date); ok {
			return point, true
		}
	}
	return models.TestExecutionPoint{}, false
}
