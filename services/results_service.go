package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
)

// ErrNoResults is returned when no results file exists in any source.
var ErrNoResults = errors.New("no results file found")

// ResultsService reads Playwright result files and derives the aggregated
// views the dashboard renders. Everything is recomputed from the file
// store on every call; there is no cross-request state.
type ResultsService struct {
	cfg    *config.Config
	store  store.Store
	log    *utils.Logger
	source *runSource
}

// NewResultsService creates a new results service instance.
func NewResultsService(cfg *config.Config, st store.Store, log *utils.Logger) *ResultsService {
	return &ResultsService{
		cfg:    cfg,
		store:  st,
		log:    log,
		source: newRunSource(st, log, cfg.ResultsDir, cfg.ArchiveDir),
	}
}

// Latest loads one run and returns its metrics plus flattened executions.
// With an empty date it prefers results.json in the live directory, then
// the newest dated live file, then the newest dated archive file. With an
// explicit date it checks the archive first, matching how dated files age
// out of the live directory.
func (s *ResultsService) Latest(date string) (*models.RunReport, error) {
	path, err := s.resolveResultsPath(date)
	if err != nil {
		return nil, err
	}

	data, err := s.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file %s: %w", path, err)
	}
	var run models.RunResult
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing results file %s: %w", path, err)
	}

	execs := FlattenSuites(run.Suites)
	return &models.RunReport{
		Metrics:     Aggregate(execs),
		TestResults: execs,
		FileName:    filepath.Base(path),
	}, nil
}

func (s *ResultsService) resolveResultsPath(date string) (string, error) {
	if date != "" {
		for _, dir := range []string{s.cfg.ArchiveDir, s.cfg.ResultsDir} {
			path := filepath.Join(dir, "results-"+date+".json")
			if _, err := s.store.Stat(path); err == nil {
				return path, nil
			}
		}
		return "", ErrNoResults
	}

	undated := filepath.Join(s.cfg.ResultsDir, "results.json")
	if _, err := s.store.Stat(undated); err == nil {
		return undated, nil
	}

	for _, dir := range []string{s.cfg.ResultsDir, s.cfg.ArchiveDir} {
		if path := newestDatedFile(s.store, dir); path != "" {
			return path, nil
		}
	}
	return "", ErrNoResults
}

// newestDatedFile returns the dated results file with the newest date in
// one directory, or empty when none exists.
func newestDatedFile(st store.Store, dir string) string {
	infos, err := st.List(dir)
	if err != nil {
		return ""
	}
	var names []string
	paths := make(map[string]string)
	for _, info := range infos {
		if resultFilePattern.MatchString(info.Name) {
			names = append(names, info.Name)
			paths[info.Name] = info.Path
		}
	}
	if len(names) == 0 {
		return ""
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return paths[names[0]]
}

// AllResults parses every results file in the live directory and returns
// the raw trees.
func (s *ResultsService) AllResults() (*models.AllResultsReport, error) {
	files := s.source.collectRunFiles(s.cfg.ResultsDir, true)
	runs := s.source.parseRuns(files)

	report := &models.AllResultsReport{Files: []string{}, Results: []*models.RunResult{}}
	for i, rf := range files {
		if runs[i] == nil {
			continue
		}
		report.Files = append(report.Files, rf.name)
		report.Results = append(report.Results, runs[i])
	}
	return report, nil
}

// Dates returns every date carried in dated result file names across the
// live and archive directories, newest first.
func (s *ResultsService) Dates() []string {
	return s.source.datedFileDates()
}

// History returns one summarized entry per date, newest first. Live runs
// shadow archived runs for the same date; multiple live files on one date
// accumulate into a single entry.
func (s *ResultsService) History() []models.HistoryEntry {
	byDate := make(map[string][]models.TestExecution)
	s.source.forEachDatedRun(func(date string, live bool, run *models.RunResult) {
		byDate[date] = append(byDate[date], FlattenSuites(run.Suites)...)
	})

	entries := make([]models.HistoryEntry, 0, len(byDate))
	for date, execs := range byDate {
		entries = append(entries, models.HistoryEntry{
			Date:        date,
			Metrics:     Aggregate(execs),
			TestResults: execs,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date > entries[j].Date })
	return entries
}

// Trends returns date-keyed pass/fail counts sorted by date ascending.
// Skipped tests are excluded from the trend series.
func (s *ResultsService) Trends() []models.TrendPoint {
	counts := make(map[string]*models.TrendPoint)
	s.source.forEachDatedRun(func(date string, live bool, run *models.RunResult) {
		point := counts[date]
		if point == nil {
			point = &models.TrendPoint{Date: date}
			counts[date] = point
		}
		for _, e := range FlattenSuites(run.Suites) {
			switch e.Status {
			case models.StatusPassed:
				point.Passed++
			case models.StatusFailed:
				point.Failed++
			}
		}
	})

	trend := make([]models.TrendPoint, 0, len(counts))
	for _, point := range counts {
		trend = append(trend, *point)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })
	return trend
}

// SuiteDurations returns the date-keyed per-spec-file duration series plus
// the sorted set of suite names seen anywhere in it.
func (s *ResultsService) SuiteDurations() *models.SuiteDurationReport {
	byDate := make(map[string]map[string]models.SuiteInfo)
	names := make(map[string]bool)

	s.source.forEachDatedRun(func(date string, live bool, run *models.RunResult) {
		day := byDate[date]
		if day == nil {
			day = make(map[string]models.SuiteInfo)
			byDate[date] = day
		}
		for _, e := range FlattenSuites(run.Suites) {
			if e.File == "" {
				continue
			}
			suiteName := filepath.Base(e.File)
			names[suiteName] = true
			info := day[suiteName]
			info.DurationSeconds += e.DurationSeconds
			info.TestCount++
			day[suiteName] = info
		}
	})

	report := &models.SuiteDurationReport{
		ChartData:  make([]models.SuiteDurationPoint, 0, len(byDate)),
		SuiteNames: make([]string, 0, len(names)),
	}
	for date, suites := range byDate {
		report.ChartData = append(report.ChartData, models.SuiteDurationPoint{Date: date, Suites: suites})
	}
	sort.Slice(report.ChartData, func(i, j int) bool {
		return report.ChartData[i].Date < report.ChartData[j].Date
	})
	for name := range names {
		report.SuiteNames = append(report.SuiteNames, name)
	}
	sort.Strings(report.SuiteNames)
	report.TotalDates = len(report.ChartData)
	return report
}
