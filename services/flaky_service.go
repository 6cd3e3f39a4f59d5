package services

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"time"

	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
)

// flakyWindowDays is the size of the rolling detection window.
const flakyWindowDays = 3

// insufficientDataMessage is returned when the window has too few runs.
const insufficientDataMessage = "Not enough test result files found (need at least 2 days)"

// testKey is the cross-run identity of a test. Flattened execution IDs are
// positional and never comparable across files, so identity is always this
// triple.
type testKey struct {
	project string
	title   string
	file    string
}

// statusRecord is one observed execution of a test on one date.
type statusRecord struct {
	key       testKey
	status    string
	startTime string
}

// FlakyService flags tests whose status disagreed across the last three
// calendar days of archived runs.
type FlakyService struct {
	cfg   *config.Config
	store store.Store
	log   *utils.Logger

	// now is injectable so tests can pin the window.
	now func() time.Time
}

// NewFlakyService creates a new flaky-test detection service.
func NewFlakyService(cfg *config.Config, st store.Store, log *utils.Logger) *FlakyService {
	return &FlakyService{cfg: cfg, store: st, log: log, now: time.Now}
}

// Detect analyzes the archived runs of today, yesterday and the day
// before. A test is flaky when at least two distinct statuses were
// observed across the dates it appeared on; a test seen on a single date
// cannot be flaky. Fewer than two dated files in the window yields an
// informational report, not an error.
func (s *FlakyService) Detect() *models.FlakyReport {
	dates := s.windowDates()

	type datedRun struct {
		date    string
		records []statusRecord
	}
	var available []datedRun
	for _, date := range dates {
		path := filepath.Join(s.cfg.ArchiveDir, "results-"+date+".json")
		data, err := s.store.Read(path)
		if err != nil {
			continue
		}
		var run models.RunResult
		if err := json.Unmarshal(data, &run); err != nil {
			s.log.WithSource("flaky").Warn("Failed to parse archived results file", map[string]interface{}{
				"file":  path,
				"error": err.Error(),
			})
			continue
		}
		available = append(available, datedRun{date: date, records: collectStatusRecords(run.Suites)})
	}

	if len(available) < 2 {
		return &models.FlakyReport{
			FlakyTests: []models.FlakyTest{},
			Message:    insufficientDataMessage,
		}
	}

	// testKey -> date -> observed status
	observed := make(map[testKey]map[string]models.FlakyStatus)
	for _, run := range available {
		for _, rec := range run.records {
			byDate := observed[rec.key]
			if byDate == nil {
				byDate = make(map[string]models.FlakyStatus)
				observed[rec.key] = byDate
			}
			byDate[run.date] = models.FlakyStatus{
				Date:   formatFlakyDate(rec.startTime, run.date),
				Status: rec.status,
				Time:   formatFlakyTime(rec.startTime),
			}
		}
	}

	flaky := make([]models.FlakyTest, 0)
	for key, byDate := range observed {
		statuses := make([]models.FlakyStatus, 0, len(byDate))
		distinct := make(map[string]bool)
		// Newest first.
		for i := len(dates) - 1; i >= 0; i-- {
			if st, ok := byDate[dates[i]]; ok {
				statuses = append(statuses, st)
				distinct[st.Status] = true
			}
		}
		if len(distinct) < 2 {
			continue
		}
		flaky = append(flaky, models.FlakyTest{
			TestName:    key.title,
			ProjectName: key.project,
			FilePath:    key.file,
			Statuses:    statuses,
		})
	}
	sort.Slice(flaky, func(i, j int) bool { return flaky[i].TestName < flaky[j].TestName })

	analyzed := make([]string, 0, len(available))
	for _, run := range available {
		analyzed = append(analyzed, run.date)
	}

	return &models.FlakyReport{
		FlakyTests:         flaky,
		DatesAnalyzed:      analyzed,
		TotalTestsAnalyzed: len(observed),
	}
}

// windowDates returns the three target dates, oldest first.
func (s *FlakyService) windowDates() []string {
	today := s.now()
	dates := make([]string, 0, flakyWindowDays)
	for offset := flakyWindowDays - 1; offset >= 0; offset-- {
		dates = append(dates, today.AddDate(0, 0, -offset).Format("2006-01-02"))
	}
	return dates
}

// collectStatusRecords walks a suite tree and records one normalized
// status per (project, title, file) execution. Tests that never ran carry
// no signal for flakiness and are left out.
func collectStatusRecords(suites []models.Suite) []statusRecord {
	var records []statusRecord
	var walk func(suite *models.Suite, inheritedFile string)
	walk = func(suite *models.Suite, inheritedFile string) {
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
				if len(test.Results) == 0 {
					continue
				}
				records = append(records, statusRecord{
					key:       testKey{project: test.ProjectName, title: spec.Title, file: specFile},
					status:    models.NormalizeStatus(test.Results[0].Status),
					startTime: test.Results[0].StartTime,
				})
			}
		}
		for i := range suite.Suites {
			walk(&suite.Suites[i], file)
		}
	}
	for i := range suites {
		walk(&suites[i], "")
	}
	return records
}

func formatFlakyDate(startTime, fallback string) string {
	if ts, err := time.Parse(time.RFC3339, startTime); err == nil {
		return ts.Format("01/02/2006")
	}
	return fallback
}

func formatFlakyTime(startTime string) string {
	if ts, err := time.Parse(time.RFC3339, startTime); err == nil {
		return ts.Format("03:04:05 PM")
	}
	return ""
}
