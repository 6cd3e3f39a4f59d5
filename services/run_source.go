package services

import (
	"encoding/json"
	"regexp"
	"sort"

	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
	"golang.org/x/sync/errgroup"
)

// resultFilePattern matches dated result files and captures the date.
var resultFilePattern = regexp.MustCompile(`^results-(\d{4}-\d{2}-\d{2})\.json$`)

// maxParallelReads bounds concurrent result-file parsing.
const maxParallelReads = 8

// runFile is one result file with its resolved calendar date.
type runFile struct {
	path string
	name string
	date string
	live bool
}

// runSource loads result files from the live and archive directories and
// applies the precedence rule every date-keyed view shares: for any date
// the live directory covers, archived data for that date is ignored
// wholesale, while multiple live files on the same date all contribute.
type runSource struct {
	store      store.Store
	log        *utils.Logger
	resultsDir string
	archiveDir string
}

func newRunSource(st store.Store, log *utils.Logger, resultsDir, archiveDir string) *runSource {
	return &runSource{store: st, log: log, resultsDir: resultsDir, archiveDir: archiveDir}
}

// collectRunFiles lists the result files in one directory. The date comes
// from the results-YYYY-MM-DD.json name, falling back to the file's
// last-modified day for undated names such as results.json. A missing
// directory yields no files.
func (rs *runSource) collectRunFiles(dir string, live bool) []runFile {
	infos, err := rs.store.List(dir)
	if err != nil {
		rs.log.WithSource("run_source").Warn("Failed to list results directory", map[string]interface{}{
			"dir":   dir,
			"error": err.Error(),
		})
		return nil
	}

	var files []runFile
	for _, info := range infos {
		if !isResultFileName(info.Name) {
			continue
		}
		date := ""
		if m := resultFilePattern.FindStringSubmatch(info.Name); m != nil {
			date = m[1]
		} else {
			date = info.ModTime.Format("2006-01-02")
		}
		files = append(files, runFile{path: info.Path, name: info.Name, date: date, live: live})
	}
	return files
}

// parseRuns reads and decodes a batch of result files concurrently. Files
// that cannot be read or decoded come back nil; one corrupt file never
// blocks its siblings.
func (rs *runSource) parseRuns(files []runFile) []*models.RunResult {
	runs := make([]*models.RunResult, len(files))

	g := new(errgroup.Group)
	g.SetLimit(maxParallelReads)
	for i := range files {
		i := i
		g.Go(func() error {
			data, err := rs.store.Read(files[i].path)
			if err != nil {
				rs.log.WithSource("run_source").Warn("Failed to read results file", map[string]interface{}{
					"file":  files[i].path,
					"error": err.Error(),
				})
				return nil
			}
			var run models.RunResult
			if err := json.Unmarshal(data, &run); err != nil {
				rs.log.WithSource("run_source").Warn("Failed to parse results file", map[string]interface{}{
					"file":  files[i].path,
					"error": err.Error(),
				})
				return nil
			}
			runs[i] = &run
			return nil
		})
	}
	// Workers swallow their own failures, so Wait cannot fail.
	_ = g.Wait()

	return runs
}

// forEachDatedRun invokes visit once per parseable result file, live files
// first. Archive files whose date already appeared in the live directory
// are skipped entirely. Visitation is serialized; only parsing fans out.
func (rs *runSource) forEachDatedRun(visit func(date string, live bool, run *models.RunResult)) {
	liveFiles := rs.collectRunFiles(rs.resultsDir, true)
	archiveFiles := rs.collectRunFiles(rs.archiveDir, false)

	liveRuns := rs.parseRuns(liveFiles)
	archiveRuns := rs.parseRuns(archiveFiles)

	liveDates := make(map[string]bool)
	for i, rf := range liveFiles {
		if liveRuns[i] == nil {
			continue
		}
		visit(rf.date, true, liveRuns[i])
		liveDates[rf.date] = true
	}

	for i, rf := range archiveFiles {
		if archiveRuns[i] == nil || liveDates[rf.date] {
			continue
		}
		visit(rf.date, false, archiveRuns[i])
	}
}

// datedFileDates returns the distinct dates carried in result file names
// across both directories, newest first.
func (rs *runSource) datedFileDates() []string {
	seen := make(map[string]bool)
	for _, dir := range []string{rs.resultsDir, rs.archiveDir} {
		infos, err := rs.store.List(dir)
		if err != nil {
			continue
		}
		for _, info := range infos {
			if m := resultFilePattern.FindStringSubmatch(info.Name); m != nil {
				seen[m[1]] = true
			}
		}
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// isResultFileName reports whether a directory entry looks like a
// Playwright results file.
func isResultFileName(name string) bool {
	if len(name) < len("results.json") {
		return false
	}
	return name[:len("results")] == "results" && name[len(name)-len(".json"):] == ".json"
}
