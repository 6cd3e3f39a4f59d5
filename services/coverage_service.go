package services

import (
	"encoding/json"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
	"golang.org/x/sync/errgroup"
)

// Coverage scanning is pattern-based like the rest of the spec-file
// analysis. Test calls are counted without matching member calls such as
// test.describe( or test.step(.
var (
	testCallPattern    = regexp.MustCompile(`(?m)(?:^|[^.\w])test\s*\(`)
	testOnlyPattern    = regexp.MustCompile(`(?m)(?:^|[^.\w])test\.only\s*\(`)
	stepCallPattern    = regexp.MustCompile(`test\.step\s*\(`)
	requirementPattern = regexp.MustCompile(`REQ-[A-Z]+-[A-Z]+-[A-Z]+-\d+`)
)

// CoverageService derives per-spec-file requirement coverage from
// extracted requirement tags matched against the mapping table. The
// mapping file is loaded once per request and never cached.
type CoverageService struct {
	cfg   *config.Config
	store store.Store
	log   *utils.Logger
}

// NewCoverageService creates a new coverage service instance.
func NewCoverageService(cfg *config.Config, st store.Store, log *utils.Logger) *CoverageService {
	return &CoverageService{cfg: cfg, store: st, log: log}
}

// Files analyzes every spec file under the tests tree and returns its
// coverage records together with the raw mapping table.
func (s *CoverageService) Files() (*models.CoverageReport, error) {
	if _, err := s.store.Stat(s.cfg.TestsDir); err != nil {
		return nil, ErrNoTestsDir
	}

	specFiles, err := s.store.Glob(s.cfg.TestsDir, "**/*.spec.ts")
	if err != nil {
		return nil, err
	}
	sort.Strings(specFiles)

	mapping := s.loadMapping()

	records := make([]*models.SpecFileCoverage, len(specFiles))
	g := new(errgroup.Group)
	g.SetLimit(maxParallelReads)
	for i, path := range specFiles {
		i, path := i, path
		g.Go(func() error {
			records[i] = s.analyzeSpecFile(path, mapping)
			return nil
		})
	}
	_ = g.Wait()

	report := &models.CoverageReport{
		Files:             []models.SpecFileCoverage{},
		TotalRequirements: len(mapping),
		Mapping:           mapping,
	}
	for _, record := range records {
		if record == nil {
			continue
		}
		report.Files = append(report.Files, *record)
		report.TotalTests += record.TestCount
		report.TotalSteps += record.StepCount
	}
	sort.Slice(report.Files, func(i, j int) bool {
		return report.Files[i].RelativePath < report.Files[j].RelativePath
	})
	report.Count = len(report.Files)
	return report, nil
}

// loadMapping reads the requirement mapping table; a missing or malformed
// file degrades to an empty table rather than failing the request.
func (s *CoverageService) loadMapping() map[string]string {
	data, err := s.store.Read(s.cfg.MappingFile)
	if err != nil {
		return map[string]string{}
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		s.log.WithSource("coverage").Warn("Failed to parse mapping file", map[string]interface{}{
			"file":  s.cfg.MappingFile,
			"error": err.Error(),
		})
		return map[string]string{}
	}
	return mapping
}

func (s *CoverageService) analyzeSpecFile(path string, mapping map[string]string) *models.SpecFileCoverage {
	content, err := s.store.Read(path)
	if err != nil {
		s.log.WithSource("coverage").Warn("Failed to read spec file", map[string]interface{}{
			"file":  path,
			"error": err.Error(),
		})
		return nil
	}
	info, err := s.store.Stat(path)
	if err != nil {
		return nil
	}

	text := string(content)
	testCount := len(testCallPattern.FindAllString(text, -1)) +
		len(testOnlyPattern.FindAllString(text, -1))
	stepCount := len(stepCallPattern.FindAllString(text, -1))
	requirementIDs := distinctRequirementIDs(text)

	relativePath, err := filepath.Rel(s.cfg.TestsDir, path)
	if err != nil {
		relativePath = path
	}

	return &models.SpecFileCoverage{
		FileName:            info.Name,
		RelativePath:        filepath.ToSlash(relativePath),
		FilePath:            path,
		Size:                info.Size,
		Modified:            info.ModTime,
		TestCount:           testCount,
		StepCount:           stepCount,
		RequirementIDs:      requirementIDs,
		RequirementCoverage: requirementCoverage(requirementIDs, testCount, mapping),
	}
}

// distinctRequirementIDs extracts REQ-* identifiers, de-duplicated in
// first-seen order.
func distinctRequirementIDs(text string) []string {
	seen := make(map[string]bool)
	ids := []string{}
	for _, id := range requirementPattern.FindAllString(text, -1) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// requirementCoverage computes the ratio of a file's extracted ids against
// the mapping keys sharing any of their prefixes (the id minus its
// trailing number). A file with test cases but no matching mapping keys
// reports 100%: the fallback is part of the dashboard's contract even
// though it can mask stale or misspelled requirement tags, so consumers
// get the raw id list alongside the percentage.
func requirementCoverage(ids []string, testCount int, mapping map[string]string) float64 {
	prefixes := make(map[string]bool)
	for _, id := range ids {
		parts := strings.Split(id, "-")
		prefixes[strings.Join(parts[:len(parts)-1], "-")] = true
	}

	matching := 0
	for key := range mapping {
		for prefix := range prefixes {
			if strings.HasPrefix(key, prefix+"-") {
				matching++
				break
			}
		}
	}

	if matching > 0 {
		return float64(len(ids)) / float64(matching) * 100
	}
	if testCount > 0 {
		return 100
	}
	return 0
}
