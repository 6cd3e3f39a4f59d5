package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/testpulse/testpulse/config"
	"github.com/testpulse/testpulse/models"
	"github.com/testpulse/testpulse/store"
	"github.com/testpulse/testpulse/utils"
)

// ErrNothingToArchive is returned when the live directory holds no dated
// result files.
var ErrNothingToArchive = errors.New("no results to archive")

// ArchiveService copies dated result files from the live directory into
// the archive. Same-named archive files are merged at the suites level so
// a later run on the same date adds to the day's record instead of
// replacing it.
type ArchiveService struct {
	cfg   *config.Config
	store store.Store
	log   *utils.Logger
}

// NewArchiveService creates a new archive service instance.
func NewArchiveService(cfg *config.Config, st store.Store, log *utils.Logger) *ArchiveService {
	return &ArchiveService{cfg: cfg, store: st, log: log}
}

// Archive copies or merges every dated live results file into the archive
// directory and reports which files were newly copied and which were
// merged. Re-archiving the same file is idempotent: merging de-duplicates
// suites by run identity instead of blindly concatenating them.
func (s *ArchiveService) Archive() (*models.ArchiveResult, error) {
	infos, err := s.store.List(s.cfg.ResultsDir)
	if err != nil {
		return nil, err
	}

	var dated []store.FileInfo
	for _, info := range infos {
		if resultFilePattern.MatchString(info.Name) {
			dated = append(dated, info)
		}
	}
	if len(dated) == 0 {
		return nil, ErrNothingToArchive
	}

	result := &models.ArchiveResult{Archived: []string{}, Merged: []string{}}
	for _, info := range dated {
		data, err := s.store.Read(info.Path)
		if err != nil {
			s.log.WithSource("archive").Warn("Failed to read live results file", map[string]interface{}{
				"file":  info.Path,
				"error": err.Error(),
			})
			continue
		}

		destPath := filepath.Join(s.cfg.ArchiveDir, info.Name)
		existing, err := s.store.Read(destPath)
		if err != nil {
			// New file, plain copy.
			if err := s.store.Write(destPath, data); err != nil {
				return nil, fmt.Errorf("archiving %s: %w", info.Name, err)
			}
			result.Archived = append(result.Archived, info.Name)
			continue
		}

		merged, err := mergeRunPayloads(existing, data)
		if err != nil {
			// Unmergeable archive content; fall back to overwriting with
			// the live copy.
			s.log.WithSource("archive").Warn("Failed to merge archived file, overwriting", map[string]interface{}{
				"file":  info.Name,
				"error": err.Error(),
			})
			if err := s.store.Write(destPath, data); err != nil {
				return nil, fmt.Errorf("archiving %s: %w", info.Name, err)
			}
			result.Archived = append(result.Archived, info.Name)
			continue
		}
		if err := s.store.Write(destPath, merged); err != nil {
			return nil, fmt.Errorf("archiving %s: %w", info.Name, err)
		}
		result.Merged = append(result.Merged, info.Name)
	}

	result.Count = len(result.Archived) + len(result.Merged)
	if len(result.Merged) > 0 {
		result.Message = fmt.Sprintf("Archived %d new file(s) and merged %d existing file(s)",
			len(result.Archived), len(result.Merged))
	} else {
		result.Message = fmt.Sprintf("Archived %d file(s)", len(result.Archived))
	}
	return result, nil
}

// mergeRunPayloads merges an incoming run file into an already-archived
// one. The incoming payload is the base so the latest config wins; suites
// are concatenated with de-duplication keyed by run identity, so a suite
// already present in the archive is not appended again.
func mergeRunPayloads(existing, incoming []byte) ([]byte, error) {
	var existingDoc, incomingDoc map[string]json.RawMessage
	if err := json.Unmarshal(existing, &existingDoc); err != nil {
		return nil, fmt.Errorf("parsing archived payload: %w", err)
	}
	if err := json.Unmarshal(incoming, &incomingDoc); err != nil {
		return nil, fmt.Errorf("parsing live payload: %w", err)
	}

	existingSuites := rawSuiteList(existingDoc["suites"])
	incomingSuites := rawSuiteList(incomingDoc["suites"])

	seen := make(map[string]bool)
	for _, raw := range existingSuites {
		if key, ok := suiteRunKey(raw); ok {
			seen[key] = true
		}
	}

	merged := existingSuites
	for _, raw := range incomingSuites {
		if key, ok := suiteRunKey(raw); ok && seen[key] {
			continue
		}
		merged = append(merged, raw)
	}

	mergedSuites, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	incomingDoc["suites"] = mergedSuites
	return json.MarshalIndent(incomingDoc, "", "  ")
}

// rawSuiteList splits a suites array into raw elements without decoding
// them, preserving reporter fields this service does not model.
func rawSuiteList(data json.RawMessage) []json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil
	}
	return elems
}

// suiteRunKey identifies one suite's run: its file, title and the start
// time of the first result found under it. Two archives of the same live
// file produce identical keys, while a genuinely new run of the same spec
// file on the same date carries a different start time and is kept.
func suiteRunKey(raw json.RawMessage) (string, bool) {
	var suite models.Suite
	if err := json.Unmarshal(raw, &suite); err != nil {
		return "", false
	}
	return suite.File + "|" + suite.Title + "|" + firstStartTime(&suite), true
}

// firstStartTime finds the start time of the first result in a suite
// subtree, or empty when the suite holds no executed tests.
func firstStartTime(suite *models.Suite) string {
	for _, spec := range suite.Specs {
		for _, test := range spec.Tests {
			if len(test.Results) > 0 && test.Results[0].StartTime != "" {
				return test.Results[0].StartTime
			}
		}
	}
	for i := range suite.Suites {
		if ts := firstStartTime(&suite.Suites[i]); ts != "" {
			return ts
		}
	}
	return ""
}
