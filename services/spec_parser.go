package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/testpulse/testpulse/models"
)

// The spec-file parser is a line-oriented pattern scanner, deliberately
// not a language parser. It recognizes just enough of the Playwright
// test DSL to lift out suite declarations, test titles with tags, and
// annotated steps. Keep all of the pattern knowledge behind ParseTestCases
// so a language-aware parser can replace it without touching callers.
var (
	describePattern     = regexp.MustCompile(`test\.describe(?:\.only)?\(['"](.*?)['"],`)
	inlineTestPattern   = regexp.MustCompile(`test\(['"](.*?)['"],\s*\{.*?tag:\s*\[(.*?)\]`)
	openTestPattern     = regexp.MustCompile(`test\(['"](.*?)['"],\s*\{`)
	tagListPattern      = regexp.MustCompile(`tag:\s*\[(.*?)\]`)
	stepPattern         = regexp.MustCompile(`await test\.step\(['"](.+?)['"],\s*async`)
	purposePattern      = regexp.MustCompile(`.*Purpose:\s*`)
	businessPattern     = regexp.MustCompile(`.*//\s*Business Reason:\s*`)
	fieldPattern        = regexp.MustCompile(`['"]Input\.(.*?)['"]`)
	outcomePattern      = regexp.MustCompile(`['"]Field (.*?)['"]`)
	validatePrefix      = regexp.MustCompile(`(?i)^Validate\s+`)
	forClausePattern    = regexp.MustCompile(`(?i)\s+for\s+.*$`)
	titleWordSeparators = regexp.MustCompile(`[\s-]+`)
)

// Lookahead and lookback windows, in lines.
const (
	purposeLookback   = 10
	tagLookahead      = 3
	stepLookahead     = 20
	shortIDHashDigits = 3
)

// ParseTestCases extracts test-case metadata from one spec source file.
// It returns nil when the file contains no recognizable suite
// declaration.
func ParseTestCases(content, filePath string) *models.TestSuite {
	lines := strings.Split(content, "\n")

	normalizedPath := strings.ReplaceAll(filePath, `\`, "/")
	feature := featureFromPath(normalizedPath)

	var suite *models.TestSuite
	var current *models.TestCase
	stepNumber := 0
	insideTest := false

	flushTest := func() {
		if current != nil && suite != nil {
			suite.TestCases = append(suite.TestCases, *current)
		}
		current = nil
	}

	for i, line := range lines {
		if m := describePattern.FindStringSubmatch(line); m != nil {
			suite = &models.TestSuite{
				Name:        m[1],
				Description: purposeAbove(lines, i),
				FilePath:    normalizedPath,
				TestCases:   []models.TestCase{},
			}
		}

		if title, tags, ok := matchTestDeclaration(lines, i); ok {
			flushTest()
			current = &models.TestCase{
				ID:       generateTestCaseID(title),
				Title:    title,
				Feature:  feature,
				Tags:     tags,
				FilePath: normalizedPath,
				Steps:    []models.TestStep{},
			}
			stepNumber = 0
			insideTest = true
		}

		if insideTest && strings.Contains(line, "await test.step(") {
			if m := stepPattern.FindStringSubmatch(line); m != nil && current != nil {
				stepNumber++
				step := models.TestStep{
					StepNumber:  stepNumber,
					Description: m[1],
				}
				scanStepAnnotations(lines, i, &step)
				current.Steps = append(current.Steps, step)
			}
		}
	}
	flushTest()

	return suite
}

// featureFromPath derives the feature name from the path segment directly
// under the first "tests" segment.
func featureFromPath(normalizedPath string) string {
	parts := strings.Split(normalizedPath, "/")
	for i, part := range parts {
		if part == "tests" {
			if i+1 < len(parts) {
				return parts[i+1]
			}
			break
		}
	}
	return "general"
}

// purposeAbove scans up to purposeLookback lines above a suite declaration
// for a documentation comment carrying a Purpose: line.
func purposeAbove(lines []string, declIndex int) string {
	for j := declIndex - 1; j >= 0 && j >= declIndex-purposeLookback; j-- {
		if strings.Contains(lines[j], "Purpose:") {
			description := purposePattern.ReplaceAllString(lines[j], "")
			description = strings.TrimSuffix(strings.TrimSpace(description), "*/")
			return strings.TrimSpace(description)
		}
	}
	return ""
}

// matchTestDeclaration recognizes a test declaration on line i, accepting
// either an inline tag list or one spread across the next few lines.
func matchTestDeclaration(lines []string, i int) (title string, tags []string, ok bool) {
	line := lines[i]

	if m := inlineTestPattern.FindStringSubmatch(line); m != nil {
		return m[1], splitTags(m[2]), true
	}

	m := openTestPattern.FindStringSubmatch(line)
	if m == nil {
		return "", nil, false
	}
	title = m[1]
	for j := i + 1; j < len(lines) && j <= i+tagLookahead; j++ {
		if tm := tagListPattern.FindStringSubmatch(lines[j]); tm != nil {
			tags = splitTags(tm[1])
			break
		}
		if strings.Contains(lines[j], "async") {
			break
		}
	}
	return title, tags, true
}

func splitTags(list string) []string {
	raw := strings.Split(list, ",")
	tags := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		t = strings.Trim(t, `'"`)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// scanStepAnnotations looks ahead of a step declaration for a business
// reason comment or a contract-verification call carrying a field name and
// expected outcome. Scanning stops at the next step declaration.
func scanStepAnnotations(lines []string, stepIndex int, step *models.TestStep) {
	for j := stepIndex + 1; j < len(lines) && j < stepIndex+stepLookahead; j++ {
		line := lines[j]

		if strings.Contains(line, "// Business Reason:") {
			step.BusinessReason = strings.TrimSpace(businessPattern.ReplaceAllString(line, ""))
		}

		if strings.Contains(line, "ContractTests.verify") {
			if fm := fieldPattern.FindStringSubmatch(line); fm != nil {
				step.Field = fm[1]
			}
			if om := outcomePattern.FindStringSubmatch(line); om != nil {
				step.ExpectedOutcome = om[1]
			}
		}

		if strings.Contains(line, "await test.step(") {
			break
		}
	}
}

// generateTestCaseID derives a short display identifier from a title: the
// initials of its leading significant words plus the first digits of a
// rolling hash over the untrimmed title. Collisions are possible, so the
// ID is never used as an identity key.
func generateTestCaseID(title string) string {
	cleaned := validatePrefix.ReplaceAllString(title, "")
	cleaned = forClausePattern.ReplaceAllString(cleaned, "")

	var initials strings.Builder
	count := 0
	for _, word := range titleWordSeparators.Split(cleaned, -1) {
		if len(word) <= 3 || count >= 3 {
			continue
		}
		runes := []rune(word)
		initials.WriteString(strings.ToUpper(string(runes[0])))
		count++
	}

	hash := hashCode(title)
	if hash < 0 {
		hash = -hash
	}
	digits := fmt.Sprintf("%d", hash)
	if len(digits) > shortIDHashDigits {
		digits = digits[:shortIDHashDigits]
	}

	return initials.String() + "-" + digits
}

// hashCode is a 32-bit rolling hash over the title's code points.
func hashCode(s string) int64 {
	var hash int32
	for _, r := range s {
		hash = (hash << 5) - hash + int32(r)
	}
	return int64(hash)
}
