package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var dateParamPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ValidateDateParam checks that a date query parameter uses the calendar
// form the result files are keyed by.
func ValidateDateParam(date string) error {
	if !dateParamPattern.MatchString(date) {
		return fmt.Errorf("date must use the format YYYY-MM-DD, got %q", date)
	}
	return nil
}

// SplitTestID splits a "file.spec.ts::Test Name" identifier into its file
// and test-name parts.
func SplitTestID(testID string) (fileName, testName string, err error) {
	parts := strings.SplitN(testID, "::", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("testId must use the format <file>::<test name>, got %q", testID)
	}
	return parts[0], parts[1], nil
}
