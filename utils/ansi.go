package utils

import "regexp"

// Playwright failure messages arrive with terminal color escapes; some
// reporters also leave bare "[31m"-style fragments behind when the ESC
// byte was already stripped upstream.
var (
	ansiEscapePattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	bareCodePattern   = regexp.MustCompile(`\[\[?[0-9;]*m`)
)

// StripAnsi removes terminal color escape sequences from text so failure
// messages render cleanly in the dashboard.
func StripAnsi(text string) string {
	text = ansiEscapePattern.ReplaceAllString(text, "")
	return bareCodePattern.ReplaceAllString(text, "")
}
