package chat

import (
	"regexp"
	"strings"
)

// Leading triggers are stripped before the rest of the input is interpreted.
var leadingTriggers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*/agent(ic)?\b`),
	regexp.MustCompile(`(?i)^\s*/ai\b`),
	regexp.MustCompile(`(?i)^\s*@agent\b`),
	regexp.MustCompile(`(?i)^\s*@ai\b`),
}

var inlineTriggers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bactivate agent(ic)?\b`),
	regexp.MustCompile(`(?i)\bstart agent(ic)?\b`),
}

// IsAgenticTrigger reports whether input asks for command execution even in chat mode.
func IsAgenticTrigger(input string) bool {
	for _, re := range leadingTriggers {
		if re.MatchString(input) {
			return true
		}
	}
	for _, re := range inlineTriggers {
		if re.MatchString(input) {
			return true
		}
	}
	return false
}

// stripTrigger removes the trigger phrase so the interpreter sees only the command.
func stripTrigger(input string) string {
	for _, re := range leadingTriggers {
		if loc := re.FindStringIndex(input); loc != nil {
			return strings.TrimSpace(input[loc[1]:])
		}
	}
	for _, re := range inlineTriggers {
		if loc := re.FindStringIndex(input); loc != nil {
			return strings.Join(strings.Fields(input[:loc[0]]+" "+input[loc[1]:]), " ")
		}
	}
	return strings.TrimSpace(input)
}
