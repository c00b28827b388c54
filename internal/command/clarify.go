package command

import (
	"fmt"
	"strings"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

// maxSuggestions caps the "Did you mean" lines appended to a clarification.
const maxSuggestions = 3

// clarify describes what a search term matched so the user can retry with a
// precise update command.
func clarify(l Lookup) string {
	kind := l.Kind
	switch len(l.Matches) {
	case 0:
		return fmt.Sprintf("No %s found containing \"%s\". Please check the spelling or try a different search term.",
			kind.Plural(), l.Term)
	case 1:
		text := l.Matches[0].PrimaryText()
		field := kind.PrimaryField()
		var b strings.Builder
		fmt.Fprintf(&b, "I found one %s matching \"%s\": \"%s\". What would you like to change?\n\n", kind, l.Term, text)
		b.WriteString("Options:\n")
		fmt.Fprintf(&b, "- New %s: \"update %s %s to [new %s]\"\n", field, kind, text, field)
		fmt.Fprintf(&b, "- Fix spelling: \"update %s %s to [corrected spelling]\"\n", kind, text)
		fmt.Fprintf(&b, "- Add details: \"update %s %s to [enhanced %s]\"", kind, text, field)
		return b.String()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d %s containing \"%s\":\n", len(l.Matches), kind.Plural(), l.Term)
		for _, e := range l.Matches {
			fmt.Fprintf(&b, "- \"%s\"\n", e.PrimaryText())
		}
		fmt.Fprintf(&b, "\nPlease be more specific about which %s you want to update. You can:\n", kind)
		fmt.Fprintf(&b, "- Use more of the %s %s\n", kind, kind.PrimaryField())
		fmt.Fprintf(&b, "- Use the exact %s %s", kind, kind.PrimaryField())
		return b.String()
	}
}

// withSuggestions appends spelling hints to an existing message. An item is
// suggested when its text contains the term or the term contains it.
func withSuggestions(msg string, l Lookup) string {
	if msg == "" {
		return msg
	}
	hints := suggestions(l)
	if len(hints) == 0 {
		return msg
	}
	return msg + "\n\nPossible spelling corrections:\n" + strings.Join(hints, "\n")
}

func suggestions(l Lookup) []string {
	term := normalize(l.Term)
	if term == "" {
		return nil
	}
	var out []string
	for _, e := range l.All {
		text := normalize(e.PrimaryText())
		if text == "" || text == term {
			continue
		}
		if strings.Contains(text, term) || strings.Contains(term, text) {
			out = append(out, fmt.Sprintf("Did you mean \"%s\"?", e.PrimaryText()))
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func notFoundMessage(kind store.Kind, term string) string {
	return fmt.Sprintf("%s containing \"%s\" not found.", kind.Title(), term)
}
