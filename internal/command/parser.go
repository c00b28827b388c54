package command

import (
	"strings"

	"github.com/amirbrooks/tasker-assistant/internal/store"
)

type Intent int

const (
	IntentHelp Intent = iota
	IntentCreate
	IntentList
	IntentUpdate
	IntentToggle
	IntentDelete
)

func (i Intent) String() string {
	switch i {
	case IntentCreate:
		return "create"
	case IntentList:
		return "list"
	case IntentUpdate:
		return "update"
	case IntentToggle:
		return "toggle"
	case IntentDelete:
		return "delete"
	default:
		return "help"
	}
}

// Command is a parsed chat command. Payload keeps the user's original casing.
type Command struct {
	Intent  Intent
	Kind    store.Kind
	Payload string
}

type rule struct {
	intent Intent
	kind   store.Kind
	prefix string
}

// rules are tried in order; the first prefix that matches wins.
var rules = buildRules()

func buildRules() []rule {
	var out []rule
	add := func(intent Intent, format string, kinds ...store.Kind) {
		for _, k := range kinds {
			out = append(out, rule{intent: intent, kind: k, prefix: strings.ReplaceAll(format, "<type>", string(k))})
		}
	}
	add(IntentCreate, "create <type>", store.Kinds...)
	add(IntentList, "list <type>s", store.Kinds...)
	add(IntentUpdate, "update <type>", store.Kinds...)
	add(IntentToggle, "toggle <type> complete", store.KindTask)
	add(IntentDelete, "delete <type>", store.Kinds...)
	return out
}

// Parse maps raw chat input to a command by case-insensitive prefix. Anything
// unrecognized becomes IntentHelp.
func Parse(raw string) Command {
	text := strings.TrimSpace(raw)
	for _, r := range rules {
		if len(text) < len(r.prefix) || !strings.EqualFold(text[:len(r.prefix)], r.prefix) {
			continue
		}
		return Command{
			Intent:  r.intent,
			Kind:    r.kind,
			Payload: strings.TrimSpace(text[len(r.prefix):]),
		}
	}
	return Command{Intent: IntentHelp}
}
