package transcript

import (
	"regexp"
	"strings"

	"github.com/moltbot/trustwatch/internal/model"
)

const (
	// scanWindow is how many trailing messages are examined for user intent.
	scanWindow = 20
	// contextWindow is how many trailing messages are echoed back to the caller.
	contextWindow = 10
	// minOverlap is how many terms a user message must share with the
	// candidate action for a request phrase to count.
	minOverlap = 2
)

// wordToken extracts command/content terms: word tokens of length >= 4.
// Matching runs over lowercased text, so tokens come out lowercase.
var wordToken = regexp.MustCompile(`\b\w{4,}\b`)

// requestPhrases are lead-ins that signal an explicit user request.
var requestPhrases = []*regexp.Regexp{
	regexp.MustCompile(`run\s`),
	regexp.MustCompile(`execute\s`),
	regexp.MustCompile(`install\s`),
	regexp.MustCompile(`setup\s`),
	regexp.MustCompile(`create\s`),
	regexp.MustCompile(`build\s`),
	regexp.MustCompile(`start\s`),
	regexp.MustCompile(`download\s`),
	regexp.MustCompile(`please\s`),
	regexp.MustCompile(`can you\s`),
	regexp.MustCompile(`could you\s`),
	regexp.MustCompile(`would you\s`),
}

// toolNames tie a message to a command directly: a tool mentioned in both
// counts as a request even without a lead-in phrase.
var toolNames = []string{"curl", "wget", "npm", "pip", "git"}

// Analysis is the outcome of correlating a candidate action with recent
// conversation.
type Analysis struct {
	Level         model.Level `json:"trust_level"`
	UserRequested bool        `json:"user_requested"`
	Context       []Message   `json:"context_messages"`
	Reasoning     string      `json:"reasoning"`
}

// Analyze decides whether the candidate command was explicitly requested by
// the user, based on the transcript at path. A missing or unreadable
// transcript is reduced-confidence input, not an error: the result is
// unverified with empty context.
func Analyze(path, command string) Analysis {
	a := Analysis{Level: model.Unverified}

	if path == "" {
		a.Reasoning = "session context unavailable"
		return a
	}
	msgs, err := ReadMessages(path)
	if err != nil {
		a.Reasoning = "session context unavailable"
		return a
	}

	if len(msgs) > contextWindow {
		a.Context = msgs[len(msgs)-contextWindow:]
	} else {
		a.Context = msgs
	}

	a.UserRequested = userRequested(msgs, command)
	if a.UserRequested {
		a.Level = model.Verified
		a.Reasoning = "user message found requesting this action"
	} else {
		a.Reasoning = "no clear user request found for this action"
	}
	return a
}

// userRequested scans the most recent messages newest-first for a user turn
// that asked for the candidate action. The first match terminates the scan.
func userRequested(msgs []Message, command string) bool {
	commandLower := strings.ToLower(command)
	commandTerms := tokens(commandLower)

	start := len(msgs) - scanWindow
	if start < 0 {
		start = 0
	}
	window := msgs[start:]

	for i := len(window) - 1; i >= 0; i-- {
		msg := window[i]
		if msg.Role != "user" {
			continue
		}
		content := strings.ToLower(msg.Content)

		if hasRequestPhrase(content) && overlap(commandTerms, tokens(content)) >= minOverlap {
			return true
		}

		if mentionsTool(content) && mentionsTool(commandLower) {
			return true
		}
	}
	return false
}

func hasRequestPhrase(content string) bool {
	for _, p := range requestPhrases {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}

func tokens(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range wordToken.FindAllString(s, -1) {
		set[t] = true
	}
	return set
}

func overlap(a, b map[string]bool) int {
	n := 0
	for t := range a {
		if b[t] {
			n++
		}
	}
	return n
}

func mentionsTool(s string) bool {
	for _, t := range toolNames {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
