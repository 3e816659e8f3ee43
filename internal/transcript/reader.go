// Package transcript reads agent conversation logs and correlates candidate
// actions with recent user intent.
package transcript

import (
	"encoding/json"
	"os"
	"strings"
)

const (
	// maxLines bounds how many trailing transcript lines are parsed.
	maxLines = 50
	// maxContent caps extracted message content.
	maxContent = 500
	// maxPart caps each text part of structured content before joining.
	maxPart = 200
)

// Message is one conversational turn extracted from a transcript. Ephemeral:
// derived by re-reading the transcript, never persisted.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type transcriptLine struct {
	Type    string     `json:"type"`
	Message rawMessage `json:"message"`
}

type rawMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ReadMessages parses the trailing message entries of a JSONL transcript.
// The file is read in a single snapshot, so a writer appending concurrently
// only affects the next call. Unparsable lines and non-message entries are
// skipped, not errors.
func ReadMessages(path string) ([]Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	var msgs []Message
	for _, ln := range lines {
		var entry transcriptLine
		if err := json.Unmarshal([]byte(ln), &entry); err != nil {
			continue
		}
		if entry.Type != "message" {
			continue
		}
		msgs = append(msgs, Message{
			Role:    entry.Message.Role,
			Content: decodeContent(entry.Message.Content),
		})
	}
	return msgs, nil
}

// decodeContent handles both content shapes: a plain string, or a list of
// typed parts whose "text" members are concatenated.
func decodeContent(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return truncate(s, maxContent)
	}

	var parts []contentPart
	if err := json.Unmarshal(raw, &parts); err == nil {
		texts := make([]string, 0, len(parts))
		for _, p := range parts {
			if p.Type == "text" {
				texts = append(texts, truncate(p.Text, maxPart))
			}
		}
		return truncate(strings.Join(texts, " "), maxContent)
	}

	return ""
}

// truncate limits s to n runes, never splitting a multi-byte sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
