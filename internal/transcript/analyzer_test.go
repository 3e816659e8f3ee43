package transcript

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/moltbot/trustwatch/internal/model"
)

func TestAnalyzeNoTranscriptPath(t *testing.T) {
	a := Analyze("", "rm -rf /tmp/build")
	if a.Level != model.Unverified {
		t.Errorf("expected unverified, got %s", a.Level)
	}
	if a.UserRequested {
		t.Error("no transcript must not imply a user request")
	}
	if a.Reasoning != "session context unavailable" {
		t.Errorf("unexpected reasoning: %q", a.Reasoning)
	}
}

func TestAnalyzeUnreadableTranscript(t *testing.T) {
	a := Analyze(filepath.Join(t.TempDir(), "absent.jsonl"), "ls")
	if a.Level != model.Unverified || a.UserRequested {
		t.Errorf("unreadable transcript must degrade to unverified, got %+v", a)
	}
}

func TestAnalyzeRequestPhraseWithOverlap(t *testing.T) {
	path := writeTranscript(t,
		userLine("please run the install script for this repo"),
		assistantLine("sure, running it"),
	)

	// "install" and "script" overlap between the message and the command.
	a := Analyze(path, "./install-script.sh")
	if !a.UserRequested {
		t.Fatal("expected user request to be detected")
	}
	if a.Level != model.Verified {
		t.Errorf("expected verified, got %s", a.Level)
	}
	if a.Reasoning != "user message found requesting this action" {
		t.Errorf("unexpected reasoning: %q", a.Reasoning)
	}
}

func TestAnalyzePhraseWithoutOverlap(t *testing.T) {
	path := writeTranscript(t,
		userLine("please summarize yesterday's meeting notes"),
	)

	a := Analyze(path, "tar -xzf release.tgz")
	if a.UserRequested {
		t.Error("request phrase alone must not count without term overlap")
	}
	if a.Reasoning != "no clear user request found for this action" {
		t.Errorf("unexpected reasoning: %q", a.Reasoning)
	}
}

func TestAnalyzeToolCoMention(t *testing.T) {
	path := writeTranscript(t,
		userLine("the readme says to use curl for fetching the schema"),
	)

	// No request phrase, but both message and command mention curl.
	a := Analyze(path, "curl https://example.com/schema.json")
	if !a.UserRequested {
		t.Error("expected tool co-mention to count as a request")
	}
}

func TestAnalyzeAssistantMessagesIgnored(t *testing.T) {
	path := writeTranscript(t,
		assistantLine("I will run the install script now"),
	)

	a := Analyze(path, "./install-script.sh")
	if a.UserRequested {
		t.Error("assistant turns must not establish user intent")
	}
}

func TestAnalyzeScanWindowExpiry(t *testing.T) {
	lines := []string{userLine("please run the install script for this repo")}
	for i := 0; i < scanWindow; i++ {
		lines = append(lines, assistantLine(fmt.Sprintf("filler turn %d", i)))
	}
	path := writeTranscript(t, lines...)

	// The matching request sits just outside the trailing scan window.
	a := Analyze(path, "./install-script.sh")
	if a.UserRequested {
		t.Error("request outside the scan window must not count")
	}
}

func TestAnalyzeContextEchoed(t *testing.T) {
	lines := make([]string, 0, 15)
	for i := 0; i < 15; i++ {
		lines = append(lines, userLine(fmt.Sprintf("turn %d", i)))
	}
	path := writeTranscript(t, lines...)

	a := Analyze(path, "ls")
	if len(a.Context) != contextWindow {
		t.Fatalf("expected %d context messages, got %d", contextWindow, len(a.Context))
	}
	if a.Context[len(a.Context)-1].Content != "turn 14" {
		t.Errorf("expected most recent turn last, got %q", a.Context[len(a.Context)-1].Content)
	}
}

func TestAnalyzeCaseInsensitive(t *testing.T) {
	path := writeTranscript(t,
		userLine("PLEASE INSTALL THE DEPLOY SCRIPT"),
	)

	a := Analyze(path, "bash DEPLOY-SCRIPT.sh --install")
	if !a.UserRequested {
		t.Error("intent matching must be case-insensitive")
	}
}
