package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/moltbot/trustwatch/internal/model"
)

func openTestLog(t *testing.T) *Log {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	l := openTestLog(t)

	res := model.Result{
		Level:          model.Suspicious,
		Recommendation: "REVIEW: no trusted session or user request",
	}
	if err := l.Record("tar -xzf release.tgz", "sess-1", res); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	entries, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.ID == "" {
		t.Error("expected a generated entry ID")
	}
	if e.Command != "tar -xzf release.tgz" || e.SessionID != "sess-1" {
		t.Errorf("unexpected entry: %+v", e)
	}
	if e.Level != model.Suspicious {
		t.Errorf("expected suspicious level, got %s", e.Level)
	}
	if e.TrustedSession || e.UserRequested {
		t.Error("boolean flags must round-trip as false")
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected a parsed timestamp")
	}
}

func TestRecentNewestFirst(t *testing.T) {
	l := openTestLog(t)

	for _, cmd := range []string{"first", "second", "third"} {
		if err := l.Record(cmd, "", model.Result{Level: model.Unverified}); err != nil {
			t.Fatal(err)
		}
		// Keep created_at strictly increasing for a deterministic order.
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := l.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(entries))
	}
	if entries[0].Command != "third" || entries[1].Command != "second" {
		t.Errorf("expected newest first, got %q then %q", entries[0].Command, entries[1].Command)
	}
}

func TestBooleanFlagsRoundTrip(t *testing.T) {
	l := openTestLog(t)

	res := model.Result{
		Level:          model.Trusted,
		TrustedSession: true,
		UserRequested:  true,
		Recommendation: "ALLOW: trusted session, user requested",
	}
	if err := l.Record("./install.sh", "sess-1", res); err != nil {
		t.Fatal(err)
	}

	entries, err := l.Recent(1)
	if err != nil {
		t.Fatal(err)
	}
	if !entries[0].TrustedSession || !entries[0].UserRequested {
		t.Errorf("boolean flags lost in round trip: %+v", entries[0])
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	l, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Record("ls", "", model.Result{Level: model.Unverified}); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	entries, err := reopened.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after reopen, got %d", len(entries))
	}
}
