package session

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := Load(filepath.Join(t.TempDir(), "trusted-sessions.json"))
	if err != nil {
		t.Fatalf("failed to load empty registry: %v", err)
	}
	return r
}

func TestTrustAndCheck(t *testing.T) {
	r := newTestRegistry(t)

	if r.IsTrusted("abc-123") {
		t.Error("fresh registry should trust nothing")
	}
	if err := r.Trust("abc-123"); err != nil {
		t.Fatalf("Trust failed: %v", err)
	}
	if !r.IsTrusted("abc-123") {
		t.Error("expected session to be trusted after Trust")
	}
}

func TestTrustEmptyID(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Trust(""); err == nil {
		t.Error("expected error for empty session ID")
	}
}

func TestPrefixMatchTolerance(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Trust("abcd1234-xxxx"); err != nil {
		t.Fatalf("Trust failed: %v", err)
	}

	// IDs agreeing on the first 8 characters are the same session even when
	// the tails differ, tolerating log truncation.
	if !r.IsTrusted("abcd1234-yyyy") {
		t.Error("expected prefix-matching ID to be trusted")
	}
	if !r.IsTrusted("abcd1234") {
		t.Error("expected truncated ID to be trusted")
	}
	if r.IsTrusted("abcd9999-xxxx") {
		t.Error("expected different prefix to be untrusted")
	}
}

func TestShortIDPrefixMatch(t *testing.T) {
	r := newTestRegistry(t)

	// Trusting an ID shorter than the prefix length still matches any
	// longer ID that starts with it.
	if err := r.Trust("abc"); err != nil {
		t.Fatalf("Trust failed: %v", err)
	}
	if !r.IsTrusted("abc-full-session-id") {
		t.Error("expected longer ID to match short trusted prefix")
	}
}

func TestUntrust(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Trust("session-one"); err != nil {
		t.Fatalf("Trust failed: %v", err)
	}
	if err := r.Untrust("session-one"); err != nil {
		t.Fatalf("Untrust failed: %v", err)
	}
	if r.IsTrusted("session-one") {
		t.Error("expected session to be untrusted after removal")
	}

	// Removing an unknown ID is a no-op, not an error.
	if err := r.Untrust("never-trusted"); err != nil {
		t.Errorf("Untrust of unknown ID failed: %v", err)
	}
}

func TestTrustIdempotent(t *testing.T) {
	r := newTestRegistry(t)

	if err := r.Trust("dup-session"); err != nil {
		t.Fatal(err)
	}
	if err := r.Trust("dup-session"); err != nil {
		t.Fatal(err)
	}
	if n := len(r.Sessions()); n != 1 {
		t.Errorf("expected 1 session after duplicate Trust, got %d", n)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted-sessions.json")
	r, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := r.Trust("persisted-session"); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.IsTrusted("persisted-session") {
		t.Error("trusted session did not survive reload")
	}
}

func TestMalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trusted-sessions.json")
	if err := os.WriteFile(path, []byte("not json at all"), 0600); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err == nil {
		t.Error("expected a warning error for malformed file")
	}
	if r == nil {
		t.Fatal("expected a usable registry despite malformed file")
	}
	if r.IsTrusted("anything") {
		t.Error("fallback registry should be empty")
	}

	// The registry stays usable: a new Trust overwrites the bad file.
	if err := r.Trust("fresh-session"); err != nil {
		t.Fatalf("Trust on fallback registry failed: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Errorf("file still malformed after rewrite: %v", err)
	}
}

func TestSessionsReturnsCopy(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Trust("copy-check"); err != nil {
		t.Fatal(err)
	}

	got := r.Sessions()
	got[0] = "mutated"
	if !r.IsTrusted("copy-check") {
		t.Error("mutating the returned slice must not affect the registry")
	}
}
