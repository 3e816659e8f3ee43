// Package intel holds threat signatures (built-in and user-added regex
// patterns plus blocked IP and domain literals) and matches candidate
// action text against them.
package intel

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// PatternInfo is the persisted description of a custom signature.
type PatternInfo struct {
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// fileFormat mirrors the on-disk threat-intel artifact.
type fileFormat struct {
	Patterns       map[string]PatternInfo `json:"patterns"`
	BlockedIPs     []string               `json:"blocked_ips"`
	BlockedDomains []string               `json:"blocked_domains"`
	Updated        string                 `json:"updated"`
}

type customPattern struct {
	re   *regexp.Regexp
	raw  string
	info PatternInfo
}

// Store owns the mutable custom threat entries. Built-in signatures are
// immutable and always checked before custom ones. Every mutation persists
// the custom entries with an atomic tmp+rename write.
type Store struct {
	path string

	mu             sync.Mutex
	custom         []customPattern
	blockedIPs     []string
	blockedDomains []string
}

// Load reads the custom threat-intel store from path. A missing file yields
// an empty store. A malformed file or uncompilable persisted patterns also
// yield a usable store plus a non-nil warning describing what was dropped;
// the caller decides whether to log it or fail startup.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read threat intel %s: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return s, fmt.Errorf("parse threat intel %s: %w", path, err)
	}

	// The artifact keys patterns by regex string; sort so match order is
	// stable across restarts.
	keys := make([]string, 0, len(f.Patterns))
	for k := range f.Patterns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dropped []string
	for _, raw := range keys {
		re, err := regexp.Compile(raw)
		if err != nil {
			dropped = append(dropped, raw)
			continue
		}
		s.custom = append(s.custom, customPattern{re: re, raw: raw, info: f.Patterns[raw]})
	}
	s.blockedIPs = f.BlockedIPs
	s.blockedDomains = f.BlockedDomains

	if len(dropped) > 0 {
		return s, fmt.Errorf("threat intel %s: dropped uncompilable patterns: %s", path, strings.Join(dropped, ", "))
	}
	return s, nil
}

// Match checks text against built-in signatures, then custom patterns, then
// blocked IP and domain literals. All checks run over the lowercased text.
// Returns the first hit, or nil when nothing matched.
func (s *Store) Match(text string) *Match {
	lower := strings.ToLower(text)

	for _, sig := range builtin {
		if sig.re.MatchString(lower) {
			return &Match{Pattern: sig.re.String(), Reason: sig.reason, Severity: sig.severity}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, cp := range s.custom {
		if cp.re.MatchString(lower) {
			return &Match{Pattern: cp.raw, Reason: cp.info.Reason, Severity: cp.info.Severity}
		}
	}
	for _, ip := range s.blockedIPs {
		if strings.Contains(lower, ip) {
			return &Match{Pattern: ip, Reason: "Blocked IP address", Severity: SeverityHigh}
		}
	}
	for _, d := range s.blockedDomains {
		if strings.Contains(lower, strings.ToLower(d)) {
			return &Match{Pattern: d, Reason: "Blocked domain", Severity: SeverityHigh}
		}
	}
	return nil
}

// AddPattern registers a custom signature and persists the store. The regex
// must compile and the severity must be a known grade; both are rejected at
// the call site rather than crashing a later Match. Re-adding an existing
// pattern updates its reason and severity in place.
func (s *Store) AddPattern(pattern, reason string, severity Severity) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid threat pattern %q: %w", pattern, err)
	}
	if !severity.Valid() {
		return fmt.Errorf("invalid severity %q: must be low, medium, high, or critical", severity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	info := PatternInfo{Reason: reason, Severity: severity}
	for i := range s.custom {
		if s.custom[i].raw == pattern {
			s.custom[i].info = info
			return s.saveLocked()
		}
	}
	s.custom = append(s.custom, customPattern{re: re, raw: pattern, info: info})
	return s.saveLocked()
}

// BlockIP adds an IP literal to the blocklist. Idempotent: a repeat call
// changes nothing and writes nothing.
func (s *Store) BlockIP(ip string) error {
	if ip == "" {
		return fmt.Errorf("ip must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.blockedIPs {
		if existing == ip {
			return nil
		}
	}
	s.blockedIPs = append(s.blockedIPs, ip)
	return s.saveLocked()
}

// BlockDomain adds a domain literal to the blocklist. Idempotent.
func (s *Store) BlockDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.blockedDomains {
		if existing == domain {
			return nil
		}
	}
	s.blockedDomains = append(s.blockedDomains, domain)
	return s.saveLocked()
}

// Reload replaces the custom entries with the current on-disk contents.
// Used by the hot-reload watcher when the intel file is edited externally.
func (s *Store) Reload() error {
	fresh, err := Load(s.path)

	s.mu.Lock()
	s.custom = fresh.custom
	s.blockedIPs = fresh.blockedIPs
	s.blockedDomains = fresh.blockedDomains
	s.mu.Unlock()

	return err
}

// Path returns the store's file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) saveLocked() error {
	f := fileFormat{
		Patterns:       make(map[string]PatternInfo, len(s.custom)),
		BlockedIPs:     s.blockedIPs,
		BlockedDomains: s.blockedDomains,
		Updated:        time.Now().UTC().Format(time.RFC3339),
	}
	for _, cp := range s.custom {
		f.Patterns[cp.raw] = cp.info
	}
	if f.BlockedIPs == nil {
		f.BlockedIPs = []string{}
	}
	if f.BlockedDomains == nil {
		f.BlockedDomains = []string{}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal threat intel: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create intel directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write threat intel: %w", err)
	}
	return os.Rename(tmp, s.path)
}
