// Package session tracks which agent sessions the user has explicitly
// marked as trusted.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// prefixLen is how many leading characters of a session ID must agree for
// two IDs to be considered the same session. Log pipelines truncate IDs, so
// equality is a bidirectional prefix match rather than a full compare.
const prefixLen = 8

type fileFormat struct {
	Sessions []string `json:"sessions"`
	Updated  string   `json:"updated"`
}

// Registry is the set of explicitly trusted session IDs. Mutations persist
// the full set synchronously with an atomic tmp+rename write.
type Registry struct {
	path string

	mu       sync.Mutex
	sessions []string
}

// Load reads the trusted-session set from path. A missing file yields an
// empty registry; a malformed file yields an empty registry plus a warning
// error for the caller to log.
func Load(path string) (*Registry, error) {
	r := &Registry{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return r, fmt.Errorf("read trusted sessions %s: %w", path, err)
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return r, fmt.Errorf("parse trusted sessions %s: %w", path, err)
	}
	r.sessions = f.Sessions
	return r, nil
}

// Trust marks a session ID as trusted and persists the set. Idempotent.
func (r *Registry) Trust(id string) error {
	if id == "" {
		return fmt.Errorf("session id must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sessions {
		if existing == id {
			return nil
		}
	}
	r.sessions = append(r.sessions, id)
	return r.saveLocked()
}

// Untrust removes a session ID from the trusted set. Removing an unknown
// ID is a no-op.
func (r *Registry) Untrust(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.sessions {
		if existing == id {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			return r.saveLocked()
		}
	}
	return nil
}

// IsTrusted reports whether id matches any trusted session. The scan is
// O(n) over the stored set, which stays small in practice.
func (r *Registry) IsTrusted(id string) bool {
	if id == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, trusted := range r.sessions {
		if samePrefix(id, trusted) {
			return true
		}
	}
	return false
}

// Sessions returns a copy of the trusted set.
func (r *Registry) Sessions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sessions...)
}

// samePrefix reports whether either ID starts with the other's first
// prefixLen characters.
func samePrefix(a, b string) bool {
	return strings.HasPrefix(a, head(b)) || strings.HasPrefix(b, head(a))
}

func head(s string) string {
	if len(s) > prefixLen {
		return s[:prefixLen]
	}
	return s
}

func (r *Registry) saveLocked() error {
	f := fileFormat{
		Sessions: r.sessions,
		Updated:  time.Now().UTC().Format(time.RFC3339),
	}
	if f.Sessions == nil {
		f.Sessions = []string{}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trusted sessions: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write trusted sessions: %w", err)
	}
	return os.Rename(tmp, r.path)
}
