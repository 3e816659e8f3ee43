// Package baseline maintains per-session rolling statistics over observed
// agent activity and flags deviations once enough history exists.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// minActions is how much history a session needs before anomaly
	// checks fire. A thin baseline proves nothing either way.
	minActions = 50
	// saveEvery amortizes durable writes: one flush per N observed
	// actions in a session. Bounds I/O at the cost of an at-most
	// saveEvery-1 action durability gap on crash.
	saveEvery = 100
)

// Activity describes one observed agent action.
type Activity struct {
	Command string `json:"command"`
	Path    string `json:"path"`
	Host    string `json:"host"`
}

// Stats is the rolling baseline for one session. Grows monotonically; this
// package never deletes a baseline.
type Stats struct {
	Commands map[string]int `json:"common_commands"`
	Paths    map[string]int `json:"common_paths"`
	Hosts    map[string]int `json:"common_hosts"`
	Hours    [24]int        `json:"activity_hours"`
	Total    int            `json:"total_actions"`
}

// Report lists the baseline deviations found for one activity.
type Report struct {
	Anomalies       []string `json:"anomalies"`
	BaselineActions int      `json:"baseline_actions"`
}

type sessionState struct {
	mu    sync.Mutex
	stats Stats
}

// Tracker maintains behavioral baselines for all observed sessions.
// Sessions are tracked independently: observations for different sessions
// never contend on a shared lock.
type Tracker struct {
	path string
	now  func() time.Time

	sessions sync.Map // session ID → *sessionState
}

// Load reads the baseline store from path. A missing file yields an empty
// tracker; a malformed file yields an empty tracker plus a warning error
// for the caller to log.
func Load(path string) (*Tracker, error) {
	t := &Tracker{path: path, now: time.Now}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("read baseline %s: %w", path, err)
	}

	var m map[string]Stats
	if err := json.Unmarshal(data, &m); err != nil {
		return t, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	for id, st := range m {
		state := &sessionState{stats: st}
		ensureMaps(&state.stats)
		t.sessions.Store(id, state)
	}
	return t, nil
}

// Observe records one action into the session's baseline, creating the
// baseline on first sight. Every saveEvery-th action for a session flushes
// the whole store to disk.
func (t *Tracker) Observe(sessionID string, act Activity) error {
	if sessionID == "" {
		return fmt.Errorf("session id must not be empty")
	}
	state := t.state(sessionID)

	state.mu.Lock()
	st := &state.stats
	st.Total++
	if base := commandBase(act.Command); base != "" {
		st.Commands[base]++
	}
	if act.Path != "" {
		st.Paths[filepath.Dir(act.Path)]++
	}
	if act.Host != "" {
		st.Hosts[act.Host]++
	}
	st.Hours[t.now().Hour()]++
	flush := st.Total%saveEvery == 0
	state.mu.Unlock()

	if flush {
		return t.Flush()
	}
	return nil
}

// CheckAnomaly compares an activity against the session's baseline. Returns
// nil when the session is unknown, has fewer than minActions observations,
// or nothing deviates. Deviations accumulate: an activity can flag its
// command, path, host, and hour at once.
func (t *Tracker) CheckAnomaly(sessionID string, act Activity) *Report {
	v, ok := t.sessions.Load(sessionID)
	if !ok {
		return nil
	}
	state := v.(*sessionState)

	state.mu.Lock()
	defer state.mu.Unlock()

	st := &state.stats
	if st.Total < minActions {
		return nil
	}

	var anomalies []string
	if base := commandBase(act.Command); base != "" && st.Commands[base] == 0 {
		anomalies = append(anomalies, "Unusual command: "+base)
	}
	if act.Path != "" {
		if dir := filepath.Dir(act.Path); st.Paths[dir] == 0 {
			anomalies = append(anomalies, "Unusual path: "+dir)
		}
	}
	if act.Host != "" && st.Hosts[act.Host] == 0 {
		anomalies = append(anomalies, "Unusual host: "+act.Host)
	}
	if hour := t.now().Hour(); st.Hours[hour] == 0 {
		anomalies = append(anomalies, fmt.Sprintf("Unusual activity hour: %d:00", hour))
	}

	if len(anomalies) == 0 {
		return nil
	}
	return &Report{Anomalies: anomalies, BaselineActions: st.Total}
}

// TotalActions returns how many actions have been observed for a session.
func (t *Tracker) TotalActions(sessionID string) int {
	v, ok := t.sessions.Load(sessionID)
	if !ok {
		return 0
	}
	state := v.(*sessionState)
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.stats.Total
}

// Flush writes a snapshot of every session baseline to disk atomically.
// Long-running surfaces call this on shutdown; one-shot callers after each
// observation. Bursty fleets of short-lived sessions would otherwise never
// cross the saveEvery threshold.
func (t *Tracker) Flush() error {
	snapshot := make(map[string]Stats)
	t.sessions.Range(func(k, v any) bool {
		state := v.(*sessionState)
		state.mu.Lock()
		snapshot[k.(string)] = cloneStats(state.stats)
		state.mu.Unlock()
		return true
	})

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0700); err != nil {
		return fmt.Errorf("create baseline directory: %w", err)
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write baseline: %w", err)
	}
	return os.Rename(tmp, t.path)
}

// state returns the session's state, creating it on first sight.
func (t *Tracker) state(id string) *sessionState {
	if v, ok := t.sessions.Load(id); ok {
		return v.(*sessionState)
	}
	fresh := &sessionState{}
	ensureMaps(&fresh.stats)
	actual, _ := t.sessions.LoadOrStore(id, fresh)
	return actual.(*sessionState)
}

// commandBase returns the first whitespace-delimited token of a command.
func commandBase(cmd string) string {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func ensureMaps(st *Stats) {
	if st.Commands == nil {
		st.Commands = make(map[string]int)
	}
	if st.Paths == nil {
		st.Paths = make(map[string]int)
	}
	if st.Hosts == nil {
		st.Hosts = make(map[string]int)
	}
}

func cloneStats(st Stats) Stats {
	out := Stats{Hours: st.Hours, Total: st.Total}
	out.Commands = make(map[string]int, len(st.Commands))
	for k, v := range st.Commands {
		out.Commands[k] = v
	}
	out.Paths = make(map[string]int, len(st.Paths))
	for k, v := range st.Paths {
		out.Paths[k] = v
	}
	out.Hosts = make(map[string]int, len(st.Hosts))
	for k, v := range st.Hosts {
		out.Hosts[k] = v
	}
	return out
}
