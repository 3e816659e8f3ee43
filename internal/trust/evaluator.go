// Package trust composes threat matching, session trust, context analysis,
// and the behavioral baseline into one evaluation pipeline. Engine is the
// system's entry point: it renders verdicts, it never executes or blocks
// anything itself.
package trust

import (
	"fmt"

	"github.com/moltbot/trustwatch/internal/baseline"
	"github.com/moltbot/trustwatch/internal/intel"
	"github.com/moltbot/trustwatch/internal/model"
	"github.com/moltbot/trustwatch/internal/session"
	"github.com/moltbot/trustwatch/internal/transcript"
)

// Config carries the storage locations for the engine's stores. Paths are
// injected explicitly; the engine never derives them from the environment.
type Config struct {
	TrustedSessionsPath string
	ThreatIntelPath     string
	BaselinePath        string
}

// Engine evaluates candidate agent actions against threat intel, the
// trusted-session registry, conversational context, and per-session
// behavioral baselines. Safe for concurrent use; each store carries its
// own lock.
type Engine struct {
	intel    *intel.Store
	sessions *session.Registry
	baseline *baseline.Tracker
	warnings []string
}

// New builds an Engine from explicit store paths. Missing stores start
// empty; malformed stores degrade to empty defaults and the reasons are
// retained for Warnings. Nothing here is fatal; the worst outcome of a
// broken store is a conservative verdict later.
func New(cfg Config) (*Engine, error) {
	if cfg.TrustedSessionsPath == "" || cfg.ThreatIntelPath == "" || cfg.BaselinePath == "" {
		return nil, fmt.Errorf("trust: all store paths must be set")
	}

	e := &Engine{}

	var err error
	e.intel, err = intel.Load(cfg.ThreatIntelPath)
	if err != nil {
		e.warnings = append(e.warnings, err.Error())
	}
	e.sessions, err = session.Load(cfg.TrustedSessionsPath)
	if err != nil {
		e.warnings = append(e.warnings, err.Error())
	}
	e.baseline, err = baseline.Load(cfg.BaselinePath)
	if err != nil {
		e.warnings = append(e.warnings, err.Error())
	}

	return e, nil
}

// Warnings reports non-fatal problems found while loading persisted stores.
func (e *Engine) Warnings() []string {
	return append([]string(nil), e.warnings...)
}

// Evaluate renders a trust verdict for a candidate command. sessionID and
// transcriptPath may be empty; absent context lowers confidence, it is
// never an error.
//
// Precedence is fixed:
//  1. Threat-intel match: absolute override, short-circuits everything.
//  2. No transcript: verdict stays unverified; session trust is still
//     reported when a session ID was given.
//  3. Session trust and user intent feed the decision table.
func (e *Engine) Evaluate(command, sessionID, transcriptPath string) model.Result {
	if m := e.intel.Match(command); m != nil {
		return model.Result{
			Level:          model.Malicious,
			ThreatMatch:    m,
			Recommendation: "BLOCK: " + m.Reason,
		}
	}

	res := model.Result{Level: model.Unverified}
	if sessionID != "" {
		res.TrustedSession = e.sessions.IsTrusted(sessionID)
	}

	if transcriptPath == "" {
		res.Recommendation = "Unable to verify - no session context"
		return res
	}

	analysis := transcript.Analyze(transcriptPath, command)
	res.UserRequested = analysis.UserRequested

	switch {
	case res.TrustedSession && res.UserRequested:
		res.Level = model.Trusted
		res.Recommendation = "ALLOW: trusted session, user requested"
	case res.TrustedSession:
		res.Level = model.Verified
		res.Recommendation = "ALLOW with logging: trusted session, action not explicitly requested"
	case res.UserRequested:
		res.Level = model.Verified
		res.Recommendation = "ALLOW: user requested this action"
	default:
		res.Level = model.Suspicious
		res.Recommendation = "REVIEW: no trusted session or user request"
	}
	return res
}

// TrustSession marks a session as the user's own agent.
func (e *Engine) TrustSession(id string) error {
	return e.sessions.Trust(id)
}

// UntrustSession removes trust from a session.
func (e *Engine) UntrustSession(id string) error {
	return e.sessions.Untrust(id)
}

// IsTrustedSession reports whether id matches a trusted session by prefix.
func (e *Engine) IsTrustedSession(id string) bool {
	return e.sessions.IsTrusted(id)
}

// TrustedSessions lists the registered trusted session IDs.
func (e *Engine) TrustedSessions() []string {
	return e.sessions.Sessions()
}

// CheckThreatIntel matches text against the threat signature set.
func (e *Engine) CheckThreatIntel(text string) *intel.Match {
	return e.intel.Match(text)
}

// AddThreatPattern registers a custom threat signature.
func (e *Engine) AddThreatPattern(pattern, reason string, severity intel.Severity) error {
	return e.intel.AddPattern(pattern, reason, severity)
}

// BlockIP blocks an IP address literal.
func (e *Engine) BlockIP(ip string) error {
	return e.intel.BlockIP(ip)
}

// BlockDomain blocks a domain literal.
func (e *Engine) BlockDomain(domain string) error {
	return e.intel.BlockDomain(domain)
}

// ObserveActivity records an action into the session's behavioral baseline.
func (e *Engine) ObserveActivity(sessionID string, act baseline.Activity) error {
	return e.baseline.Observe(sessionID, act)
}

// CheckAnomaly compares an activity against the session's baseline.
func (e *Engine) CheckAnomaly(sessionID string, act baseline.Activity) *baseline.Report {
	return e.baseline.CheckAnomaly(sessionID, act)
}

// BaselineActions returns the observed action count for a session.
func (e *Engine) BaselineActions(sessionID string) int {
	return e.baseline.TotalActions(sessionID)
}

// FlushBaseline persists all baselines now, regardless of the amortized
// save schedule.
func (e *Engine) FlushBaseline() error {
	return e.baseline.Flush()
}

// IntelStore exposes the pattern store for hot-reload watching.
func (e *Engine) IntelStore() *intel.Store {
	return e.intel
}
