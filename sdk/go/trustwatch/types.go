package trustwatch

import (
	"github.com/moltbot/trustwatch/internal/baseline"
	"github.com/moltbot/trustwatch/internal/intel"
	"github.com/moltbot/trustwatch/internal/model"
)

// Level is the categorical trust verdict for a candidate action.
type Level string

const (
	Trusted    Level = "trusted"
	Verified   Level = "verified"
	Unverified Level = "unverified"
	Suspicious Level = "suspicious"
	Malicious  Level = "malicious"
)

// Severity grades a threat signature.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Match describes a threat signature that fired against evaluated text.
type Match struct {
	Pattern  string   `json:"pattern"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

// Result is the outcome of one trust evaluation.
type Result struct {
	Level          Level  `json:"trust_level"`
	TrustedSession bool   `json:"is_trusted_session"`
	UserRequested  bool   `json:"user_requested"`
	ThreatMatch    *Match `json:"threat_match,omitempty"`
	Recommendation string `json:"recommendation"`
}

// Activity describes one observed agent action for baseline tracking.
type Activity struct {
	Command string `json:"command"`
	Path    string `json:"path"`
	Host    string `json:"host"`
}

// AnomalyReport lists baseline deviations found for one activity.
type AnomalyReport struct {
	Anomalies       []string `json:"anomalies"`
	BaselineActions int      `json:"baseline_actions"`
}

func toResult(r model.Result) Result {
	return Result{
		Level:          Level(r.Level),
		TrustedSession: r.TrustedSession,
		UserRequested:  r.UserRequested,
		ThreatMatch:    toMatch(r.ThreatMatch),
		Recommendation: r.Recommendation,
	}
}

func intelSeverity(s Severity) intel.Severity {
	return intel.Severity(s)
}

func toMatch(m *intel.Match) *Match {
	if m == nil {
		return nil
	}
	return &Match{Pattern: m.Pattern, Reason: m.Reason, Severity: Severity(m.Severity)}
}

func toInternalActivity(a Activity) baseline.Activity {
	return baseline.Activity{Command: a.Command, Path: a.Path, Host: a.Host}
}

func toReport(r *baseline.Report) *AnomalyReport {
	if r == nil {
		return nil
	}
	return &AnomalyReport{Anomalies: r.Anomalies, BaselineActions: r.BaselineActions}
}
