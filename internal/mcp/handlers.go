package mcp

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moltbot/trustwatch/internal/baseline"
	"github.com/moltbot/trustwatch/internal/intel"
	"github.com/moltbot/trustwatch/internal/model"
)

// --- Input/Output types ---

// EvaluateInput defines parameters for the trustwatch_evaluate tool.
type EvaluateInput struct {
	Command    string `json:"command" jsonschema:"candidate command to evaluate"`
	SessionID  string `json:"session_id,omitempty" jsonschema:"agent session identifier"`
	Transcript string `json:"transcript,omitempty" jsonschema:"path to the session transcript (JSONL)"`
}

// EvaluateOutput is the rendered verdict.
type EvaluateOutput struct {
	TrustLevel       string       `json:"trust_level"`
	IsTrustedSession bool         `json:"is_trusted_session"`
	UserRequested    bool         `json:"user_requested"`
	ThreatMatch      *ThreatMatch `json:"threat_match,omitempty"`
	Recommendation   string       `json:"recommendation"`
}

// ThreatMatch describes the signature that fired, if any.
type ThreatMatch struct {
	Pattern  string `json:"pattern"`
	Reason   string `json:"reason"`
	Severity string `json:"severity"`
}

// CheckIntelInput defines parameters for the trustwatch_check_intel tool.
type CheckIntelInput struct {
	Text string `json:"text" jsonschema:"text to match against threat signatures"`
}

// CheckIntelOutput reports whether a signature fired.
type CheckIntelOutput struct {
	Matched bool         `json:"matched"`
	Match   *ThreatMatch `json:"match,omitempty"`
}

// SessionInput identifies a session for trust/untrust.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"agent session identifier"`
}

// SessionOutput confirms the registry change.
type SessionOutput struct {
	SessionID string `json:"session_id"`
	Trusted   bool   `json:"trusted"`
}

// ObserveInput defines parameters for the trustwatch_observe tool.
type ObserveInput struct {
	SessionID string `json:"session_id" jsonschema:"agent session identifier"`
	Command   string `json:"command,omitempty" jsonschema:"observed command"`
	Path      string `json:"path,omitempty" jsonschema:"observed file path"`
	Host      string `json:"host,omitempty" jsonschema:"observed network host"`
}

// ObserveOutput reports the session's history size after recording.
type ObserveOutput struct {
	SessionID    string `json:"session_id"`
	TotalActions int    `json:"total_actions"`
}

// AnomalyInput defines parameters for the trustwatch_anomaly tool.
type AnomalyInput struct {
	SessionID string `json:"session_id" jsonschema:"agent session identifier"`
	Command   string `json:"command,omitempty" jsonschema:"activity command"`
	Path      string `json:"path,omitempty" jsonschema:"activity file path"`
	Host      string `json:"host,omitempty" jsonschema:"activity network host"`
}

// AnomalyOutput lists detected deviations. Checked is false when the
// session lacks enough history for the baseline to mean anything.
type AnomalyOutput struct {
	Checked         bool     `json:"checked"`
	Anomalies       []string `json:"anomalies,omitempty"`
	BaselineActions int      `json:"baseline_actions,omitempty"`
}

// BlockInput defines parameters for the trustwatch_block tool. Exactly one
// of pattern, ip, or domain must be set.
type BlockInput struct {
	Pattern  string `json:"pattern,omitempty" jsonschema:"regex threat pattern"`
	Reason   string `json:"reason,omitempty" jsonschema:"why the pattern is a threat"`
	Severity string `json:"severity,omitempty" jsonschema:"low, medium, high, or critical (default high)"`
	IP       string `json:"ip,omitempty" jsonschema:"IP address literal to block"`
	Domain   string `json:"domain,omitempty" jsonschema:"domain literal to block"`
}

// BlockOutput confirms what was added.
type BlockOutput struct {
	Added string `json:"added"`
}

// --- Handlers ---

func (s *Server) handleEvaluate(ctx context.Context, req *mcpsdk.CallToolRequest, input EvaluateInput) (*mcpsdk.CallToolResult, EvaluateOutput, error) {
	res := s.engine.Evaluate(input.Command, input.SessionID, input.Transcript)

	if s.hist != nil {
		if err := s.hist.Record(input.Command, input.SessionID, res); err != nil {
			fmt.Fprintf(os.Stderr, "history: %v\n", err)
		}
	}

	out := EvaluateOutput{
		TrustLevel:       string(res.Level),
		IsTrustedSession: res.TrustedSession,
		UserRequested:    res.UserRequested,
		ThreatMatch:      toThreatMatch(res.ThreatMatch),
		Recommendation:   res.Recommendation,
	}
	if res.Level == model.Malicious {
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, out, nil
}

func (s *Server) handleCheckIntel(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckIntelInput) (*mcpsdk.CallToolResult, CheckIntelOutput, error) {
	m := s.engine.CheckThreatIntel(input.Text)
	return nil, CheckIntelOutput{Matched: m != nil, Match: toThreatMatch(m)}, nil
}

func (s *Server) handleTrustSession(ctx context.Context, req *mcpsdk.CallToolRequest, input SessionInput) (*mcpsdk.CallToolResult, SessionOutput, error) {
	if err := s.engine.TrustSession(input.SessionID); err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{SessionID: input.SessionID, Trusted: true}, nil
}

func (s *Server) handleUntrustSession(ctx context.Context, req *mcpsdk.CallToolRequest, input SessionInput) (*mcpsdk.CallToolResult, SessionOutput, error) {
	if err := s.engine.UntrustSession(input.SessionID); err != nil {
		return nil, SessionOutput{}, err
	}
	return nil, SessionOutput{SessionID: input.SessionID, Trusted: false}, nil
}

func (s *Server) handleObserve(ctx context.Context, req *mcpsdk.CallToolRequest, input ObserveInput) (*mcpsdk.CallToolResult, ObserveOutput, error) {
	act := baseline.Activity{Command: input.Command, Path: input.Path, Host: input.Host}
	if err := s.engine.ObserveActivity(input.SessionID, act); err != nil {
		return nil, ObserveOutput{}, err
	}
	return nil, ObserveOutput{
		SessionID:    input.SessionID,
		TotalActions: s.engine.BaselineActions(input.SessionID),
	}, nil
}

func (s *Server) handleAnomaly(ctx context.Context, req *mcpsdk.CallToolRequest, input AnomalyInput) (*mcpsdk.CallToolResult, AnomalyOutput, error) {
	act := baseline.Activity{Command: input.Command, Path: input.Path, Host: input.Host}
	report := s.engine.CheckAnomaly(input.SessionID, act)
	if report == nil {
		return nil, AnomalyOutput{Checked: false}, nil
	}
	return nil, AnomalyOutput{
		Checked:         true,
		Anomalies:       report.Anomalies,
		BaselineActions: report.BaselineActions,
	}, nil
}

func (s *Server) handleBlock(ctx context.Context, req *mcpsdk.CallToolRequest, input BlockInput) (*mcpsdk.CallToolResult, BlockOutput, error) {
	switch {
	case input.Pattern != "":
		severity := intel.Severity(input.Severity)
		if input.Severity == "" {
			severity = intel.SeverityHigh
		}
		if err := s.engine.AddThreatPattern(input.Pattern, input.Reason, severity); err != nil {
			return nil, BlockOutput{}, err
		}
		return nil, BlockOutput{Added: "pattern: " + input.Pattern}, nil

	case input.IP != "":
		if err := s.engine.BlockIP(input.IP); err != nil {
			return nil, BlockOutput{}, err
		}
		return nil, BlockOutput{Added: "ip: " + input.IP}, nil

	case input.Domain != "":
		if err := s.engine.BlockDomain(input.Domain); err != nil {
			return nil, BlockOutput{}, err
		}
		return nil, BlockOutput{Added: "domain: " + input.Domain}, nil
	}

	return nil, BlockOutput{}, fmt.Errorf("one of pattern, ip, or domain is required")
}

func toThreatMatch(m *intel.Match) *ThreatMatch {
	if m == nil {
		return nil
	}
	return &ThreatMatch{Pattern: m.Pattern, Reason: m.Reason, Severity: string(m.Severity)}
}
