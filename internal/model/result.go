// Package model defines the verdict types shared between the trust
// evaluator and its callers.
package model

import "github.com/moltbot/trustwatch/internal/intel"

// Level is the categorical trust verdict for a candidate action.
//
// Malicious is an absolute override: it is produced if and only if a threat
// signature matched. The remaining levels come out of the evaluator's
// decision table and carry no numeric ordering.
type Level string

const (
	Trusted    Level = "trusted"
	Verified   Level = "verified"
	Unverified Level = "unverified"
	Suspicious Level = "suspicious"
	Malicious  Level = "malicious"
)

// Result is the outcome of one trust evaluation. Produced fresh per call,
// never retained by the engine.
type Result struct {
	Level          Level        `json:"trust_level"`
	TrustedSession bool         `json:"is_trusted_session"`
	UserRequested  bool         `json:"user_requested"`
	ThreatMatch    *intel.Match `json:"threat_match,omitempty"`
	Recommendation string       `json:"recommendation"`
}
