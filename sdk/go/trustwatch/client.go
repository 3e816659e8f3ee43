package trustwatch

import (
	"fmt"

	"github.com/moltbot/trustwatch/internal/config"
	"github.com/moltbot/trustwatch/internal/trust"
)

// Client wraps the trust engine for in-process embedding. Thread-safe for
// concurrent evaluations from independent agent sessions.
type Client struct {
	engine *trust.Engine
}

// New creates a Client with the given options. Store files default to the
// ~/.moltbot layout unless overridden.
func New(opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}
	cfg.resolve(config.Default().DataDir)

	engine, err := trust.New(trust.Config{
		TrustedSessionsPath: cfg.trustedSessionsPath,
		ThreatIntelPath:     cfg.threatIntelPath,
		BaselinePath:        cfg.baselinePath,
	})
	if err != nil {
		return nil, fmt.Errorf("trustwatch: %w", err)
	}

	return &Client{engine: engine}, nil
}

// Warnings reports non-fatal problems found while loading persisted stores.
// Callers should log these once at startup.
func (c *Client) Warnings() []string {
	return c.engine.Warnings()
}

// Evaluate renders a trust verdict for a candidate command. sessionID and
// transcriptPath may be empty; missing context lowers confidence without
// being an error.
func (c *Client) Evaluate(command, sessionID, transcriptPath string) Result {
	return toResult(c.engine.Evaluate(command, sessionID, transcriptPath))
}

// CheckThreatIntel matches text against the threat signature set without
// rendering a full verdict.
func (c *Client) CheckThreatIntel(text string) *Match {
	return toMatch(c.engine.CheckThreatIntel(text))
}

// TrustSession marks a session ID as the user's own trusted agent.
func (c *Client) TrustSession(id string) error {
	return c.engine.TrustSession(id)
}

// UntrustSession removes trust from a session ID.
func (c *Client) UntrustSession(id string) error {
	return c.engine.UntrustSession(id)
}

// IsTrustedSession reports whether id matches a trusted session. IDs agree
// when either starts with the other's first 8 characters, tolerating log
// truncation.
func (c *Client) IsTrustedSession(id string) bool {
	return c.engine.IsTrustedSession(id)
}

// AddThreatPattern registers a custom regex signature. Invalid regexes and
// unknown severities are rejected immediately.
func (c *Client) AddThreatPattern(pattern, reason string, severity Severity) error {
	return c.engine.AddThreatPattern(pattern, reason, intelSeverity(severity))
}

// BlockIP blocks an IP address literal. Idempotent.
func (c *Client) BlockIP(ip string) error {
	return c.engine.BlockIP(ip)
}

// BlockDomain blocks a domain literal. Idempotent.
func (c *Client) BlockDomain(domain string) error {
	return c.engine.BlockDomain(domain)
}

// ObserveActivity records an action into the session's behavioral baseline.
func (c *Client) ObserveActivity(sessionID string, act Activity) error {
	return c.engine.ObserveActivity(sessionID, toInternalActivity(act))
}

// CheckAnomaly compares an activity against the session's baseline. Returns
// nil until the session has at least 50 observed actions.
func (c *Client) CheckAnomaly(sessionID string, act Activity) *AnomalyReport {
	return toReport(c.engine.CheckAnomaly(sessionID, toInternalActivity(act)))
}

// Flush persists all baselines now, regardless of the amortized schedule.
// Call on shutdown.
func (c *Client) Flush() error {
	return c.engine.FlushBaseline()
}
