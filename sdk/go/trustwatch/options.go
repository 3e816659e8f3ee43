package trustwatch

import "path/filepath"

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	dataDir             string
	trustedSessionsPath string
	threatIntelPath     string
	baselinePath        string
}

// WithDataDir places all three store files under dir using the standard
// artifact names.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) { c.dataDir = dir }
}

// WithTrustedSessionsPath overrides the trusted-session registry location.
func WithTrustedSessionsPath(path string) Option {
	return func(c *clientConfig) { c.trustedSessionsPath = path }
}

// WithThreatIntelPath overrides the custom threat-intel location.
func WithThreatIntelPath(path string) Option {
	return func(c *clientConfig) { c.threatIntelPath = path }
}

// WithBaselinePath overrides the behavioral-baseline location.
func WithBaselinePath(path string) Option {
	return func(c *clientConfig) { c.baselinePath = path }
}

func (c *clientConfig) resolve(defaultDir string) {
	dir := c.dataDir
	if dir == "" {
		dir = defaultDir
	}
	if c.trustedSessionsPath == "" {
		c.trustedSessionsPath = filepath.Join(dir, "trusted-sessions.json")
	}
	if c.threatIntelPath == "" {
		c.threatIntelPath = filepath.Join(dir, "threat-intel.json")
	}
	if c.baselinePath == "" {
		c.baselinePath = filepath.Join(dir, "behavioral-baseline.json")
	}
}
