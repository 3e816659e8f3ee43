package intel

import "regexp"

// Severity grades how dangerous a matched signature is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity grade.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Match describes a threat signature that fired against evaluated text.
type Match struct {
	Pattern  string   `json:"pattern"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
}

type signature struct {
	re       *regexp.Regexp
	reason   string
	severity Severity
}

// builtin is the ordered built-in signature table, compiled once at init.
// Match returns the first hit, so earlier signatures shadow later ones:
// an IP:port literal fires before the netcat flag check even when a
// command contains both.
var builtin = []signature{
	{regexp.MustCompile(`pastebin\.com/raw/`), "Pastebin raw URL (common malware host)", SeverityHigh},
	{regexp.MustCompile(`raw\.githubusercontent\.com.*\.sh\s*\|\s*(?:ba)?sh`), "GitHub raw script piped to shell", SeverityMedium},
	{regexp.MustCompile(`(?:[\d]{1,3}\.){3}[\d]{1,3}:\d{4,5}`), "Direct IP:port connection (potential C2)", SeverityHigh},
	{regexp.MustCompile(`nc\s+-[a-z]*e|ncat.*-e|netcat.*-e`), "Netcat reverse shell", SeverityCritical},
	{regexp.MustCompile(`/dev/tcp/|/dev/udp/`), "Bash /dev/tcp socket (reverse shell)", SeverityCritical},
	{regexp.MustCompile(`mkfifo.*/tmp/.*\|.*nc`), "Named pipe reverse shell", SeverityCritical},
	{regexp.MustCompile(`python.*-c.*socket.*connect`), "Python reverse shell", SeverityCritical},
	{regexp.MustCompile(`base64\s+-d.*\|\s*(?:ba)?sh`), "Base64 decoded payload executed", SeverityCritical},
}
