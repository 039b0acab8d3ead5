// Package featureflags evaluates the FEATURE_FLAGS switches.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags the service checks.
const (
	VIPGate  = "vip_gate"
	Comments = "comments"
)

// Defaults apply to flags missing from the configured list.
var Defaults = map[string]string{
	VIPGate:  "on",
	Comments: "on",
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "vip_gate=on,comments=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config
// string layered over Defaults.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		out[k] = v
	}

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given visitor.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic per-visitor rollout, e.g. 25%)
func (m *Manager) Enabled(name, visitorID string) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if visitorID == "" {
		return false
	}
	return rolloutBucket(name, visitorID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one visitor.
func (m *Manager) Snapshot(visitorID string) map[string]bool {
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, visitorID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, visitorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + visitorID))
	return int(h.Sum32() % 100)
}
