package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvIndexURL  = "FAITHINDEX_INDEX_URL"
	EnvUserAgent = "FAITHINDEX_USER_AGENT"
	EnvTimeout   = "FAITHINDEX_TIMEOUT"
	EnvVerbose   = "FAITHINDEX_VERBOSE"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding env vars are set. Env takes precedence over a config file;
// flags are applied afterwards and win over both.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := strings.TrimSpace(os.Getenv(EnvIndexURL)); v != "" {
		cfg.IndexURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvUserAgent)); v != "" {
		cfg.UserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		if d, ok := parseTimeout(v); ok {
			cfg.Timeout = d
		} else {
			log.Warn().Str("env", EnvTimeout).Str("value", v).Msg("ignoring invalid timeout")
		}
	}

	// Booleans override when env present and truthy/falsey
	if s := strings.ToLower(strings.TrimSpace(os.Getenv(EnvVerbose))); s != "" {
		switch s {
		case "1", "true", "yes", "on":
			cfg.Verbose = true
		case "0", "false", "no", "off":
			cfg.Verbose = false
		}
	}
}

// parseTimeout accepts a Go duration ("30s") or a bare number of seconds.
func parseTimeout(s string) (time.Duration, bool) {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}
