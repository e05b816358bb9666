package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_SERVER_URL points at a running server, the suites skip when empty
	ServerURL string `envconfig:"CHAT_SERVER_URL"`
	// E2E_DEBUG_JSON allows dumping full HTTP request/response bodies
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
	// E2E_LIVENESS_TIMEOUT must match the server LIVENESS_TIMEOUT
	LivenessTimeout string `envconfig:"E2E_LIVENESS_TIMEOUT" default:"10s"`
	// E2E_SWEEP_INTERVAL must match the server SWEEP_INTERVAL
	SweepInterval string `envconfig:"E2E_SWEEP_INTERVAL" default:"15s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
