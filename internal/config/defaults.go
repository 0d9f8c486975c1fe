// Package config provides centralized configuration for SprintReview.
// All default values should be defined here to ensure a single source of truth.
package config

import (
	"time"

	"github.com/josephgoksu/SprintReview/internal/llm"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. SPRINTREVIEW_SERVER_PORT.
	EnvPrefix = "SPRINTREVIEW"

	// ConfigName is the config file base name (.sprintreview.yaml).
	ConfigName = ".sprintreview"
)

// Server defaults
const (
	DefaultHost            = "localhost"
	DefaultPort            = 8000
	DefaultRequestTimeout  = 3 * time.Minute
	DefaultShutdownTimeout = 10 * time.Second

	// Compatibility mode reads these instead of the request body.
	DefaultFixtureSprintFile  = "task.json"
	DefaultFixtureMeetingFile = "meeting.json"
)

// SetDefaults registers default values for every known key.
func SetDefaults() {
	viper.SetDefault("llm.provider", string(llm.DefaultProvider))
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.timeout", llm.DefaultTimeout)

	viper.SetDefault("server.host", DefaultHost)
	viper.SetDefault("server.port", DefaultPort)
	viper.SetDefault("server.requestTimeout", DefaultRequestTimeout)
	viper.SetDefault("server.shutdownTimeout", DefaultShutdownTimeout)
	viper.SetDefault("server.allowedOrigins", []string{})
	viper.SetDefault("server.fixtures.enabled", false)
	viper.SetDefault("server.fixtures.sprintFile", DefaultFixtureSprintFile)
	viper.SetDefault("server.fixtures.meetingFile", DefaultFixtureMeetingFile)

	viper.SetDefault("prompts.dir", "")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}
