package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/josephgoksu/SprintReview/models"
	"github.com/spf13/viper"
)

// FixtureConfig makes the server evaluate fixed local files instead of the
// request body. The body is still validated.
type FixtureConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	SprintFile  string `mapstructure:"sprintFile" validate:"required_if=Enabled true"`
	MeetingFile string `mapstructure:"meetingFile" validate:"required_if=Enabled true"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	RequestTimeout  time.Duration `mapstructure:"requestTimeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout" validate:"gt=0"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins" validate:"dive,required"`
	Fixtures        FixtureConfig `mapstructure:"fixtures"`
}

// Addr returns host:port for net.Listen.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadServerConfig reads the server section from Viper and validates it.
// Keys are read one by one so flags, env vars, the config file and defaults
// all take part in precedence.
func LoadServerConfig() (ServerConfig, error) {
	cfg := ServerConfig{
		Host:            viper.GetString("server.host"),
		Port:            viper.GetInt("server.port"),
		RequestTimeout:  viper.GetDuration("server.requestTimeout"),
		ShutdownTimeout: viper.GetDuration("server.shutdownTimeout"),
		AllowedOrigins:  viper.GetStringSlice("server.allowedOrigins"),
		Fixtures: FixtureConfig{
			Enabled:     viper.GetBool("server.fixtures.enabled"),
			SprintFile:  viper.GetString("server.fixtures.sprintFile"),
			MeetingFile: viper.GetString("server.fixtures.meetingFile"),
		},
	}
	if err := models.ValidateStruct(cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server config: %w", err)
	}
	return cfg, nil
}
