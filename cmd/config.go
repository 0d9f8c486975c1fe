package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/josephgoksu/SprintReview/internal/config"
	"github.com/spf13/viper"
)

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present; a missing file is fine.
	_ = godotenv.Load()

	config.SetDefaults()

	// Environment variable handling must be set up BEFORE reading the config file.
	viper.SetEnvPrefix(config.EnvPrefix)                   // e.g., SPRINTREVIEW_SERVER_PORT
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // Replace dots with underscores in env var names
	viper.AutomaticEnv()

	cfgFileFlag := viper.GetString("config") // Value from --config flag

	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(config.ConfigName)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
		return
	}

	var notFound viper.ConfigFileNotFoundError
	switch {
	case errors.As(err, &notFound):
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
		}
	case cfgFileFlag != "" && errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
	default:
		// Config file was found but another error was produced (e.g., parsing error).
		fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
	}
}
