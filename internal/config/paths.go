package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GetGlobalConfigDir returns the path to the global configuration directory (~/.sprintreview).
// It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigName), nil
}

// GetTemplatesDir returns the directory searched for prompt overrides.
// Resolution order (first match wins):
// 1. Explicit config via "prompts.dir" (Viper/env/flag)
// 2. Local project directory: .sprintreview/templates (if exists)
// 3. Global: ~/.sprintreview/templates (if exists)
// An empty result means the built-in prompt is used.
func GetTemplatesDir() string {
	if dir := viper.GetString("prompts.dir"); dir != "" {
		return dir
	}

	local := filepath.Join(ConfigName, "templates")
	if info, err := os.Stat(local); err == nil && info.IsDir() {
		return local
	}

	dir, err := GetGlobalConfigDir()
	if err != nil {
		return ""
	}
	global := filepath.Join(dir, "templates")
	if info, err := os.Stat(global); err == nil && info.IsDir() {
		return global
	}
	return ""
}
