package prompts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// PromptKey is a type for identifying specific prompts.
type PromptKey string

const (
	// KeyPerformanceReview is the key for the sprint performance review prompt.
	KeyPerformanceReview PromptKey = "PerformanceReview"
)

// promptConfig defines the default content and filename for a prompt.
type promptConfig struct {
	defaultContent string
	filename       string
}

// promptRegistry maps a PromptKey to its configuration.
var promptRegistry = map[PromptKey]promptConfig{
	KeyPerformanceReview: {
		defaultContent: PerformanceReviewPrompt,
		filename:       "performance_review_prompt.tmpl",
	},
}

// GetPrompt searches for a user-provided prompt file in templatesDir. If found,
// it returns the content of that file. Otherwise, it returns the built-in
// default.
func GetPrompt(key PromptKey, templatesDir string) (string, error) {
	return GetPromptFs(afero.NewOsFs(), key, templatesDir)
}

// GetPromptFs is GetPrompt over an arbitrary filesystem.
func GetPromptFs(fs afero.Fs, key PromptKey, templatesDir string) (string, error) {
	config, ok := promptRegistry[key]
	if !ok {
		return "", fmt.Errorf("unrecognized prompt key: %s", key)
	}

	if strings.TrimSpace(templatesDir) == "" {
		return config.defaultContent, nil
	}

	customPromptPath := filepath.Join(templatesDir, config.filename)
	exists, err := afero.Exists(fs, customPromptPath)
	if err != nil {
		return "", fmt.Errorf("error checking for custom prompt file at %s: %w", customPromptPath, err)
	}
	if !exists {
		return config.defaultContent, nil
	}

	content, err := afero.ReadFile(fs, customPromptPath)
	if err != nil {
		return "", fmt.Errorf("failed to read custom prompt file at %s: %w", customPromptPath, err)
	}
	return string(content), nil
}
