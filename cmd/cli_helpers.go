package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/josephgoksu/SprintReview/internal/config"
	"github.com/josephgoksu/SprintReview/internal/llm"
	"github.com/josephgoksu/SprintReview/internal/loader"
	"github.com/josephgoksu/SprintReview/internal/logger"
	"github.com/josephgoksu/SprintReview/internal/review"
	"github.com/josephgoksu/SprintReview/internal/ui"
	"github.com/josephgoksu/SprintReview/models"
	"github.com/josephgoksu/SprintReview/prompts"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func isVerbose() bool {
	return viper.GetBool("verbose")
}

func newLogger() (*zap.Logger, error) {
	level := viper.GetString("log.level")
	if isVerbose() {
		level = "debug"
	}
	return logger.New(logger.Options{
		Level:  level,
		Format: viper.GetString("log.format"),
	})
}

// loadBuilder returns the review prompt, honouring a template override.
func loadBuilder() (*prompts.Builder, error) {
	text, err := prompts.GetPrompt(prompts.KeyPerformanceReview, config.GetTemplatesDir())
	if err != nil {
		return nil, fmt.Errorf("load prompt template: %w", err)
	}
	return prompts.NewBuilder(text)
}

func buildGenerator(ctx context.Context, log *zap.Logger) (*review.Generator, error) {
	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, fmt.Errorf("configure LLM: %w", err)
	}
	chatModel, err := llm.NewChatModel(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	builder, err := loadBuilder()
	if err != nil {
		return nil, err
	}
	log.Debug("llm configured",
		zap.String("provider", string(llmCfg.Provider)),
		zap.String("model", llmCfg.Model),
		zap.String("base_url", llmCfg.BaseURL))
	return review.New(ctx, chatModel, builder, log, review.WithModelName(llmCfg.Model))
}

func loadInputs(sprintPath, meetingPath string) (models.Sprint, models.Meeting, error) {
	l := loader.NewOs()
	sprint, err := l.LoadSprint(sprintPath)
	if err != nil {
		return models.Sprint{}, models.Meeting{}, err
	}
	meeting, err := l.LoadMeeting(meetingPath)
	if err != nil {
		return models.Sprint{}, models.Meeting{}, err
	}
	return sprint, meeting, nil
}

func validateOutputFormat(format string) error {
	switch format {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: text, json, yaml)", format)
	}
}

// isTerminal reports whether w is a character device, so styling is safe.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func writeResult(w io.Writer, format string, view ui.ReviewView) error {
	switch format {
	case outputJSON:
		out, err := json.MarshalIndent(view.Result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view.Result); err != nil {
			return err
		}
		return enc.Close()
	case outputText:
		return ui.RenderReview(w, view, isTerminal(w))
	default:
		return validateOutputFormat(format)
	}
}
