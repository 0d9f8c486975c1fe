/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/josephgoksu/SprintReview/internal/config"
	"github.com/josephgoksu/SprintReview/internal/ui"
	"github.com/spf13/cobra"
)

var (
	reviewSprintPath  string
	reviewMeetingPath string
	reviewOutput      string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Generate a review from sprint and meeting files",
	Long: `Generate one performance review from local files and print it.

Files may be JSON or YAML (.yaml/.yml).`,
	Example: `  sprintreview review --sprint task.json --meeting meeting.json
  sprintreview review --sprint sprint.yaml --meeting notes.yaml -o json`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewSprintPath, "sprint", config.DefaultFixtureSprintFile, "Sprint document")
	reviewCmd.Flags().StringVar(&reviewMeetingPath, "meeting", config.DefaultFixtureMeetingFile, "1 on 1 meeting document")
	reviewCmd.Flags().StringVarP(&reviewOutput, "output", "o", outputText, "Output format: text, json or yaml")
}

func runReview(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(reviewOutput); err != nil {
		return err
	}

	sprint, meeting, err := loadInputs(reviewSprintPath, reviewMeetingPath)
	if err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := buildGenerator(ctx, log)
	if err != nil {
		return err
	}

	result, err := gen.Generate(ctx, sprint, meeting)
	if err != nil {
		return err
	}

	return writeResult(cmd.OutOrStdout(), reviewOutput, ui.ReviewView{
		Result:  result,
		Sprint:  sprint,
		Meeting: meeting,
	})
}
