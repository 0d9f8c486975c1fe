/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"

	"github.com/josephgoksu/SprintReview/internal/config"
	"github.com/spf13/cobra"
)

var (
	promptSprintPath  string
	promptMeetingPath string
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the rendered review prompt without calling the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		sprint, meeting, err := loadInputs(promptSprintPath, promptMeetingPath)
		if err != nil {
			return err
		}
		builder, err := loadBuilder()
		if err != nil {
			return err
		}
		text, err := builder.Build(sprint, meeting)
		if err != nil {
			return fmt.Errorf("build prompt: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	},
}

func init() {
	rootCmd.AddCommand(promptCmd)

	promptCmd.Flags().StringVar(&promptSprintPath, "sprint", config.DefaultFixtureSprintFile, "Sprint document")
	promptCmd.Flags().StringVar(&promptMeetingPath, "meeting", config.DefaultFixtureMeetingFile, "1 on 1 meeting document")
}
