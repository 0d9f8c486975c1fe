/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables debug logging.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sprintreview",
	Short: "SprintReview - LLM-assisted sprint performance reviews",
	Long: `SprintReview reads a sprint's tasks and the notes of a 1 on 1 meeting,
asks a language model to evaluate the employee and returns a structured review.

Run it as an HTTP service (serve) or one-shot from files (review).`,
	Version:      version,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// GetVersion returns the application version.
func GetVersion() string {
	return version
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.sprintreview.yaml or $HOME/.sprintreview.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider (ollama, openai, anthropic, gemini)")
	rootCmd.PersistentFlags().String("model", "", "Model to use (default depends on provider)")

	// Bind persistent flags to Viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", rootCmd.PersistentFlags().Lookup("model"))
}
