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
	"github.com/josephgoksu/SprintReview/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the review HTTP server",
	Long: `Start the HTTP server. POST / (or /api/reviews) with
{"sprint_data": {...}, "meeting_data": {...}} returns the generated review.

With --fixtures the request body is validated but the review is computed from
the configured fixture files (server.fixtures.sprintFile / meetingFile).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", config.DefaultHost, "Address to bind")
	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().Bool("fixtures", false, "Evaluate the fixture files instead of the request body")
	serveCmd.Flags().String("ollama-url", "", "Ollama server URL (default http://localhost:11434)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.fixtures.enabled", serveCmd.Flags().Lookup("fixtures"))
	_ = viper.BindPFlag("llm.baseURL", serveCmd.Flags().Lookup("ollama-url"))
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvCfg, err := config.LoadServerConfig()
	if err != nil {
		return err
	}

	gen, err := buildGenerator(ctx, log)
	if err != nil {
		return err
	}

	srv, err := server.New(srvCfg, gen, log)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	log.Info("starting sprintreview",
		zap.String("version", GetVersion()),
		zap.String("addr", srvCfg.Addr()),
		zap.Bool("fixtures", srvCfg.Fixtures.Enabled))
	return srv.Run(ctx)
}
