package main

import (
	"context"

	"github.com/aretw0/intake/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SMS webhook server",
	Long: `Starts the HTTP server exposing POST /webhook for the SMS gateway, GET /health
and GET /metrics. On SIGINT or SIGTERM it stops accepting requests and waits for
queued conversation steps to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr, _ = cmd.Flags().GetString("addr")
		}

		logger := cli.NewLogger(cfg)

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		app, err := cli.Build(sigCtx, cfg, logger)
		if err != nil {
			return err
		}
		return cli.Serve(sigCtx, app)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", ":8000", "Address to listen on (overrides server.addr)")
}
