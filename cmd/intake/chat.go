package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aretw0/intake/internal/cli"
	"github.com/aretw0/intake/internal/config"
	"github.com/aretw0/intake/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Play the intake dialog locally",
	Long: `Simulates a sender in the terminal: each line typed is one inbound SMS and the
bot's replies are printed instead of sent. Sessions and records are kept in memory.
Message overrides from the config file are honored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		phone, _ := cmd.Flags().GetString("phone")
		debug, _ := cmd.Flags().GetBool("debug")

		catalog := config.Default().Catalog()
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			catalog = cfg.Catalog()
		}

		opts := cli.ChatOptions{
			Phone:       phone,
			Catalog:     catalog,
			Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		}
		if debug {
			opts.Logger = logging.New(slog.LevelDebug, logging.FormatText)
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		return cli.Chat(sigCtx, os.Stdin, os.Stdout, opts)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("phone", "+15550000000", "Simulated sender phone number")
	chatCmd.Flags().Bool("debug", false, "Log conversation steps to stderr")
}
