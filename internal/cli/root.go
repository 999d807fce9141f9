package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "chefgenie",
		Short: "CLI tool for the Chef Genie API",
		Long: `chefgenie is a CLI tool for playing Chef Genie through its JSON API.

Think of a dish and let the genie guess it. The CLI covers accounts, the game
itself, audio settings, the dish catalogue, owner administration and the live
event stream.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			client = NewClient(cfg.ServerURL, cfg.Token)
			if cfg.Verbose {
				client.SetTrace(os.Stderr)
			}
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: CHEFGENIE_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Client token (env: CHEFGENIE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: CHEFGENIE_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newClientCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newGameCmd())
	rootCmd.AddCommand(newOwnerCmd())
	rootCmd.AddCommand(newAudioCmd())
	rootCmd.AddCommand(newDishesCmd())
	rootCmd.AddCommand(newMatchCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Client token commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Issue a fresh client token and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newClientToken()
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	})

	return cmd
}

// ensureClient issues and saves a client token when none is configured
func ensureClient() error {
	if cfg.Token != "" {
		return nil
	}
	_, err := newClientToken()
	return err
}

func newClientToken() (ClientToken, error) {
	var result ClientToken
	if err := client.Post("/api/v1/clients", nil, &result); err != nil {
		return result, err
	}
	if err := cfg.SaveToken(result.ClientToken); err != nil {
		return result, fmt.Errorf("failed to save token: %w", err)
	}
	client.SetToken(result.ClientToken)
	return result, nil
}
