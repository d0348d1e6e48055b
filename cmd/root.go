package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ahd-playgrounds/google-task-cli/internal/config"
	"github.com/ahd-playgrounds/google-task-cli/internal/googleauth"
	"github.com/ahd-playgrounds/google-task-cli/internal/logger"
	"github.com/ahd-playgrounds/google-task-cli/internal/secrets"
)

var (
	verbose bool
	cfgFile string
	cfg     *config.Config

	// Version information
	version    string
	commitHash string
	buildTime  string
)

var rootCmd = &cobra.Command{
	Use:   "google-task-cli",
	Short: "Personal CLI for Google Photos and Google Tasks",
	Long: `A single-user command line tool for Google Photos and Google Tasks.

google-task-cli authenticates against Google with the OAuth2 authorization-code
flow, sourcing the OAuth client credentials from the 1Password CLI and keeping
the token as a JSON file in your config directory. Once authorized it can list
and upload Photos library items and print your task lists.`,
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, commit, buildTimeStr string) {
	version = v
	commitHash = commit
	buildTime = buildTimeStr

	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commitHash, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file directory (default is $HOME/.config/google-task-cli)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(photosCmd)
	rootCmd.AddCommand(tasksCmd)
}

func initConfig() {
	logger.Init(verbose)

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

// newAuthManager loads client credentials from the secrets CLI and builds
// the auth manager storing its token in the config dir. Shared by every
// command that talks to a Google API.
func newAuthManager(ctx context.Context) (*googleauth.Manager, error) {
	provider := secrets.NewProvider(cfg.Secrets.Vault, cfg.Secrets.Item)
	creds, err := provider.Lookup(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	if creds == nil {
		fmt.Println("Could not load OAuth client credentials from 1Password.")
		fmt.Println("Make sure the op CLI is installed and you are signed in:")
		fmt.Println("  op signin")
		fmt.Printf("and that the item %q in vault %q has client_id and client_secret fields.\n",
			cfg.Secrets.Item, cfg.Secrets.Vault)
		return nil, fmt.Errorf("no OAuth client credentials available")
	}

	configDir := cfgFile
	if configDir == "" {
		configDir, err = config.GetDefaultConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config directory: %w", err)
		}
	}

	return googleauth.NewManager(configDir, &googleauth.Options{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectPort: cfg.OAuth.RedirectPort,
		Timeout:      time.Duration(cfg.OAuth.TimeoutMinutes) * time.Minute,
	})
}
