package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	revokeFlag bool
	statusOnly bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google authentication",
	Long: `Authenticate with Google using the OAuth 2.0 authorization-code flow.

The OAuth client credentials are read from the 1Password CLI (configure the
vault and item in the config file, or via GOOGLE_CLI_VAULT / GOOGLE_CLI_ITEM).
A browser window opens for consent; the redirect is caught on a local port
and the resulting token is written to token.json in the config directory,
replacing any previous token.

Examples:
  google-task-cli auth              # Run the browser authorization flow
  google-task-cli auth --status     # Check authentication status
  google-task-cli auth --revoke     # Remove the local token`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&revokeFlag, "revoke", false, "remove the local token")
	authCmd.Flags().BoolVar(&statusOnly, "status", false, "check authentication status only")
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	authManager, err := newAuthManager(ctx)
	if err != nil {
		return err
	}

	if statusOnly {
		if authManager.HasValidToken() {
			fmt.Println("Authentication: Valid")
		} else {
			fmt.Println("Authentication: Required")
		}
		return nil
	}

	if revokeFlag {
		fmt.Println("Clearing authentication...")
		if err := authManager.ClearToken(); err != nil {
			return fmt.Errorf("failed to clear authentication: %w", err)
		}
		fmt.Println("Authentication cleared successfully")
		return nil
	}

	if authManager.HasValidToken() {
		fmt.Println("Already authenticated with Google")
		fmt.Println("Use --revoke to re-authenticate or --status to check status")
		return nil
	}

	fmt.Println("Starting browser authorization...")
	if _, err := authManager.Authorize(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Println("Authentication successful!")
	fmt.Printf("Token saved to %s\n", authManager.TokenPath())
	fmt.Println("You can now run 'google-task-cli photos list' or 'google-task-cli tasks'.")

	return nil
}
