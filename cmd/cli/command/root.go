package command

// root.go defines the root command for the cinerate CLI and its global flags.

import (
	"context"
	"fmt"
	"os"
	"time"

	"cinerate/cmd/cli/authentication"
	"cinerate/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var (
	apiURL   string // Global flag for API server URL
	adminKey string // sent as X-Admin-Key on admin commands
	timeout  time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cinerate",
	Short: "cinerate - movie and series ratings from the command line",
	Long: `cinerate talks to the cinerate API server. Use it to:
- Sign up and sign in (the session token is kept in the OS keyring)
- Submit ratings and list the ratings of a media item
- Inspect and delete users and ratings as an administrator

Use "cinerate [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("CINERATE_API", "http://localhost:8080"), "API server URL")
	rootCmd.PersistentFlags().StringVar(&adminKey, "admin-key", os.Getenv("CINERATE_ADMIN_KEY"), "admin API key")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

// newClient returns a client carrying the stored session, if any.
func newClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	c.SetAdminKey(adminKey)
	if creds, err := authentication.GetTokens(); err == nil {
		c.SetToken(creds.Token)
	}
	return c
}
