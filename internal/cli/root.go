// Package cli implements the sheria CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/sheria/internal/config"
)

var v = config.New()

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "sheria",
	Short: "Legal research assistant for Kenyan law",
	Long:  "A terminal client for the Sheria legal research service. Chat sessions and sign-in state are kept in a local SQLite file.",
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.StringP("db", "d", "", "State database path (default: $SHERIA_DB or ~/.sheria/state.db)")
	flags.StringP("format", "f", "json", "Output format: json or text")
	flags.String("api-url", "", "Backend base URL (default: $SHERIA_API_URL or http://localhost:8000/api)")
	flags.String("log-level", "", "Log level: debug, info, warn, error, off")
	flags.Bool("log-pretty", false, "Human-readable log output")
	flags.Bool("ephemeral", false, "Keep state in memory only")

	bind(config.KeyDB, "db")
	bind(config.KeyFormat, "format")
	bind(config.KeyAPIURL, "api-url")
	bind(config.KeyLogLevel, "log-level")
	bind(config.KeyLogPretty, "log-pretty")
	bind(config.KeyEphemeral, "ephemeral")
}

// bind ties a viper key to a persistent flag. Unset flags fall through to
// env, config file and defaults.
func bind(key, flag string) {
	if err := v.BindPFlag(key, RootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
