// ABOUTME: Root command for the freelance CLI
// ABOUTME: Declares global flags and binds them to viper configuration keys

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Modhak129/WEB-freelance/internal/config"
	"github.com/Modhak129/WEB-freelance/internal/tokenstore"
)

var (
	v          = viper.New()
	jsonOutput bool
)

// rootCmd is the base command. Without a subcommand it opens the TUI.
var rootCmd = &cobra.Command{
	Use:   "freelance",
	Short: "Terminal client for the freelance marketplace",
	Long: `freelance browses projects, places bids and manages your marketplace
profile from the terminal. Run it without a subcommand for the interactive UI.

Exit codes:
  0 - Success
  1 - Refused (not logged in, not permitted, invalid input)
  2 - Error (connectivity, unexpected server response)

Environment Variables:
  FREELANCE_API_URL       Marketplace API root (default: http://localhost:5000/api)
  FREELANCE_TOKEN_STORE   Where the session token is kept: file, memory or redis
  FREELANCE_REDIS_ADDR    Redis address for the redis token store
  FREELANCE_LOG_LEVEL     trace, debug, info, warn or error
  FREELANCE_NERD_FONTS    Set to 1 to force Nerd Font icons`,
	Run: func(cmd *cobra.Command, args []string) {
		exit(runTUI)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("api-url", "", "Marketplace API root (overrides FREELANCE_API_URL)")
	pf.BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	pf.String("token-store", "", "Token storage backend: file, memory or redis")
	pf.String("profile", "", "Session profile name, namespaces the redis token key")
	pf.String("redis-addr", "", "Redis address for the redis token store")
	pf.String("config-dir", "", "Directory for the token, logs and recent searches")
	pf.String("log-level", "", "Log level written to the debug log")
	pf.Duration("timeout", 0, "Per-request timeout")

	bindings := map[string]string{
		config.KeyAPIURL:         "api-url",
		config.KeyTokenStore:     "token-store",
		config.KeyProfile:        "profile",
		config.KeyRedisAddr:      "redis-addr",
		config.KeyConfigDir:      "config-dir",
		config.KeyLogLevel:       "log-level",
		config.KeyRequestTimeout: "timeout",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, pf.Lookup(flag))
	}
}

// loadConfig resolves the configuration from flags, environment, .env and config.yaml
func loadConfig() (*config.Config, error) {
	config.SetDefaults(v, tokenstore.DefaultConfigDir())
	return config.Load(v, ".env")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// exit runs fn with a context cancelled on SIGINT/SIGTERM and exits with its code
func exit(fn func(ctx context.Context) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := fn(ctx)
	cancel()
	if code != 0 {
		os.Exit(code)
	}
}
