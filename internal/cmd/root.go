// Package cmd implements the spyglass command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crimson-sun/spyglass/internal/logging"
	"github.com/crimson-sun/spyglass/pkg/spyglass"
)

var (
	cfgFile  string
	endpoint string
	token    string
	logLevel string
	jsonOut  bool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "spyglass",
	Short: "Spyglass — browse and search huge log archives",
	Long: `Spyglass browses log archives too large to open whole.
Big files are virtualized into fetch-on-demand line windows, searches
stream in incrementally, and completed result sets are cached locally.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.spyglass.yaml)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "archive API base URL")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "bearer token for the archive API")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable output")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".spyglass")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SPYGLASS")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	logging.Init(jsonOut, logging.ParseLevel(logLevel))
}

// resolveEndpoint returns the effective API base URL: flag, then config
// file, then environment.
func resolveEndpoint() string {
	if endpoint != "" {
		return endpoint
	}
	return viper.GetString("endpoint")
}

func resolveToken() string {
	if token != "" {
		return token
	}
	return viper.GetString("token")
}

// newClient builds the facade client the non-interactive subcommands use.
func newClient() (*spyglass.Client, error) {
	var opts []spyglass.Option
	if url := resolveEndpoint(); url != "" {
		opts = append(opts, spyglass.WithBaseURL(url))
	}
	if tok := resolveToken(); tok != "" {
		opts = append(opts, spyglass.WithToken(tok))
	}
	return spyglass.New(opts...)
}
