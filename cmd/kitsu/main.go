package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mklemme/kitsu/cmd/kitsu/commands"
	"github.com/mklemme/kitsu/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "kitsu",
	Short: "JSON:API client for the Kitsu API",
	Long: `A command-line client for the Kitsu API and other JSON:API servers.

Models are written the way the API names them in code: "libraryEntries",
"users/1/libraryEntries" or "anime/1/episodes". They are converted to URL
paths and resource types for you.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commands.SetupLogger(cmd.ErrOrStderr())
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.kitsu/config.yml)")
	rootCmd.PersistentFlags().String(commands.KeyBaseURL, constants.DefaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().StringP(commands.KeyToken, "t", "", "OAuth2 access token")
	rootCmd.PersistentFlags().StringP(commands.KeyOutput, "o", "", "output format (table, json, yaml); table on a terminal, json otherwise")
	rootCmd.PersistentFlags().BoolP(commands.KeyVerbose, "v", false, "log requests and responses to stderr")
	rootCmd.PersistentFlags().String(commands.KeyLogFormat, "text", "log format (text, json)")
	rootCmd.PersistentFlags().String(commands.KeyResourceCase, "kebab", "URL casing (kebab, snake, none)")
	rootCmd.PersistentFlags().Bool(commands.KeyPluralize, true, "pluralise URL segments and resource types")
	rootCmd.PersistentFlags().Bool(commands.KeyCamelCaseTypes, true, "camelCase resource types in request bodies")
	rootCmd.PersistentFlags().Duration(commands.KeyTimeout, constants.DefaultHTTPTimeout, "HTTP request timeout")
	rootCmd.PersistentFlags().StringArrayP(commands.KeyHeader, "H", nil, "extra header for every request (Name: value)")

	// Bind flags to viper
	for _, key := range []string{
		"config",
		commands.KeyBaseURL,
		commands.KeyToken,
		commands.KeyOutput,
		commands.KeyVerbose,
		commands.KeyLogFormat,
		commands.KeyResourceCase,
		commands.KeyPluralize,
		commands.KeyCamelCaseTypes,
		commands.KeyTimeout,
		commands.KeyHeader,
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewGetCommand())
	rootCmd.AddCommand(commands.NewCreateCommand())
	rootCmd.AddCommand(commands.NewUpdateCommand())
	rootCmd.AddCommand(commands.NewDeleteCommand())
	rootCmd.AddCommand(commands.NewSelfCommand())
	rootCmd.AddCommand(commands.NewRequestCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Search config in ~/.kitsu/config.yml
		viper.AddConfigPath(filepath.Join(home, ".kitsu"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match, e.g. KITSU_BASE_URL
	viper.SetEnvPrefix("KITSU")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool(commands.KeyVerbose) {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.FormatError(err))
		os.Exit(1)
	}
}
