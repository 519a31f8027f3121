package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/mklemme/kitsu/pkg/naming"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const maskedTokenPrefix = 4

// settingParsers validate and convert config values before they are saved.
var settingParsers = map[string]func(string) (any, error){
	KeyBaseURL:        parseString,
	KeyToken:          parseString,
	KeyOutput:         parseOutput,
	KeyLogFormat:      parseString,
	KeyResourceCase:   parseResourceCase,
	KeyPluralize:      parseBool,
	KeyCamelCaseTypes: parseBool,
	KeyVerbose:        parseBool,
	KeyTimeout:        parseTimeout,
}

type setting struct {
	name  string
	value string
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in $HOME/.kitsu/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration from flags, environment and config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			current := map[string]any{}
			settings := make([]setting, 0, len(settingParsers))

			for _, key := range configKeys() {
				value := viper.Get(key)
				if key == KeyToken {
					value = maskToken(viper.GetString(key))
				}

				current[key] = value
				settings = append(settings, setting{key, fmt.Sprint(value)})
			}

			return renderSettings(cmd.OutOrStdout(), current, format, settings)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: "Set a configuration value in the config file. Keys: " +
			strings.Join(configKeys(), ", "),
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			path, err := configFilePath()
			if err != nil {
				return err
			}

			err = setConfigValue(path, key, value)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", key, path)

			return nil
		},
	}
}

func configKeys() []string {
	keys := make([]string, 0, len(settingParsers))
	for key := range settingParsers {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// configFilePath returns the file in use, or $HOME/.kitsu/config.yml.
func configFilePath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".kitsu", "config.yml"), nil
}

// setConfigValue validates value and writes it under key, keeping the rest
// of the file.
func setConfigValue(path, key, value string) error {
	parse, ok := settingParsers[key]
	if !ok {
		return fmt.Errorf("%w: %s (valid keys: %s)", constants.ErrUnknownConfigKey, key, strings.Join(configKeys(), ", "))
	}

	parsed, err := parse(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	settings, err := readConfigFile(path)
	if err != nil {
		return err
	}

	settings[key] = parsed

	err = writeConfigFile(path, settings)
	if err != nil {
		return err
	}

	viper.Set(key, parsed)

	return nil
}

func readConfigFile(path string) (map[string]any, error) {
	settings := map[string]any{}

	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, &settings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if settings == nil {
		settings = map[string]any{}
	}

	return settings, nil
}

func writeConfigFile(path string, settings map[string]any) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func parseString(value string) (any, error) {
	return value, nil
}

func parseBool(value string) (any, error) {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidBoolValue, value)
	}

	return parsed, nil
}

func parseTimeout(value string) (any, error) {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return nil, fmt.Errorf("invalid duration: %w", err)
	}

	return parsed.String(), nil
}

func parseResourceCase(value string) (any, error) {
	parsed, err := naming.ParseCase(value)
	if err != nil {
		return nil, err
	}

	return string(parsed), nil
}

func parseOutput(value string) (any, error) {
	switch value {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return value, nil
	default:
		return nil, fmt.Errorf("%w: %q", constants.ErrUnknownOutput, value)
	}
}

func maskToken(token string) string {
	if len(token) <= maskedTokenPrefix {
		return strings.Repeat("*", len(token))
	}

	return token[:maskedTokenPrefix] + strings.Repeat("*", len(token)-maskedTokenPrefix)
}

// renderSettings prints value as JSON or YAML, or settings as a
// property table.
func renderSettings(w io.Writer, value any, format string, settings []setting) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")

		return encoder.Encode(value)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)

		return encoder.Encode(value)
	default:
		table := tablewriter.NewWriter(w)
		table.Header("Property", "Value")

		for _, s := range settings {
			_ = table.Append(s.name, s.value)
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}
