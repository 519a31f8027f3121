package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/mklemme/kitsu/pkg/kitsu"
	"github.com/mklemme/kitsu/pkg/naming"
	"github.com/spf13/viper"
)

// Viper keys shared by flags, environment variables and the config file.
const (
	KeyBaseURL        = "base-url"
	KeyToken          = "token"
	KeyOutput         = "output"
	KeyVerbose        = "verbose"
	KeyLogFormat      = "log-format"
	KeyResourceCase   = "resource-case"
	KeyPluralize      = "pluralize"
	KeyCamelCaseTypes = "camel-case-types"
	KeyTimeout        = "timeout"
	KeyHeader         = "header"
)

// clientConfig builds the library configuration from viper.
func clientConfig() (*kitsu.Config, error) {
	resourceCase, err := naming.ParseCase(viper.GetString(KeyResourceCase))
	if err != nil {
		return nil, err
	}

	headers, err := parseHeaders(viper.GetStringSlice(KeyHeader))
	if err != nil {
		return nil, err
	}

	config := &kitsu.Config{
		BaseURL:               viper.GetString(KeyBaseURL),
		AccessToken:           viper.GetString(KeyToken),
		Headers:               headers,
		ResourceCase:          resourceCase,
		DisablePluralize:      viper.IsSet(KeyPluralize) && !viper.GetBool(KeyPluralize),
		DisableCamelCaseTypes: viper.IsSet(KeyCamelCaseTypes) && !viper.GetBool(KeyCamelCaseTypes),
		HTTPTimeout:           viper.GetDuration(KeyTimeout),
		UserAgent:             constants.DefaultUserAgent + "-cli",
	}

	if viper.GetBool(KeyVerbose) {
		config.Debug = true
		config.Logger = NewSlogLogger(defaultLogger())
	}

	return config, nil
}

// createClient builds a client from the current configuration.
func createClient() (*kitsu.Client, error) {
	config, err := clientConfig()
	if err != nil {
		return nil, err
	}

	client, err := kitsu.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// FormatError renders err for the terminal. JSON:API errors are listed one
// per line under the summary.
func FormatError(err error) string {
	var kitsuErr *kitsu.Error
	if !errors.As(err, &kitsuErr) || len(kitsuErr.Errors) < 2 {
		return "Error: " + err.Error()
	}

	var b strings.Builder

	b.WriteString("Error: " + err.Error())

	for i := range kitsuErr.Errors {
		b.WriteString("\n  - " + kitsuErr.Errors[i].Error())
	}

	return b.String()
}
