package commands

import (
	"github.com/spf13/cobra"
)

// VersionInfo describes the build.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the kitsu CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			info := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
			}

			return renderSettings(cmd.OutOrStdout(), info, format, []setting{
				{"Version", version},
				{"Commit", commit},
				{"Built", date},
			})
		},
	}
}
