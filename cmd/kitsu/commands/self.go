package commands

import (
	"github.com/spf13/cobra"
)

// NewSelfCommand creates the self command.
func NewSelfCommand() *cobra.Command {
	var (
		params []string
		output outputFlags
	)

	cmd := &cobra.Command{
		Use:     "self",
		Aliases: []string{"whoami"},
		Short:   "Show the authenticated user",
		Long:    "Show the user the access token belongs to. Requires --token.",
		Example: `  kitsu self -t $TOKEN -p fields[users]=name,slug`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			format, err := outputFormat(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			user, err := client.Self(cmd.Context(), query, nil)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), user, format, output)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value")
	output.register(cmd)

	return cmd
}
