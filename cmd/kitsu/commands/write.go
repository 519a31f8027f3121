package commands

import (
	"github.com/spf13/cobra"
)

// NewCreateCommand creates the create command.
func NewCreateCommand() *cobra.Command {
	var (
		body   bodyFlags
		output outputFlags
	)

	cmd := &cobra.Command{
		Use:     "create MODEL",
		Aliases: []string{"post"},
		Short:   "Create resources",
		Long: `Create a resource from a plain JSON object, or several from an array.

Nested objects that carry an id are sent as relationships.`,
		Example: `  kitsu create libraryEntries -d '{"status":"current","anime":{"id":"1"},"user":{"id":"42"}}'
  kitsu create posts -f post.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := body.read(cmd.InOrStdin())
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

			resp, err := client.Create(cmd.Context(), args[0], data, nil)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), resp, format, output)
		},
	}

	body.register(cmd)
	output.register(cmd)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var (
		body   bodyFlags
		output outputFlags
		id     string
	)

	cmd := &cobra.Command{
		Use:     "update MODEL",
		Aliases: []string{"patch"},
		Short:   "Update resources",
		Long: `Update the resource named by the body's id, or several resources when the
body is an array. --id sets the id of a single object body.`,
		Example: `  kitsu update libraryEntries --id 42 -d '{"progress":7}'
  kitsu update libraryEntries -d '[{"id":"1","rating":16},{"id":"2","rating":18}]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := body.read(cmd.InOrStdin())
			if err != nil {
				return err
			}

			if object, ok := data.(map[string]any); ok && id != "" {
				object["id"] = id
			}

			format, err := outputFormat(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			resp, err := client.Update(cmd.Context(), args[0], data, nil)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), resp, format, output)
		},
	}

	body.register(cmd)
	output.register(cmd)
	cmd.Flags().StringVar(&id, "id", "", "id of the resource to update")

	return cmd
}
