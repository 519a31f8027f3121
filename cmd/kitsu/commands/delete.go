package commands

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var (
		bulk   bool
		output outputFlags
	)

	cmd := &cobra.Command{
		Use:     "delete MODEL ID [ID...]",
		Aliases: []string{"remove"},
		Short:   "Delete resources",
		Long: `Delete a resource by id. Several ids, or --bulk, send a single bulk
delete to the collection.`,
		Example: `  kitsu delete libraryEntries 42
  kitsu delete libraryEntries 1 2 3`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // model and at least one id
		RunE: func(cmd *cobra.Command, args []string) error {
			model, ids := args[0], args[1:]

			format, err := outputFormat(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			var id any = ids[0]
			if bulk || len(ids) > 1 {
				id = ids
			}

			raw, err := client.Delete(cmd.Context(), model, id, nil)
			if err != nil {
				return err
			}

			if len(bytes.TrimSpace(raw)) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", model, strings.Join(ids, ", "))

				return nil
			}

			return render(cmd.OutOrStdout(), raw, format, output)
		},
	}

	cmd.Flags().BoolVar(&bulk, "bulk", false, "send a bulk delete even for a single id")
	output.register(cmd)

	return cmd
}
