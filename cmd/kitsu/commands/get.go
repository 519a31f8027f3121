package commands

import (
	"fmt"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/mklemme/kitsu/pkg/jsonapi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		params []string
		output outputFlags
	)

	cmd := &cobra.Command{
		Use:     "get MODEL [MODEL...]",
		Aliases: []string{"fetch"},
		Short:   "Fetch resources",
		Long: `Fetch a collection, a resource or a relationship of a resource.

Several models are fetched concurrently and printed in the order given.`,
		Example: `  kitsu get anime -p filter[text]=bebop -p page[limit]=5
  kitsu get anime/1 -p include=categories
  kitsu get users/1/libraryEntries --jq '.data[].status'`,
		Args: cobra.MinimumNArgs(1),
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

			results := make([]*jsonapi.Response, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(constants.DefaultConcurrencyLimit)

			for i, model := range args {
				i, model := i, model
				g.Go(func() error {
					resp, err := client.Get(ctx, model, query, nil)
					if err != nil {
						return fmt.Errorf("failed to get %s: %w", model, err)
					}

					results[i] = resp

					return nil
				})
			}

			err = g.Wait()
			if err != nil {
				return err
			}

			for _, resp := range results {
				err := render(cmd.OutOrStdout(), resp, format, output)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value, brackets nest (filter[text]=bebop)")
	output.register(cmd)

	return cmd
}
