package commands

import (
	"net/http"
	"strings"

	"github.com/mklemme/kitsu/pkg/kitsu"
	"github.com/spf13/cobra"
)

// NewRequestCommand creates the request command.
func NewRequestCommand() *cobra.Command {
	var (
		method string
		typ    string
		params []string
		body   bodyFlags
		output outputFlags
	)

	cmd := &cobra.Command{
		Use:   "request URL",
		Short: "Send a request to an explicit URL",
		Long: `Send a request to a path relative to the base URL, or to an absolute URL,
without converting a model name. Bodies of write requests are serialised
under --type.`,
		Example: `  kitsu request trending/anime
  kitsu request posts/1/likes -X POST --type postLikes -d '{"user":{"id":"42"}}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parseParams(params)
			if err != nil {
				return err
			}

			config := kitsu.RequestConfig{
				URL:    args[0],
				Type:   typ,
				Method: strings.ToUpper(method),
				Params: query,
			}

			if config.Method != http.MethodGet && config.Method != http.MethodDelete {
				config.Body, err = body.read(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			format, err := outputFormat(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			client, err := createClient()
			if err != nil {
				return err
			}

			resp, err := client.Request(cmd.Context(), config, nil)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), resp, format, output)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVar(&typ, "type", "", "resource type of the body")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter key=value")
	body.register(cmd)
	output.register(cmd)

	return cmd
}
