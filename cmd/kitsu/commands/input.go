package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mklemme/kitsu/internal/constants"
	"github.com/spf13/cobra"
)

// bodyFlags holds the --data and --data-file flags of a command.
type bodyFlags struct {
	data     string
	dataFile string
}

func (f *bodyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.data, "data", "d", "", "JSON body, an object or an array of objects")
	cmd.Flags().StringVarP(&f.dataFile, "data-file", "f", "", "read the JSON body from a file, - for stdin")
}

// read decodes the body. Numbers are kept as json.Number so ids and large
// integers survive unchanged.
func (f *bodyFlags) read(stdin io.Reader) (any, error) {
	if f.data != "" && f.dataFile != "" {
		return nil, constants.ErrDataConflict
	}

	var raw []byte

	switch {
	case f.data != "":
		raw = []byte(f.data)
	case f.dataFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		raw = data
	case f.dataFile != "":
		data, err := os.ReadFile(filepath.Clean(f.dataFile))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f.dataFile, err)
		}

		raw = data
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, constants.ErrNoData
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var body any

	err := decoder.Decode(&body)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	return body, nil
}
