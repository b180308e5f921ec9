package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/batcomd/batcomd/pkg/config"
)

// ValidationOutput represents JSON output format
type ValidationOutput struct {
	Valid bool   `json:"valid"`
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file without starting the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile == "" {
			return errors.New("no configuration file given, use --config")
		}

		out := ValidationOutput{Valid: true, Path: configFile}
		if _, err := config.Load(configFile); err != nil {
			out.Valid = false
			out.Error = err.Error()
		}

		if jsonOutput {
			if err := printJSON(out); err != nil {
				return err
			}
		} else if out.Valid {
			fmt.Printf("%s: configuration valid\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "%s: %s\n", configFile, out.Error)
		}

		if !out.Valid {
			return errors.New("configuration invalid")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
