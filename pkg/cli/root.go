package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	configFile string
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "batcomd",
	Short: "batcomd is the Batcomputer API server",
	Long: `batcomd serves the Batcomputer REST API: the gadget inventory, the
contact roster, secure GCPD file access, background activity logging,
and the Batcave HTML dashboards.

Configuration can be provided via flags, a YAML or JSON configuration
file, or the BATCOMD_API_KEY environment variable.`,
	// No Run function here means 'batcomd' with no args will print help text by default.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "f", "", "Configuration file path (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// printJSON writes indented JSON to stdout. When --json is active, only
// the JSON encoding of data is written; human-readable prose goes to
// stderr or is omitted.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
