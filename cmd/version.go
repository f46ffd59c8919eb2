package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/contactform/internal/version"
)

var (
	versionFormat   outputFormat
	versionShort    bool
	versionDetailed bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE:  runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	addOutputFlag(versionCmd.Flags(), &versionFormat)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersionCommand(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	switch versionFormat {
	case outputJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(version.GetBuildInfo())
	case outputYAML:
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(version.GetBuildInfo())
	}

	switch {
	case versionShort:
		fmt.Fprintln(out, version.GetVersion())
	case versionDetailed:
		fmt.Fprintln(out, version.GetDetailedVersion())
	default:
		fmt.Fprintf(out, "contactform %s\n", version.GetShortVersion())
	}

	return nil
}
