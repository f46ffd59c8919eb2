package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/contactform/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to .contactform.yml, or to the given path.
An existing file is left alone unless --force is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultFileName
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.WriteDefault(path, initForce); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
	return nil
}
