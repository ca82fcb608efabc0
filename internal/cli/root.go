// Package cli wires loom's cobra command surface to the Orchestrator:
// resolving the repository root, loading configuration and prompt
// descriptors, and driving an interactive terminal UI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	directory  string
	modelFlag  string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "loom [task]",
	Short: "Drive a multi-context AI coding assistant over your repository",
	Long: `loom runs a language-model-backed agent in an isolated git worktree:
it edits files, runs commands in a sandbox, and proposes the result back
to your main branch for review before integrating it.

Give it a task as the command's argument, or run it with no argument to
be prompted for one.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTask,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&directory, "directory", "C", ".", "repository to operate on")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override every context's default model")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "loom.yaml", "path to loom's configuration file, relative to --directory")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("loom %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
