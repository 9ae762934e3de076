// Package main implements the topicd CLI: a topic-routing chat loop with
// drift detection and file-aware context retrieval.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// configPath is the optional YAML config file.
	configPath string

	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "topicd",
	Short: "Topic-routing conversational memory",
	Long: `topicd routes chat messages into topics by embedding similarity,
detects conversational drift in the background, and augments prompts
with relevant files and project structure.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(chatCmd)
}
