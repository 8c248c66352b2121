// Crisisd is the crisis-response orchestration daemon.
//
// It runs crisis workflows (analyze, plan, recommend, draft) up to a
// mandatory human-approval gate and exposes them over an HTTP API.
//
// Usage:
//
//	# Start the daemon with defaults
//	crisisd serve
//
//	# Start with a config file
//	crisisd serve --config config.yaml
//
//	# Configure via environment
//	CRISISD_SERVER_PORT=8470 CRISISD_LLM_MODEL=claude-3-sonnet-20240229 crisisd serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "crisisd",
	Short: "Crisis-response orchestration daemon",
	Long: `crisisd runs automated crisis-response workflows for shipyard operations.
Each workflow analyzes a crisis, generates costed repair options, recommends
one, drafts stakeholder communications, and suspends for human approval
before any action is executed.`,
	Version: version,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("crisisd by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
