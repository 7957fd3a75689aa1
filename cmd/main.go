package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "troubleshoot",
		Short: "Explain cloud platform errors and recommend fixes using an LLM",
		Long: `troubleshoot turns a structured cloud error report (platform, services,
error code, runtime, description) into an explanation and a numbered list of
recommended actions, either over HTTP or directly from the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(), newExplainCommand())

	return root
}
