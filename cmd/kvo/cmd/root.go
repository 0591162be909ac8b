// Package cmd holds the kvo command line: loading YAML or JSON documents into
// an observation graph, reading and writing key paths, and watching files.
package cmd

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

// newRootCmd builds the base command when called without any subcommands.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kvo",
		Short: "kvo observes key paths over YAML and JSON documents",
		Long: `
		kvo loads a YAML or JSON document into a graph of observable objects and
		collections. Key paths such as "owner.pets.name" can be read, set or
		watched. Each command prints the notifications an observer registered on
		those paths would receive.
		`,
		Version:      "0.1.0",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// glog's flags are parsed by cobra; this only marks the go flag set parsed.
			flag.CommandLine.Parse(nil)
		},
	}
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(newGetCmd(), newSetCmd(), newWatchCmd(), newDumpCmd())
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	err := newRootCmd().Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
