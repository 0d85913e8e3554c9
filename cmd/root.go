package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/mmkv/cmd/kv"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "mmkv",
		Short: "memory-mapped key-value store",
		Long: fmt.Sprintf(`mmkv (v%s)

A crash-resilient key-value store in a single memory-mapped file.
Every completed write survives a crash of the process; the capacity
is fixed when the file is created.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of mmkv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mmkv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
