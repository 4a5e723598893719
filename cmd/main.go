// Command udpobfuscat runs the bidirectional UDP forwarding proxy.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"udpobfuscat/internal/app"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "udpobfuscat",
		Short:         "Bidirectional UDP proxy with a pluggable per-datagram transform.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Printf("udpobfuscat %s\n", version)
				os.Exit(0)
			}
			if configFile == "" {
				return fmt.Errorf("-c/--config-file is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, configFile)
		},
	}

	// Cobra's built-in Version field wires --version with no -V shorthand,
	// so -V/--version is handled by hand in PreRunE instead.
	root.Flags().StringVarP(&configFile, "config-file", "c", "", "path to the TOML config file (required)")
	root.Flags().BoolP("version", "V", false, "print the version and exit")

	return root
}
