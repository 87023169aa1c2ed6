// Command checkinctl: operasi check-in dari terminal (migrasi, sweep token, cetak QR statis).
package main

import (
	"fmt"
	"os"

	"gerejaku_backend/internals/configs"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "checkinctl",
		Short:   "Gerejaku check-in tooling",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configs.LoadEnv()
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(issueStaticCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
