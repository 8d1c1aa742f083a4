// Command agedist prints the age distribution of a randomuser batch in the
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "agedist",
	Short:         "Age distribution of randomly generated people",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(newReportCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Something went wrong:", err)
		os.Exit(1)
	}
}
