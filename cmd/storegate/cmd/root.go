package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storegate",
	Short: "Storegate serves the storefront customer-account workflows",
	Long: `Storegate serves the customer-facing account workflows of the storefront:
login, password recovery via security questions, and the password-reset step.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
