package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for gdprscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gdprscan",
		Short: "GDPR compliance scanner for websites",
		Long: `gdprscan audits websites for GDPR and ePrivacy compliance.

It loads each page in a headless Chrome, observes cookies, trackers and
third-party requests before and after accepting the consent banner, and
checks the privacy policy, data collection forms, security headers, the TLS
certificate and transfers to US services.

Every finished scan is stored in a local history database so that later
scans of the same site can be compared.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and detailed reports")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
