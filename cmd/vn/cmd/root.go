package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"voicenotes/cmd/vn/cmd/serve"
	"voicenotes/cmd/vn/cmd/validate"
	"voicenotes/cmd/vn/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vn",
	Short: "Secure ingestion service for dictated voice notes",
	Long: `voicenotes ingests untrusted audio uploads, validates them against a
strict security pipeline (filename sanitization, extension allow-list,
content signature verification, malware heuristics), transcribes them and
stores the resulting notes.`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(validate.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
