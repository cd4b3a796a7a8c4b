// Package cli provides the command-line interface for Palettist.
package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/palettist/palettist/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// Global log level flag
	globalLogLevel string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "palettist",
		Short: "A colour palette extraction and harmony analysis tool",
		Long: `Palettist extracts colour palettes from images and scores them against
classic colour-harmony archetypes.

Palettes are built in perceptual CIELAB space with a choice of clustering
strategies, and each palette can be analysed for complementary, triadic,
square, split-complementary, analogous and monochromatic structure.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Accept American spellings for the colour flags.
	rootCmd.SetGlobalNormalizationFunc(normaliseFlagName)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "warn", "log level (trace, debug, info, warn, error, off)")

	// Set version template
	rootCmd.SetVersionTemplate(version.String() + "\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(compareCmd)
}

// normaliseFlagName maps American flag spellings onto the canonical
// names, so --colors works everywhere --colours does.
func normaliseFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "colors" {
		name = "colours"
	}
	return pflag.NormalizedName(name)
}

// newLogger builds the application logger from the global log level flag.
func newLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "palettist",
		Level:  hclog.LevelFromString(globalLogLevel),
		Output: os.Stderr,
	})
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}
