package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovansuong/bao-cao-doanh-thu/config"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
)

var version = "1.0.0"

// appConfig is set by Execute before any command runs.
var appConfig = config.Default()

var rootCmd = &cobra.Command{
	Use:   "bao-cao",
	Short: "Daily revenue report OCR",
	Long: `bao-cao reads photographed or scanned daily revenue sheets, extracts the
date and the per-channel totals (Shopeefood, Be, GRAB, MOMO, CA) and writes
them to a spreadsheet.

Run "bao-cao serve" for the HTTP API or "bao-cao extract <folder>" to
process a folder of images from the command line.`,
	Version:      version,
	SilenceUsage: true,
}

// Execute runs the CLI with the loaded configuration.
func Execute(cfg *config.Config) {
	log := logger.WithComponent("cmd")

	if cfg != nil {
		appConfig = cfg
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
