package cmd

import (
	"github.com/crytic/gorgon/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger describes the logger used by CLI commands. It logs to console before a run's configured logging has
// been set up.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true)

var rootCmd = &cobra.Command{
	Use:   "gorgon",
	Short: "A randomized call generation engine for smart contract invariant fuzzing",
	Long:  "gorgon is a randomized call generation engine for smart contract invariant fuzzing",
}

func Execute() error {
	return rootCmd.Execute()
}
