package cmd

import (
	"fmt"

	"github.com/crytic/gorgon/fuzzing/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Get the default project config
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	initCmd.Flags().SortFlags = false

	// Output path for configuration
	initCmd.Flags().String("out", "", "output path for the new project configuration file")

	// Dictionary weight
	initCmd.Flags().Uint64("dictionary-weight", 0,
		fmt.Sprintf("relative weight, in [0, 100], given to dictionary-sourced values during generation (default is %d)", defaultConfig.Generation.DictionaryWeight))

	// Corpus path
	initCmd.Flags().String("corpus-path", "",
		fmt.Sprintf("file path for the corpus database used to persist observed values (default is %q)", defaultConfig.Generation.CorpusPath))
	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to
// the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// If --dictionary-weight was used
	if cmd.Flags().Changed("dictionary-weight") {
		projectConfig.Generation.DictionaryWeight, err = cmd.Flags().GetUint64("dictionary-weight")
		if err != nil {
			return err
		}
	}

	// If --corpus-path was used
	if cmd.Flags().Changed("corpus-path") {
		projectConfig.Generation.CorpusPath, err = cmd.Flags().GetString("corpus-path")
		if err != nil {
			return err
		}
	}
	return nil
}
