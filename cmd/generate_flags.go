package cmd

import (
	"fmt"

	"github.com/crytic/gorgon/fuzzing/config"
	"github.com/spf13/cobra"
)

// addGenerateFlags adds the various flags for the generate command
func addGenerateFlags() error {
	// Get the default project config
	defaultConfig := config.GetDefaultProjectConfig()

	// Prevent alphabetical sorting of usage message
	generateCmd.Flags().SortFlags = false

	// Config file
	generateCmd.Flags().String("config", "", "path to config file")

	// Number of calls to generate
	generateCmd.Flags().Int("count", 1, "number of calls to generate")

	// Dictionary weight
	generateCmd.Flags().Uint64("dictionary-weight", 0,
		fmt.Sprintf("relative weight, in [0, 100], given to dictionary-sourced values during generation (unless a config file is provided, default is %d)", defaultConfig.Generation.DictionaryWeight))

	// Target senders
	generateCmd.Flags().StringSlice("target-senders", []string{},
		"account address(es) to draw senders from exclusively")

	// Excluded senders
	generateCmd.Flags().StringSlice("excluded-senders", []string{},
		"account address(es) which must never be used as senders")

	// Corpus path
	generateCmd.Flags().String("corpus-path", "",
		fmt.Sprintf("file path for the corpus database used to persist observed values (unless a config file is provided, default is %q)", defaultConfig.Generation.CorpusPath))
	return nil
}

// updateProjectConfigWithGenerateFlags will update the given projectConfig with any CLI arguments that were
// provided to the generate command
func updateProjectConfigWithGenerateFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	var err error

	// If --dictionary-weight was used
	if cmd.Flags().Changed("dictionary-weight") {
		projectConfig.Generation.DictionaryWeight, err = cmd.Flags().GetUint64("dictionary-weight")
		if err != nil {
			return err
		}
	}

	// If --target-senders was used
	if cmd.Flags().Changed("target-senders") {
		projectConfig.Generation.TargetSenders, err = cmd.Flags().GetStringSlice("target-senders")
		if err != nil {
			return err
		}
	}

	// If --excluded-senders was used
	if cmd.Flags().Changed("excluded-senders") {
		projectConfig.Generation.ExcludedSenders, err = cmd.Flags().GetStringSlice("excluded-senders")
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
