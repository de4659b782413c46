package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/gorgon/cmd/exitcodes"
	"github.com/crytic/gorgon/fuzzing"
	"github.com/crytic/gorgon/fuzzing/config"
	"github.com/crytic/gorgon/fuzzing/contracts"
	"github.com/crytic/gorgon/fuzzing/corpus"
	"github.com/crytic/gorgon/fuzzing/valuegeneration"
	"github.com/crytic/gorgon/logging"
	"github.com/crytic/gorgon/utils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCmd represents the command provider for call generation
var generateCmd = &cobra.Command{
	Use:               "generate",
	Short:             "Generates randomized calls against the configured target contracts",
	Long:              `Generates randomized calls against the configured target contracts`,
	Args:              cmdValidateGenerateArgs,
	ValidArgsFunction: cmdValidGenerateArgs,
	RunE:              cmdRunGenerate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the generate command
	err := addGenerateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the generate command", err)
	}

	// Add the generate command and its associated flags to the root command
	rootCmd.AddCommand(generateCmd)
}

// cmdValidGenerateArgs will return which flags and sub-commands are valid for dynamic completion for the generate
// command
func cmdValidGenerateArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string

	// Examine all the flags, and add any flags that have not been set in the current command line
	// to a list of unused flags
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// When adding a flag to a command, include the "--" prefix to indicate that it is a flag
			// and not a positional argument.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	// Provide a list of flags that can be used in the current command (but have not been used yet)
	// for autocompletion suggestions
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateGenerateArgs makes sure that there are no positional arguments provided to the generate command
func cmdValidateGenerateArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("generate does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the generate command", err)
		return err
	}
	return nil
}

// cmdRunGenerate executes the CLI generate command: it reads and validates the project configuration, seeds the
// deployed contract registry from the configured target contracts, and emits the requested number of generated
// calls as JSON lines.
func cmdRunGenerate(cmd *cobra.Command, args []string) error {
	var projectConfig *config.ProjectConfig

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	// If --config was not used, look for `gorgon.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the generate command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		// Try to read the configuration file and throw an error if something goes wrong
		cmdLogger.Info("Reading the configuration file at: ", configPath)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			cmdLogger.Error("Failed to run the generate command", err)
			return err
		}
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed && existenceError != nil {
		cmdLogger.Error("Failed to run the generate command", existenceError)
		return existenceError
	}

	// Possibility #3: --config flag was not used and gorgon.json was not found, so use the default project config
	if !configFlagUsed && existenceError != nil {
		cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration instead", configPath))
		projectConfig = config.GetDefaultProjectConfig()
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithGenerateFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	// Validate the project configuration before starting the run
	err = projectConfig.Validate()
	if err != nil {
		cmdLogger.Error("Invalid project configuration", err)
		return err
	}

	// Obtain the number of calls to generate
	count, err := cmd.Flags().GetInt("count")
	if err != nil {
		cmdLogger.Error("Failed to run the generate command", err)
		return err
	}

	// Set up the run's logging per the project configuration
	logger, err := setupGlobalLogger(&projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to set up logging", err)
		return err
	}

	// Generate and emit the requested calls
	err = runGeneration(projectConfig, count, logger)
	if err != nil {
		logger.Error("Failed to run the generate command", err)
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeGenerationError)
	}
	return nil
}

// setupGlobalLogger replaces the global logger with one configured per the provided logging configuration, adding a
// structured log file writer if a log directory was configured. Returns the configured logger, or an error if one
// occurs.
func setupGlobalLogger(loggingConfig *config.LoggingConfig) (*logging.Logger, error) {
	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level, loggingConfig.EnableConsoleLogging)

	// If a log directory was configured, add a structured log file in it as a writer.
	if loggingConfig.LogDirectory != "" {
		if err := os.MkdirAll(loggingConfig.LogDirectory, 0755); err != nil {
			return nil, err
		}
		logFile, err := os.OpenFile(filepath.Join(loggingConfig.LogDirectory, "gorgon.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		logging.GlobalLogger.AddWriter(logFile)
	}
	return logging.GlobalLogger.NewSubLogger("module", "cmd"), nil
}

// runGeneration seeds the shared generation state from the project configuration, generates the requested number of
// calls, and emits each as a JSON line on standard output. Returns an error if one occurs.
func runGeneration(projectConfig *config.ProjectConfig, count int, logger *logging.Logger) error {
	// Seed the registry with the configured target contracts.
	registry := contracts.NewDeployedContractRegistry()
	for _, target := range projectConfig.Generation.TargetContracts {
		contract, err := loadTargetContract(&target)
		if err != nil {
			return err
		}
		registry.Register(contract)
	}

	// Resolve the sender filter rules from the configuration.
	targetSenders, err := utils.HexStringsToAddresses(projectConfig.Generation.TargetSenders)
	if err != nil {
		return err
	}
	excludedSenders, err := utils.HexStringsToAddresses(projectConfig.Generation.ExcludedSenders)
	if err != nil {
		return err
	}
	senders := fuzzing.NewSenderFilterSet(targetSenders, excludedSenders)

	// Create the run's value set, restoring previously observed values from the corpus if one was configured.
	valueSet := valuegeneration.NewValueSet()
	var corpusDB *corpus.Corpus
	if projectConfig.Generation.CorpusPath != "" {
		corpusDB, err = corpus.OpenCorpus(projectConfig.Generation.CorpusPath)
		if err != nil {
			return err
		}
		defer corpusDB.Close()

		valueSet, err = corpusDB.LoadValueSet()
		if err != nil {
			return err
		}
	}

	// Create the generator and emit the requested number of calls as JSON lines.
	generator := fuzzing.NewCallGenerator(registry, senders, valueSet, valuegeneration.NewCalldataDictionary(), &projectConfig.Generation, logger)
	err = emitCalls(generator, count, os.Stdout)
	if err != nil {
		return err
	}

	// Persist the value set back to the corpus for the next run.
	if corpusDB != nil {
		err = corpusDB.SaveValueSet(valueSet)
		if err != nil {
			return err
		}
	}

	logger.Info(fmt.Sprintf("Generated %d call(s)", generator.Metrics().CallsGenerated()))
	return nil
}

// loadTargetContract builds a registry entry from a configured target contract by parsing its JSON ABI definition
// from disk. Returns the contract, or an error if one occurs.
func loadTargetContract(target *config.TargetContractConfig) (*contracts.Contract, error) {
	address, err := utils.HexStringToAddress(target.Address)
	if err != nil {
		return nil, err
	}

	abiData, err := os.ReadFile(target.AbiPath)
	if err != nil {
		return nil, err
	}
	contractAbi, err := abi.JSON(strings.NewReader(string(abiData)))
	if err != nil {
		return nil, fmt.Errorf("could not parse ABI definition at %v: %v", target.AbiPath, err)
	}

	contract := contracts.NewContract(*address, contractAbi)
	if len(target.TargetMethods) > 0 {
		contract = contract.WithTargetedMethods(target.TargetMethods)
	}
	return contract, nil
}

// emitCalls generates the requested number of calls and writes each to the provided writer as a JSON line. Returns
// an error if one occurs.
func emitCalls(generator *fuzzing.CallGenerator, count int, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	for i := 0; i < count; i++ {
		call, err := generator.GenerateCall()
		if err != nil {
			return err
		}
		if err = encoder.Encode(call); err != nil {
			return err
		}
	}
	return nil
}
