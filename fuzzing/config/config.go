package config

import (
	"encoding/json"
	"os"

	"github.com/crytic/gorgon/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration for a call generation run.
type ProjectConfig struct {
	// Generation describes the configuration used by the call generation engine.
	Generation GenerationConfig `json:"generation"`

	// Logging describes the configuration used for logging
	Logging LoggingConfig `json:"logging"`
}

// GenerationConfig describes the configuration options used by the call generation engine.
type GenerationConfig struct {
	// DictionaryWeight describes the relative weight, in [0, 100], given to drawing senders and argument values from
	// the dictionary of previously observed values rather than generating them uniformly at random.
	DictionaryWeight uint64 `json:"dictionaryWeight"`

	// TargetSenders describes an explicit allow-list of sender account addresses. If non-empty, generated senders
	// are drawn exclusively from this list and ExcludedSenders is not consulted.
	TargetSenders []string `json:"targetSenders"`

	// ExcludedSenders describes a deny-list of sender account addresses which must never be generated. Only
	// consulted when TargetSenders is empty.
	ExcludedSenders []string `json:"excludedSenders"`

	// SenderRetryLimit describes the number of sender draws attempted before sender selection gives up and reports
	// that no eligible sender could be found. This bounds the cost of rejection sampling against ExcludedSenders.
	SenderRetryLimit int `json:"senderRetryLimit"`

	// CorpusPath describes the file path of the corpus database used to persist observed values between runs. If
	// empty, no corpus is persisted.
	CorpusPath string `json:"corpusPath"`

	// TargetContracts describes contracts known at run start, to seed the deployed contract registry with.
	// Contracts deployed during the run are registered on top of these.
	TargetContracts []TargetContractConfig `json:"targetContracts"`
}

// TargetContractConfig describes a contract known at run start which call generation should target.
type TargetContractConfig struct {
	// Address describes the address the contract is deployed at, as a hex string.
	Address string `json:"address"`

	// AbiPath describes the file path of the contract's JSON ABI definition.
	AbiPath string `json:"abiPath"`

	// TargetMethods describes canonical method signatures (e.g. "setValue(uint256)") to restrict call generation
	// for this contract to. If empty, any state-changing method in the ABI is a candidate.
	TargetMethods []string `json:"targetMethods"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// EnableConsoleLogging describes whether console logging is enabled
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// LogDirectory describes the directory where structured log files will be outputted. If the string is empty,
	// then no log files are kept.
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration on top of defaults
	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements. All configuration faults are rejected here,
// before a run starts; generation never produces configuration errors mid-run.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the dictionary weight is a valid percentage.
	if p.Generation.DictionaryWeight > 100 {
		return errors.Errorf("dictionary weight must be in the range [0, 100]")
	}

	// Verify the sender retry limit is a positive number.
	if p.Generation.SenderRetryLimit <= 0 {
		return errors.Errorf("sender retry limit must be a positive number")
	}

	// Verify that senders are well-formed addresses.
	if _, err := utils.HexStringsToAddresses(p.Generation.TargetSenders); err != nil {
		return errors.Errorf("malformed target sender address(es)")
	}
	if _, err := utils.HexStringsToAddresses(p.Generation.ExcludedSenders); err != nil {
		return errors.Errorf("malformed excluded sender address(es)")
	}

	// Verify that each target contract has a well-formed address and an ABI path.
	for _, target := range p.Generation.TargetContracts {
		if _, err := utils.HexStringToAddress(target.Address); err != nil {
			return errors.Errorf("malformed target contract address: %v", target.Address)
		}
		if target.AbiPath == "" {
			return errors.Errorf("target contract %v must specify an ABI path", target.Address)
		}
	}
	return nil
}
