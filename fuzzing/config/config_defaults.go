package config

import (
	"github.com/rs/zerolog"
)

// GetDefaultProjectConfig obtains a default configuration for a call generation run.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Generation: GenerationConfig{
			DictionaryWeight: 40,
			TargetSenders:    []string{},
			ExcludedSenders:  []string{},
			SenderRetryLimit: 100,
			CorpusPath:       "",
			TargetContracts:  []TargetContractConfig{},
		},
		Logging: LoggingConfig{
			Level:                zerolog.InfoLevel,
			EnableConsoleLogging: true,
			LogDirectory:         "",
		},
	}
}
