package drift

import (
	"strings"
	"time"
)

const (
	configurationRepositoryKeyConstant       = "repository"
	configurationBackendKeyConstant          = "backend"
	configurationMaxBlobBytesKeyConstant     = "max_blob_bytes"
	configurationWorkersKeyConstant          = "workers"
	configurationFetchTimeoutKeyConstant     = "fetch_timeout"
	configurationOutputKeyConstant           = "output"
	configurationIncludeUnchangedKeyConstant = "include_unchanged"
	configurationKeySeparatorConstant        = "."
	defaultRepositoryPathConstant            = "."
)

// CommandConfiguration captures configuration values for the drift command.
type CommandConfiguration struct {
	RepositoryPath   string        `mapstructure:"repository"`
	Backend          string        `mapstructure:"backend"`
	MaxBlobBytes     int64         `mapstructure:"max_blob_bytes"`
	Workers          int           `mapstructure:"workers"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"`
	Output           string        `mapstructure:"output"`
	IncludeUnchanged bool          `mapstructure:"include_unchanged"`
}

// DefaultCommandConfiguration provides baseline configuration values for the drift command.
func DefaultCommandConfiguration() CommandConfiguration {
	defaultOptions := DefaultOptions()
	return CommandConfiguration{
		RepositoryPath:   defaultRepositoryPathConstant,
		Backend:          string(BackendGitExecutable),
		MaxBlobBytes:     defaultOptions.MaxBlobBytes,
		Workers:          defaultOptions.Workers,
		FetchTimeout:     defaultOptions.FetchTimeout,
		Output:           string(OutputFormatText),
		IncludeUnchanged: true,
	}
}

// DefaultConfigurationValues produces Viper defaults for the drift command rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationRepositoryKeyConstant:       defaults.RepositoryPath,
		prefix + configurationBackendKeyConstant:          defaults.Backend,
		prefix + configurationMaxBlobBytesKeyConstant:     defaults.MaxBlobBytes,
		prefix + configurationWorkersKeyConstant:          defaults.Workers,
		prefix + configurationFetchTimeoutKeyConstant:     defaults.FetchTimeout.String(),
		prefix + configurationOutputKeyConstant:           defaults.Output,
		prefix + configurationIncludeUnchangedKeyConstant: defaults.IncludeUnchanged,
	}
}

// Sanitize trims textual values and restores defaults for blank or out-of-range entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	if len(sanitized.RepositoryPath) == 0 {
		sanitized.RepositoryPath = defaults.RepositoryPath
	}

	sanitized.Backend = strings.ToLower(strings.TrimSpace(configuration.Backend))
	if len(sanitized.Backend) == 0 {
		sanitized.Backend = defaults.Backend
	}

	sanitized.Output = strings.ToLower(strings.TrimSpace(configuration.Output))
	if len(sanitized.Output) == 0 {
		sanitized.Output = defaults.Output
	}

	if sanitized.MaxBlobBytes <= 0 {
		sanitized.MaxBlobBytes = defaults.MaxBlobBytes
	}
	if sanitized.Workers < minimumWorkerCountConstant {
		sanitized.Workers = minimumWorkerCountConstant
	}
	if sanitized.FetchTimeout < 0 {
		sanitized.FetchTimeout = 0
	}

	return sanitized
}

// ServiceOptions converts the configuration into Service options.
func (configuration CommandConfiguration) ServiceOptions() Options {
	return Options{
		MaxBlobBytes: configuration.MaxBlobBytes,
		Workers:      configuration.Workers,
		FetchTimeout: configuration.FetchTimeout,
	}
}
