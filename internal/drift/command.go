package drift

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/eolcdt/internal/utils"
	flagutils "github.com/temirov/eolcdt/internal/utils/flags"
	pathutils "github.com/temirov/eolcdt/internal/utils/path"
)

const (
	commandUseNameConstant                 = "eolcdt"
	commandUsageTemplateConstant           = commandUseNameConstant + " <treeish1> <treeish2>"
	commandExampleTemplateConstant         = "eolcdt main feature/login --repository ~/Development/service --output json"
	commandShortDescriptionConstant        = "Detect line-ending drift between two branches before merging them"
	commandLongDescriptionConstant         = "eolcdt resolves the merge base of two branches, selects the files both branches modified, and reports for every such file whether its LF/CRLF convention changed on either side. Files that are binary, mixed, or undetermined on the merge base are reported without inspecting the branches."
	requiredTreeishCountConstant           = 2
	missingTreeishMessageConstant          = "at least two treeish arguments are required (the branches that will be merged)"
	extraTreeishTemplateConstant           = "exactly two treeish arguments are accepted, received %d"
	repositoryFlagNameConstant             = "repository"
	repositoryFlagUsageConstant            = "Path inside the repository to analyze"
	backendFlagNameConstant                = "backend"
	backendFlagDescriptionConstant         = "Read history through the git executable or in process with go-git"
	maxBlobBytesFlagNameConstant           = "max-blob-bytes"
	maxBlobBytesFlagUsageConstant          = "Maximum number of bytes classified per file revision"
	workersFlagNameConstant                = "workers"
	workersFlagUsageConstant               = "Number of paths analyzed concurrently"
	fetchTimeoutFlagNameConstant           = "fetch-timeout"
	fetchTimeoutFlagUsageConstant          = "Deadline for reading one file revision (0 disables)"
	outputFlagNameConstant                 = "output"
	outputFlagDescriptionConstant          = "Report format"
	includeUnchangedFlagNameConstant       = "include-unchanged"
	includeUnchangedFlagUsageConstant      = "Report files whose line endings did not change"
	serviceCreationFailureTemplateConstant = "unable to create drift service: %w"
	repositoryFailureTemplateConstant      = "unable to open repository at %s: %w"
	analysisRequestedMessageConstant       = "line-ending analysis requested"
	logFieldBackendConstant                = "backend"
	logFieldRepositoryConstant             = "repository"
	logFieldOutputConstant                 = "output"
	logFieldConfigurationFileConstant      = "config_file"
)

// ErrMissingTreeish indicates fewer than two treeish arguments were supplied.
var ErrMissingTreeish = errors.New(missingTreeishMessageConstant)

// LoggerProvider yields a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the drift command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	RepositoryFactory            RepositoryFactory
	HomeExpander                 *pathutils.HomeExpander
}

type commandFlagValues struct {
	includeUnchanged bool
}

// Build constructs the drift command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	defaults := DefaultCommandConfiguration()
	flagValues := &commandFlagValues{}

	command := &cobra.Command{
		Use:           commandUsageTemplateConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		Args:          cobra.ArbitraryArgs,
		Example:       commandExampleTemplateConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, arguments, flagValues)
		},
	}

	flagSet := command.Flags()
	flagSet.String(repositoryFlagNameConstant, defaults.RepositoryPath, repositoryFlagUsageConstant)
	flagutils.AddChoiceFlag(flagSet, backendFlagNameConstant, defaults.Backend, BackendChoices(), backendFlagDescriptionConstant)
	flagSet.Int64(maxBlobBytesFlagNameConstant, defaults.MaxBlobBytes, maxBlobBytesFlagUsageConstant)
	flagSet.Int(workersFlagNameConstant, defaults.Workers, workersFlagUsageConstant)
	flagSet.Duration(fetchTimeoutFlagNameConstant, defaults.FetchTimeout, fetchTimeoutFlagUsageConstant)
	flagutils.AddChoiceFlag(flagSet, outputFlagNameConstant, defaults.Output, OutputFormatChoices(), outputFlagDescriptionConstant)
	flagutils.AddToggleFlag(flagSet, &flagValues.includeUnchanged, includeUnchangedFlagNameConstant, "", defaults.IncludeUnchanged, includeUnchangedFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, flagValues *commandFlagValues) error {
	if len(arguments) < requiredTreeishCountConstant {
		_ = command.Help()
		return ErrMissingTreeish
	}
	if len(arguments) > requiredTreeishCountConstant {
		_ = command.Help()
		return fmt.Errorf(extraTreeishTemplateConstant, len(arguments))
	}

	configuration, overrideError := builder.applyFlagOverrides(command, builder.resolveConfiguration(), flagValues)
	if overrideError != nil {
		return overrideError
	}

	backend, backendError := ParseBackend(configuration.Backend)
	if backendError != nil {
		return backendError
	}

	renderer, rendererError := NewRenderer(RenderOptions{
		Format:           OutputFormat(configuration.Output),
		IncludeUnchanged: configuration.IncludeUnchanged,
	})
	if rendererError != nil {
		return rendererError
	}

	logger := builder.resolveLogger()
	repositoryPath := builder.resolveHomeExpander().Expand(configuration.RepositoryPath)

	configurationFilePath, _ := utils.ConfigurationFileFromContext(command.Context())
	logger.Debug(
		analysisRequestedMessageConstant,
		zap.String(logFieldBackendConstant, string(backend)),
		zap.String(logFieldRepositoryConstant, repositoryPath),
		zap.String(logFieldOutputConstant, configuration.Output),
		zap.String(logFieldConfigurationFileConstant, configurationFilePath),
		zap.String(logFieldTreeish1Constant, arguments[0]),
		zap.String(logFieldTreeish2Constant, arguments[1]),
	)

	repositoryFactory := builder.RepositoryFactory
	if repositoryFactory == nil {
		repositoryFactory = ResolveRepository
	}

	repository, repositoryError := repositoryFactory(RepositoryRequest{
		Backend:              backend,
		RepositoryPath:       repositoryPath,
		Logger:               logger,
		ConsoleLogger:        builder.resolveConsoleLogger(),
		HumanReadableLogging: builder.humanReadableLoggingEnabled(),
	})
	if repositoryError != nil {
		return fmt.Errorf(repositoryFailureTemplateConstant, repositoryPath, repositoryError)
	}

	service, serviceError := NewService(ServiceDependencies{Repository: repository, Logger: logger}, configuration.ServiceOptions())
	if serviceError != nil {
		return fmt.Errorf(serviceCreationFailureTemplateConstant, serviceError)
	}

	report, analysisError := service.Analyze(command.Context(), Request{Treeish1: arguments[0], Treeish2: arguments[1]})
	if analysisError != nil {
		return analysisError
	}

	return renderer.Render(command.OutOrStdout(), report)
}

func (builder *CommandBuilder) applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration, flagValues *commandFlagValues) (CommandConfiguration, error) {
	flagSet := command.Flags()
	overridden := configuration

	if flagSet.Changed(repositoryFlagNameConstant) {
		value, lookupError := flagSet.GetString(repositoryFlagNameConstant)
		if lookupError != nil {
			return CommandConfiguration{}, lookupError
		}
		overridden.RepositoryPath = value
	}
	if flagSet.Changed(backendFlagNameConstant) {
		value, lookupError := flagSet.GetString(backendFlagNameConstant)
		if lookupError != nil {
			return CommandConfiguration{}, lookupError
		}
		overridden.Backend = value
	}
	if flagSet.Changed(maxBlobBytesFlagNameConstant) {
		value, lookupError := flagSet.GetInt64(maxBlobBytesFlagNameConstant)
		if lookupError != nil {
			return CommandConfiguration{}, lookupError
		}
		overridden.MaxBlobBytes = value
	}
	if flagSet.Changed(workersFlagNameConstant) {
		value, lookupError := flagSet.GetInt(workersFlagNameConstant)
		if lookupError != nil {
			return CommandConfiguration{}, lookupError
		}
		overridden.Workers = value
	}
	if flagSet.Changed(fetchTimeoutFlagNameConstant) {
		value, lookupError := flagSet.GetDuration(fetchTimeoutFlagNameConstant)
		if lookupError != nil {
			return CommandConfiguration{}, lookupError
		}
		overridden.FetchTimeout = value
	}
	if flagSet.Changed(outputFlagNameConstant) {
		value, lookupError := flagSet.GetString(outputFlagNameConstant)
		if lookupError != nil {
			return CommandConfiguration{}, lookupError
		}
		overridden.Output = value
	}
	if flagSet.Changed(includeUnchangedFlagNameConstant) {
		overridden.IncludeUnchanged = flagValues.includeUnchanged
	}

	return overridden.Sanitize(), nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConsoleLogger() *zap.Logger {
	if builder.ConsoleLoggerProvider == nil {
		return nil
	}
	return builder.ConsoleLoggerProvider()
}

func (builder *CommandBuilder) humanReadableLoggingEnabled() bool {
	if builder.HumanReadableLoggingProvider == nil {
		return false
	}
	return builder.HumanReadableLoggingProvider()
}

func (builder *CommandBuilder) resolveHomeExpander() *pathutils.HomeExpander {
	if builder.HomeExpander == nil {
		return pathutils.NewHomeExpander()
	}
	return builder.HomeExpander
}
