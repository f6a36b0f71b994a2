package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitMergeBaseSubcommandNameConstant = "merge-base"
	gitDiffSubcommandNameConstant      = "diff"
	gitCatFileSubcommandNameConstant   = "cat-file"
	gitRevParseSubcommandNameConstant  = "rev-parse"
	gitCatFileTypeFlagConstant         = "-t"
)

const (
	gitMergeBaseStartTemplateConstant             = "Resolving merge base of %s and %s in %s"
	gitMergeBaseSuccessTemplateConstant           = "Resolved merge base of %s and %s in %s"
	gitMergeBaseFailureTemplateConstant           = "No merge base for %s and %s in %s (exit code %d%s)"
	gitMergeBaseExecutionFailureTemplateConstant  = "Unable to resolve merge base of %s and %s: %s"
	gitDiffStartTemplateConstant                  = "Listing changes between %s and %s in %s"
	gitDiffSuccessTemplateConstant                = "Listed changes between %s and %s in %s"
	gitDiffFailureTemplateConstant                = "Failed to list changes between %s and %s in %s (exit code %d%s)"
	gitDiffExecutionFailureTemplateConstant       = "Unable to list changes between %s and %s: %s"
	gitObjectTypeStartTemplateConstant            = "Inspecting %s in %s"
	gitObjectTypeSuccessTemplateConstant          = "Inspected %s in %s"
	gitObjectTypeFailureTemplateConstant          = "Could not inspect %s in %s (exit code %d%s)"
	gitObjectTypeExecutionFailureTemplateConstant = "Unable to inspect %s: %s"
	gitBlobStartTemplateConstant                  = "Reading %s in %s"
	gitBlobSuccessTemplateConstant                = "Read %s in %s"
	gitBlobFailureTemplateConstant                = "Failed to read %s in %s (exit code %d%s)"
	gitBlobExecutionFailureTemplateConstant       = "Unable to read %s: %s"
	gitRevParseStartTemplateConstant              = "Resolving revision %s in %s"
	gitRevParseSuccessTemplateConstant            = "Resolved revision %s in %s"
	gitRevParseFailureTemplateConstant            = "Failed to resolve revision %s in %s (exit code %d%s)"
	gitRevParseExecutionFailureTemplateConstant   = "Unable to resolve revision %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	positionalArguments := formatter.positionalArguments(command.Details.Arguments[1:])
	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitMergeBaseSubcommandNameConstant:
		return formatter.describeRevisionPair(command, result, failure, stage, positionalArguments, revisionPairTemplates{
			start:            gitMergeBaseStartTemplateConstant,
			success:          gitMergeBaseSuccessTemplateConstant,
			failure:          gitMergeBaseFailureTemplateConstant,
			executionFailure: gitMergeBaseExecutionFailureTemplateConstant,
		})
	case gitDiffSubcommandNameConstant:
		return formatter.describeRevisionPair(command, result, failure, stage, positionalArguments, revisionPairTemplates{
			start:            gitDiffStartTemplateConstant,
			success:          gitDiffSuccessTemplateConstant,
			failure:          gitDiffFailureTemplateConstant,
			executionFailure: gitDiffExecutionFailureTemplateConstant,
		})
	case gitCatFileSubcommandNameConstant:
		if containsArgument(command.Details.Arguments, gitCatFileTypeFlagConstant) {
			return formatter.describeObject(command, result, failure, stage, positionalArguments, objectTemplates{
				start:            gitObjectTypeStartTemplateConstant,
				success:          gitObjectTypeSuccessTemplateConstant,
				failure:          gitObjectTypeFailureTemplateConstant,
				executionFailure: gitObjectTypeExecutionFailureTemplateConstant,
			})
		}
		return formatter.describeObject(command, result, failure, stage, positionalArguments, objectTemplates{
			start:            gitBlobStartTemplateConstant,
			success:          gitBlobSuccessTemplateConstant,
			failure:          gitBlobFailureTemplateConstant,
			executionFailure: gitBlobExecutionFailureTemplateConstant,
		})
	case gitRevParseSubcommandNameConstant:
		return formatter.describeObject(command, result, failure, stage, positionalArguments, objectTemplates{
			start:            gitRevParseStartTemplateConstant,
			success:          gitRevParseSuccessTemplateConstant,
			failure:          gitRevParseFailureTemplateConstant,
			executionFailure: gitRevParseExecutionFailureTemplateConstant,
		})
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

type revisionPairTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

type objectTemplates revisionPairTemplates

func (formatter CommandMessageFormatter) describeRevisionPair(command ShellCommand, result ExecutionResult, failure error, stage messageStage, positionalArguments []string, templates revisionPairTemplates) string {
	firstRevision := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	secondRevision := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 1))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, firstRevision, secondRevision, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, firstRevision, secondRevision, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, firstRevision, secondRevision, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, firstRevision, secondRevision, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeObject(command ShellCommand, result ExecutionResult, failure error, stage messageStage, positionalArguments []string, templates objectTemplates) string {
	objectName := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, len(positionalArguments)-1))
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, objectName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, objectName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(templates.failure, objectName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(templates.executionFailure, objectName, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmedArgument)
	}
	return positional
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index >= 0 && index < len(arguments) {
		return arguments[index]
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
