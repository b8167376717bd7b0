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
)

const (
	gitPushSubcommandNameConstant = "push"
	versionFlagConstant           = "--version"
)

const (
	gitPushStartTemplateConstant            = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant          = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant          = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant = "Unable to push %s to %s from %s: %s"
)

const (
	githubPullRequestSubcommandNameConstant       = "pr"
	githubPullRequestCreateSubcommandNameConstant = "create"
	githubPullRequestViewSubcommandNameConstant   = "view"
	githubHeadFlagConstant                        = "--head"
)

const (
	githubAvailabilityStartTemplateConstant                 = "Checking GitHub CLI availability"
	githubAvailabilitySuccessTemplateConstant               = "GitHub CLI is available"
	githubAvailabilityFailureTemplateConstant               = "GitHub CLI is unavailable (exit code %d%s)"
	githubAvailabilityExecutionFailureTemplateConstant      = "Unable to check GitHub CLI availability: %s"
	githubPullRequestCreateStartTemplateConstant            = "Opening pull request for branch %s"
	githubPullRequestCreateSuccessTemplateConstant          = "Opened pull request for branch %s"
	githubPullRequestCreateFailureTemplateConstant          = "Failed to open pull request for branch %s (exit code %d%s)"
	githubPullRequestCreateExecutionFailureTemplateConstant = "Unable to open pull request for branch %s: %s"
	githubPullRequestViewStartTemplateConstant              = "Checking pull request status for %s"
	githubPullRequestViewSuccessTemplateConstant            = "Checked pull request status for %s"
	githubPullRequestViewFailureTemplateConstant            = "Failed to check pull request status for %s (exit code %d%s)"
	githubPullRequestViewExecutionFailureTemplateConstant   = "Unable to check pull request status for %s: %s"
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
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandGitHub:
		return formatter.describeGitHubMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	if subcommand != gitPushSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName := formatter.ensureValue(formatter.extractNonFlagArgument(command.Details.Arguments[1:], 0))
	branchReference := formatter.ensureValue(formatter.extractNonFlagArgument(command.Details.Arguments[1:], 1))

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, branchReference, remoteName, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, branchReference, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, branchReference, remoteName, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	if strings.TrimSpace(arguments[0]) == versionFlagConstant {
		return formatter.describeGitHubAvailabilityMessage(result, failure, stage)
	}

	if strings.TrimSpace(arguments[0]) != githubPullRequestSubcommandNameConstant || len(arguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[1]) {
	case githubPullRequestCreateSubcommandNameConstant:
		branchName := formatter.ensureValue(findFlagValue(arguments, githubHeadFlagConstant))
		return formatter.describeStagedMessage(
			stage, result, failure,
			fmt.Sprintf(githubPullRequestCreateStartTemplateConstant, branchName),
			fmt.Sprintf(githubPullRequestCreateSuccessTemplateConstant, branchName),
			githubPullRequestCreateFailureTemplateConstant, githubPullRequestCreateExecutionFailureTemplateConstant, branchName,
		)
	case githubPullRequestViewSubcommandNameConstant:
		reference := formatter.ensureValue(formatter.extractNonFlagArgument(arguments[2:], 0))
		return formatter.describeStagedMessage(
			stage, result, failure,
			fmt.Sprintf(githubPullRequestViewStartTemplateConstant, reference),
			fmt.Sprintf(githubPullRequestViewSuccessTemplateConstant, reference),
			githubPullRequestViewFailureTemplateConstant, githubPullRequestViewExecutionFailureTemplateConstant, reference,
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitHubAvailabilityMessage(result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return githubAvailabilityStartTemplateConstant
	case messageStageSuccess:
		return githubAvailabilitySuccessTemplateConstant
	case messageStageFailure:
		return fmt.Sprintf(githubAvailabilityFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(githubAvailabilityExecutionFailureTemplateConstant, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeStagedMessage(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subject string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(executionFailureTemplate, subject, formatter.describeFailure(failure))
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

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractNonFlagArgument(arguments []string, position int) string {
	nonFlagIndex := 0
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if strings.HasPrefix(trimmedArgument, "-") {
			continue
		}
		if nonFlagIndex == position {
			return trimmedArgument
		}
		nonFlagIndex++
	}
	return emptyStringConstant
}

func findFlagValue(arguments []string, flagName string) string {
	for argumentIndex, argument := range arguments {
		if strings.TrimSpace(argument) != flagName {
			continue
		}
		if argumentIndex+1 < len(arguments) {
			return strings.TrimSpace(arguments[argumentIndex+1])
		}
	}
	return emptyStringConstant
}
