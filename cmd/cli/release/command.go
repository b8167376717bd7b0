// Package release provides the cobra command that publishes a release branch,
// opens a pull request for it, and waits for the pull request to merge.
package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relgate/relgate/internal/releases"
	"github.com/relgate/relgate/internal/utils"
)

const (
	commandUseName          = "release"
	commandUsageTemplate    = commandUseName + " <version>"
	commandExampleTemplate  = "relgate release 1.4.0 --base main"
	commandShortDescription = "Publish a release branch and wait for its pull request to merge"
	commandLongDescription  = "release pushes the releasing-<version> branch to the configured remote, opens a pull request against the base branch with the GitHub CLI, and polls the pull request until it merges, is closed, or the timeout elapses. Provide the version as the first argument."

	baseBranchFlagName     = "base"
	baseBranchFlagUsage    = "Base branch the pull request targets"
	remoteFlagName         = "remote"
	remoteFlagUsage        = "Remote the release branch is pushed to"
	timeoutFlagName        = "timeout-minutes"
	timeoutFlagUsage       = "Minutes to wait for the pull request to merge"
	pollIntervalFlagName   = "poll-interval-seconds"
	pollIntervalFlagUsage  = "Seconds between pull request status checks"
	skipMergeWaitFlagName  = "skip-merge-wait"
	skipMergeWaitFlagUsage = "Publish the pull request without waiting for it to merge"
	dryRunFlagName         = "dry-run"
	dryRunFlagUsage        = "Describe the release steps without executing them"

	missingVersionErrorMessage = "version is required"

	releaseBranchPrefixConstant = "releasing-"

	dryRunSummaryTemplate       = "DRY RUN: would push %s to %s and open a pull request against %s"
	publishedSummaryTemplate    = "PUBLISHED: %s"
	publishedSkippedSummary     = "SKIPPED: GitHub CLI unavailable, no pull request created"
	mergedSummaryTemplate       = "MERGED: pull request for %s"
	publishedWithNumberTemplate = "PUBLISHED: %s (pull request #%d)"
)

// CommandBuilder assembles the release command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	GitExecutor                  releases.GitExecutor
	GitHubClient                 releases.GitHubClient
	Clock                        releases.Clock
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the release command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     commandUsageTemplate,
		Short:   commandShortDescription,
		Long:    commandLongDescription,
		Example: commandExampleTemplate,
		Args:    cobra.ArbitraryArgs,
		RunE:    builder.run,
	}

	command.Flags().String(baseBranchFlagName, "", baseBranchFlagUsage)
	command.Flags().String(remoteFlagName, "", remoteFlagUsage)
	command.Flags().Float64(timeoutFlagName, 0, timeoutFlagUsage)
	command.Flags().Float64(pollIntervalFlagName, 0, pollIntervalFlagUsage)
	command.Flags().Bool(skipMergeWaitFlagName, false, skipMergeWaitFlagUsage)
	command.Flags().Bool(dryRunFlagName, false, dryRunFlagUsage)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	if len(arguments) == 0 {
		if command != nil {
			_ = command.Help()
		}
		return errors.New(missingVersionErrorMessage)
	}

	version := strings.TrimSpace(arguments[0])
	if len(version) == 0 {
		if command != nil {
			_ = command.Help()
		}
		return errors.New(missingVersionErrorMessage)
	}

	branchName := releaseBranchPrefixConstant + version

	baseBranch := configuration.BaseBranch
	if flagValue, flagError := command.Flags().GetString(baseBranchFlagName); flagError == nil && command.Flags().Changed(baseBranchFlagName) {
		baseBranch = strings.TrimSpace(flagValue)
	}
	remoteName := configuration.RemoteName
	if flagValue, flagError := command.Flags().GetString(remoteFlagName); flagError == nil && command.Flags().Changed(remoteFlagName) {
		remoteName = strings.TrimSpace(flagValue)
	}
	timeoutMinutes := configuration.TimeoutMinutes
	if flagValue, flagError := command.Flags().GetFloat64(timeoutFlagName); flagError == nil && command.Flags().Changed(timeoutFlagName) {
		timeoutMinutes = flagValue
	}
	pollIntervalSeconds := configuration.PollIntervalSeconds
	if flagValue, flagError := command.Flags().GetFloat64(pollIntervalFlagName); flagError == nil && command.Flags().Changed(pollIntervalFlagName) {
		pollIntervalSeconds = flagValue
	}
	skipMergeWait, _ := command.Flags().GetBool(skipMergeWaitFlagName)
	dryRun, _ := command.Flags().GetBool(dryRunFlagName)

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())

	if dryRun {
		fmt.Fprintln(outputWriter, fmt.Sprintf(dryRunSummaryTemplate, branchName, remoteName, baseBranch))
		return nil
	}

	logger := resolveLogger(builder.LoggerProvider)
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	gitExecutor, executorError := builder.resolveGitExecutor(logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}

	githubClient, clientError := builder.resolveGitHubClient(gitExecutor)
	if clientError != nil {
		return clientError
	}

	publisher, publisherError := releases.NewPublisher(releases.PublisherDependencies{
		GitExecutor:  gitExecutor,
		GitHubClient: githubClient,
		Logger:       logger,
	})
	if publisherError != nil {
		return publisherError
	}

	publishResult, publishError := publisher.CreatePullRequest(command.Context(), releases.PublishOptions{
		BranchName: branchName,
		Version:    version,
		BaseBranch: baseBranch,
		RemoteName: remoteName,
	})
	if publishError != nil {
		return publishError
	}

	if !publishResult.PullRequestCreated {
		fmt.Fprintln(outputWriter, publishedSkippedSummary)
		return nil
	}

	if skipMergeWait {
		fmt.Fprintln(outputWriter, builder.formatPublishedSummary(publishResult))
		return nil
	}

	poller, pollerError := releases.NewStatusPoller(releases.StatusPollerDependencies{
		GitHubClient: githubClient,
		Clock:        builder.resolveClock(),
		Logger:       logger,
	})
	if pollerError != nil {
		return pollerError
	}

	waitError := poller.WaitForMerge(command.Context(), releases.WaitOptions{
		Handle:              publishResult.Handle,
		TimeoutMinutes:      timeoutMinutes,
		PollIntervalSeconds: pollIntervalSeconds,
	})
	if waitError != nil {
		return waitError
	}

	fmt.Fprintln(outputWriter, fmt.Sprintf(mergedSummaryTemplate, branchName))
	return nil
}

func (builder *CommandBuilder) formatPublishedSummary(result releases.PublishResult) string {
	if result.Handle.NumberKnown {
		return fmt.Sprintf(publishedWithNumberTemplate, result.PullRequestURL, result.Handle.Number)
	}
	return fmt.Sprintf(publishedSummaryTemplate, result.PullRequestURL)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
