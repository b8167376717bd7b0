package releases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/relgate/relgate/internal/execshell"
	"github.com/relgate/relgate/internal/githubcli"
)

const (
	gitPushSubcommandConstant  = "push"
	gitSetUpstreamFlagConstant = "--set-upstream"

	defaultRemoteNameConstant = "origin"

	gitExecutorNotConfiguredMessageConstant        = "git executor not configured"
	githubClientNotConfiguredMessageConstant       = "github client not configured"
	branchNameRequiredMessageConstant              = "branch name is required"
	versionRequiredMessageConstant                 = "version is required"
	pushFailedMessageTemplateConstant              = "failed to push branch %s to %s"
	createPullRequestFailedMessageTemplateConstant = "failed to create pull request for branch %s"
	pullRequestTitleTemplateConstant               = "Release %s"
	pullRequestBodyTemplateConstant                = "Automated release pull request for version %s."
	githubUnavailableLogMessageConstant            = "github cli unavailable, skipping pull request creation"
	pullRequestNumberParsedLogMessageConstant      = "captured pull request number"
	pullRequestNumberMissingLogMessageConstant     = "could not parse pull request number from create output"
	logFieldBranchConstant                         = "branch"
	logFieldPullRequestURLConstant                 = "pull_request_url"
	logFieldPullRequestNumberConstant              = "pull_request_number"
)

// GitExecutor is the minimal git surface the publisher requires from
// execshell.ShellExecutor.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitHubClient is the hosted-service surface required from githubcli.Client.
type GitHubClient interface {
	CheckAvailability(executionContext context.Context) error
	CreatePullRequest(executionContext context.Context, options githubcli.PullRequestCreateOptions) (string, error)
	ViewPullRequestState(executionContext context.Context, reference githubcli.PullRequestReference) (githubcli.PullRequestState, error)
}

// PublisherDependencies carries the collaborators required by the publisher.
type PublisherDependencies struct {
	GitExecutor  GitExecutor
	GitHubClient GitHubClient
	Logger       *zap.Logger
}

// Publisher pushes release branches and opens pull requests for them.
type Publisher struct {
	gitExecutor  GitExecutor
	githubClient GitHubClient
	logger       *zap.Logger
}

// PublishOptions configures a CreatePullRequest invocation.
type PublishOptions struct {
	BranchName       string
	Version          string
	BaseBranch       string
	RemoteName       string
	WorkingDirectory string
}

// PublishResult reports the outcome of pushing the branch and creating the
// pull request. PullRequestCreated is false when the GitHub CLI was
// unavailable and pull request automation was skipped.
type PublishResult struct {
	Handle             PullRequestHandle
	PullRequestCreated bool
	PullRequestURL     string
}

// NewPublisher validates dependencies and constructs a Publisher.
func NewPublisher(dependencies PublisherDependencies) (*Publisher, error) {
	if dependencies.GitExecutor == nil {
		return nil, errors.New(gitExecutorNotConfiguredMessageConstant)
	}
	if dependencies.GitHubClient == nil {
		return nil, errors.New(githubClientNotConfiguredMessageConstant)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Publisher{
		gitExecutor:  dependencies.GitExecutor,
		githubClient: dependencies.GitHubClient,
		logger:       logger,
	}, nil
}

// CreatePullRequest pushes the release branch and opens a pull request for it.
// When the GitHub CLI is unavailable the whole step is soft-skipped: pull
// request automation is an optional enhancement, so no push or create happens
// and no error is returned. A pull request URL whose number cannot be parsed
// degrades to a handle without a number rather than failing the release.
func (publisher *Publisher) CreatePullRequest(executionContext context.Context, options PublishOptions) (PublishResult, error) {
	branchName := strings.TrimSpace(options.BranchName)
	if len(branchName) == 0 {
		return PublishResult{}, ReleaseError{Message: branchNameRequiredMessageConstant}
	}
	if len(strings.TrimSpace(options.Version)) == 0 {
		return PublishResult{}, ReleaseError{Message: versionRequiredMessageConstant}
	}

	handle := NewPullRequestHandle(branchName)

	if availabilityError := publisher.githubClient.CheckAvailability(executionContext); availabilityError != nil {
		publisher.logger.Warn(githubUnavailableLogMessageConstant, zap.String(logFieldBranchConstant, branchName))
		return PublishResult{Handle: handle}, nil
	}

	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}

	pushDetails := execshell.CommandDetails{
		Arguments:        []string{gitPushSubcommandConstant, gitSetUpstreamFlagConstant, remoteName, branchName},
		WorkingDirectory: options.WorkingDirectory,
	}
	if _, pushError := publisher.gitExecutor.ExecuteGit(executionContext, pushDetails); pushError != nil {
		return PublishResult{}, ReleaseError{
			Message: fmt.Sprintf(pushFailedMessageTemplateConstant, branchName, remoteName),
			Cause:   pushError,
		}
	}

	createOptions := githubcli.PullRequestCreateOptions{
		HeadBranch: branchName,
		BaseBranch: strings.TrimSpace(options.BaseBranch),
		Title:      fmt.Sprintf(pullRequestTitleTemplateConstant, options.Version),
		Body:       fmt.Sprintf(pullRequestBodyTemplateConstant, options.Version),
	}
	pullRequestURL, createError := publisher.githubClient.CreatePullRequest(executionContext, createOptions)
	if createError != nil {
		return PublishResult{}, ReleaseError{
			Message: fmt.Sprintf(createPullRequestFailedMessageTemplateConstant, branchName),
			Cause:   createError,
		}
	}

	pullRequestNumber, numberParsed := ParsePullRequestNumberFromURL(pullRequestURL)
	if numberParsed {
		handle = handle.WithNumber(pullRequestNumber)
		publisher.logger.Info(
			pullRequestNumberParsedLogMessageConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.Int(logFieldPullRequestNumberConstant, pullRequestNumber),
		)
	} else {
		publisher.logger.Warn(
			pullRequestNumberMissingLogMessageConstant,
			zap.String(logFieldBranchConstant, branchName),
			zap.String(logFieldPullRequestURLConstant, pullRequestURL),
		)
	}

	return PublishResult{Handle: handle, PullRequestCreated: true, PullRequestURL: pullRequestURL}, nil
}
