package releases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relgate/relgate/internal/githubcli"
)

const (
	// DefaultPollIntervalSeconds spaces status queries when no interval is
	// configured.
	DefaultPollIntervalSeconds = 30.0

	clockNotConfiguredMessageConstant         = "clock not configured"
	pollerGitHubNotConfiguredMessageConstant  = "github client not configured"
	waitBranchRequiredMessageConstant         = "branch name is required"
	closedWithoutMergeMessageTemplateConstant = "pull request for branch %s was closed without merging"
	mergeTimeoutMessageTemplateConstant       = "timeout waiting for pull request on branch %s to merge after %.1f minutes"

	pollStateObservedLogMessageConstant = "observed pull request state"
	pollFallbackLogMessageConstant      = "branch lookup found no pull request, retrying by number"
	pollQueryAbsorbedLogMessageConstant = "pull request status query failed, retrying until deadline"
	logFieldPollBranchConstant          = "branch"
	logFieldPollStateConstant           = "state"
	logFieldPollNumberConstant          = "pull_request_number"
	logFieldPollFailureConstant         = "failure"
)

// WaitOptions configures a WaitForMerge polling session.
type WaitOptions struct {
	Handle              PullRequestHandle
	TimeoutMinutes      float64
	PollIntervalSeconds float64
}

// StatusPollerDependencies carries the collaborators required by the poller.
type StatusPollerDependencies struct {
	GitHubClient GitHubClient
	Clock        Clock
	Logger       *zap.Logger
}

// StatusPoller repeatedly queries pull request state until it reaches a
// terminal outcome or the configured deadline passes.
type StatusPoller struct {
	githubClient GitHubClient
	clock        Clock
	logger       *zap.Logger
}

// NewStatusPoller validates dependencies and constructs a StatusPoller.
func NewStatusPoller(dependencies StatusPollerDependencies) (*StatusPoller, error) {
	if dependencies.GitHubClient == nil {
		return nil, errors.New(pollerGitHubNotConfiguredMessageConstant)
	}
	if dependencies.Clock == nil {
		return nil, errors.New(clockNotConfiguredMessageConstant)
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &StatusPoller{
		githubClient: dependencies.GitHubClient,
		clock:        dependencies.Clock,
		logger:       logger,
	}, nil
}

// WaitForMerge polls the pull request identified by the handle until it is
// merged (nil), closed without merging (ReleaseError), or the timeout elapses
// (ReleaseError). Queries are keyed by branch name first; when the branch has
// been deleted after a merge and a pull request number is known, the query is
// retried by number. Query failures without a usable fallback are absorbed and
// retried until the deadline.
func (poller *StatusPoller) WaitForMerge(executionContext context.Context, options WaitOptions) error {
	branchName := options.Handle.Branch
	if len(branchName) == 0 {
		return ReleaseError{Message: waitBranchRequiredMessageConstant}
	}

	pollInterval := poller.resolvePollInterval(options.PollIntervalSeconds)
	deadline := poller.clock.Now().Add(durationFromMinutes(options.TimeoutMinutes))

	currentPhase := pollPhasePolling
	for {
		observation := poller.observeState(executionContext, options.Handle)

		currentPhase = nextPollPhase(currentPhase, observation, poller.clock.Now(), deadline)
		switch currentPhase {
		case pollPhaseMerged:
			return nil
		case pollPhaseClosed:
			return ReleaseError{Message: fmt.Sprintf(closedWithoutMergeMessageTemplateConstant, branchName)}
		case pollPhaseTimedOut:
			return ReleaseError{Message: fmt.Sprintf(mergeTimeoutMessageTemplateConstant, branchName, options.TimeoutMinutes)}
		}

		poller.clock.Sleep(pollInterval)
	}
}

// observeState issues one branch-keyed status query, falling back to the
// numeric identifier when the branch-keyed lookup reports no pull request and
// a number is known. All failures collapse into an unknown observation.
func (poller *StatusPoller) observeState(executionContext context.Context, handle PullRequestHandle) pollObservation {
	observedState, queryError := poller.githubClient.ViewPullRequestState(executionContext, githubcli.NewBranchReference(handle.Branch))

	notFoundError := githubcli.PullRequestNotFoundError{}
	if queryError != nil && errors.As(queryError, &notFoundError) && handle.NumberKnown {
		poller.logger.Info(
			pollFallbackLogMessageConstant,
			zap.String(logFieldPollBranchConstant, handle.Branch),
			zap.Int(logFieldPollNumberConstant, handle.Number),
		)
		observedState, queryError = poller.githubClient.ViewPullRequestState(executionContext, githubcli.NewNumberReference(handle.Number))
	}

	if queryError != nil {
		poller.logger.Debug(
			pollQueryAbsorbedLogMessageConstant,
			zap.String(logFieldPollBranchConstant, handle.Branch),
			zap.String(logFieldPollFailureConstant, queryError.Error()),
		)
		return pollObservation{}
	}

	poller.logger.Debug(
		pollStateObservedLogMessageConstant,
		zap.String(logFieldPollBranchConstant, handle.Branch),
		zap.String(logFieldPollStateConstant, string(observedState)),
	)
	return pollObservation{state: observedState, stateKnown: true}
}

func (poller *StatusPoller) resolvePollInterval(pollIntervalSeconds float64) time.Duration {
	if pollIntervalSeconds <= 0 {
		pollIntervalSeconds = DefaultPollIntervalSeconds
	}
	return time.Duration(pollIntervalSeconds * float64(time.Second))
}

func durationFromMinutes(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}
