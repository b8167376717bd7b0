package releases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relgate/relgate/internal/githubcli"
	"github.com/relgate/relgate/internal/releases"
)

type fakeClock struct {
	currentTime    time.Time
	recordedSleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{currentTime: time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)}
}

func (clock *fakeClock) Now() time.Time {
	return clock.currentTime
}

func (clock *fakeClock) Sleep(duration time.Duration) {
	clock.recordedSleeps = append(clock.recordedSleeps, duration)
	clock.currentTime = clock.currentTime.Add(duration)
}

func TestNewStatusPollerValidatesDependencies(testInstance *testing.T) {
	testCases := []struct {
		name         string
		dependencies releases.StatusPollerDependencies
	}{
		{
			name:         "missing_github_client",
			dependencies: releases.StatusPollerDependencies{Clock: newFakeClock()},
		},
		{
			name:         "missing_clock",
			dependencies: releases.StatusPollerDependencies{GitHubClient: &stubGitHubClient{}},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			poller, creationError := releases.NewStatusPoller(testCase.dependencies)
			require.Nil(testInstance, poller)
			require.Error(testInstance, creationError)
		})
	}
}

func TestWaitForMergeReturnsWhenMerged(testInstance *testing.T) {
	githubClient := &stubGitHubClient{
		viewStates: []githubcli.PullRequestState{githubcli.PullRequestStateMerged},
	}
	clock := newFakeClock()

	poller := newTestStatusPoller(testInstance, githubClient, clock)

	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{
		Handle:              releases.NewPullRequestHandle(testReleaseBranchNameConstant),
		TimeoutMinutes:      10,
		PollIntervalSeconds: 1,
	})
	require.NoError(testInstance, waitError)

	require.Len(testInstance, githubClient.viewReferences, 1)
	require.Equal(testInstance, githubcli.NewBranchReference(testReleaseBranchNameConstant), githubClient.viewReferences[0])
	require.Empty(testInstance, clock.recordedSleeps)
}

func TestWaitForMergePollsUntilMerged(testInstance *testing.T) {
	githubClient := &stubGitHubClient{
		viewStates: []githubcli.PullRequestState{
			githubcli.PullRequestStateOpen,
			githubcli.PullRequestStateOpen,
			githubcli.PullRequestStateMerged,
		},
	}
	clock := newFakeClock()

	poller := newTestStatusPoller(testInstance, githubClient, clock)

	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{
		Handle:              releases.NewPullRequestHandle(testReleaseBranchNameConstant),
		TimeoutMinutes:      10,
		PollIntervalSeconds: 5,
	})
	require.NoError(testInstance, waitError)

	require.Len(testInstance, githubClient.viewReferences, 3)
	require.Equal(testInstance, []time.Duration{5 * time.Second, 5 * time.Second}, clock.recordedSleeps)
}

func TestWaitForMergeReportsClosedPullRequest(testInstance *testing.T) {
	githubClient := &stubGitHubClient{
		viewStates: []githubcli.PullRequestState{githubcli.PullRequestStateClosed},
	}

	poller := newTestStatusPoller(testInstance, githubClient, newFakeClock())

	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{
		Handle:              releases.NewPullRequestHandle(testReleaseBranchNameConstant),
		TimeoutMinutes:      10,
		PollIntervalSeconds: 1,
	})

	releaseError := releases.ReleaseError{}
	require.ErrorAs(testInstance, waitError, &releaseError)
	require.Contains(testInstance, releaseError.Message, "closed without merging")
	require.Contains(testInstance, releaseError.Message, testReleaseBranchNameConstant)
}

func TestWaitForMergeFallsBackToNumberWhenBranchDeleted(testInstance *testing.T) {
	branchReference := githubcli.NewBranchReference(testReleaseBranchNameConstant)
	githubClient := &stubGitHubClient{
		viewStates: []githubcli.PullRequestState{"", githubcli.PullRequestStateMerged},
		viewErrors: []error{githubcli.PullRequestNotFoundError{Reference: branchReference}, nil},
	}

	poller := newTestStatusPoller(testInstance, githubClient, newFakeClock())

	handle := releases.NewPullRequestHandle(testReleaseBranchNameConstant).WithNumber(456)
	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{
		Handle:              handle,
		TimeoutMinutes:      10,
		PollIntervalSeconds: 1,
	})
	require.NoError(testInstance, waitError)

	require.Len(testInstance, githubClient.viewReferences, 2)
	require.Equal(testInstance, branchReference, githubClient.viewReferences[0])
	require.Equal(testInstance, githubcli.NewNumberReference(456), githubClient.viewReferences[1])
}

func TestWaitForMergeAbsorbsNotFoundWithoutNumberUntilTimeout(testInstance *testing.T) {
	branchReference := githubcli.NewBranchReference(testReleaseBranchNameConstant)
	notFoundError := githubcli.PullRequestNotFoundError{Reference: branchReference}
	githubClient := &stubGitHubClient{
		viewStates: []githubcli.PullRequestState{"", ""},
		viewErrors: []error{notFoundError, notFoundError},
	}
	clock := newFakeClock()

	poller := newTestStatusPoller(testInstance, githubClient, clock)

	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{
		Handle:              releases.NewPullRequestHandle(testReleaseBranchNameConstant),
		TimeoutMinutes:      0.5,
		PollIntervalSeconds: 30,
	})

	releaseError := releases.ReleaseError{}
	require.ErrorAs(testInstance, waitError, &releaseError)
	require.Contains(testInstance, releaseError.Message, "timeout waiting")

	require.Len(testInstance, githubClient.viewReferences, 2)
	require.Equal(testInstance, branchReference, githubClient.viewReferences[0])
	require.Equal(testInstance, branchReference, githubClient.viewReferences[1])
}

func TestWaitForMergeAbsorbsTransientQueryFailures(testInstance *testing.T) {
	githubClient := &stubGitHubClient{
		viewStates: []githubcli.PullRequestState{"", githubcli.PullRequestStateMerged},
		viewErrors: []error{errors.New("network unreachable"), nil},
	}
	clock := newFakeClock()

	poller := newTestStatusPoller(testInstance, githubClient, clock)

	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{
		Handle:              releases.NewPullRequestHandle(testReleaseBranchNameConstant),
		TimeoutMinutes:      10,
		PollIntervalSeconds: 1,
	})
	require.NoError(testInstance, waitError)

	require.Len(testInstance, githubClient.viewReferences, 2)
	require.Len(testInstance, clock.recordedSleeps, 1)
}

func TestWaitForMergeTimesOutWhileOpen(testInstance *testing.T) {
	githubClient := &stubGitHubClient{
		viewStates: []githubcli.PullRequestState{
			githubcli.PullRequestStateOpen,
			githubcli.PullRequestStateOpen,
			githubcli.PullRequestStateOpen,
		},
	}
	clock := newFakeClock()

	poller := newTestStatusPoller(testInstance, githubClient, clock)

	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{
		Handle:              releases.NewPullRequestHandle(testReleaseBranchNameConstant),
		TimeoutMinutes:      1,
		PollIntervalSeconds: 30,
	})

	releaseError := releases.ReleaseError{}
	require.ErrorAs(testInstance, waitError, &releaseError)
	require.Contains(testInstance, releaseError.Message, "timeout waiting")
	require.Contains(testInstance, releaseError.Message, "1.0 minutes")
	require.Len(testInstance, githubClient.viewReferences, 3)
}

func TestWaitForMergeRequiresBranchName(testInstance *testing.T) {
	poller := newTestStatusPoller(testInstance, &stubGitHubClient{}, newFakeClock())

	waitError := poller.WaitForMerge(context.Background(), releases.WaitOptions{TimeoutMinutes: 1})

	releaseError := releases.ReleaseError{}
	require.ErrorAs(testInstance, waitError, &releaseError)
}

func newTestStatusPoller(testInstance *testing.T, githubClient releases.GitHubClient, clock releases.Clock) *releases.StatusPoller {
	testInstance.Helper()

	poller, creationError := releases.NewStatusPoller(releases.StatusPollerDependencies{
		GitHubClient: githubClient,
		Clock:        clock,
		Logger:       zap.NewNop(),
	})
	require.NoError(testInstance, creationError)
	return poller
}
