package releases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/relgate/relgate/internal/githubcli"
)

func TestNextPollPhase(testInstance *testing.T) {
	baseTime := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	deadline := baseTime.Add(10 * time.Minute)

	testCases := []struct {
		name          string
		currentPhase  pollPhase
		observation   pollObservation
		currentTime   time.Time
		expectedPhase pollPhase
	}{
		{
			name:          "open_state_keeps_polling",
			currentPhase:  pollPhasePolling,
			observation:   pollObservation{state: githubcli.PullRequestStateOpen, stateKnown: true},
			currentTime:   baseTime,
			expectedPhase: pollPhasePolling,
		},
		{
			name:          "merged_state_terminates",
			currentPhase:  pollPhasePolling,
			observation:   pollObservation{state: githubcli.PullRequestStateMerged, stateKnown: true},
			currentTime:   baseTime,
			expectedPhase: pollPhaseMerged,
		},
		{
			name:          "closed_state_terminates",
			currentPhase:  pollPhasePolling,
			observation:   pollObservation{state: githubcli.PullRequestStateClosed, stateKnown: true},
			currentTime:   baseTime,
			expectedPhase: pollPhaseClosed,
		},
		{
			name:          "merged_wins_over_elapsed_deadline",
			currentPhase:  pollPhasePolling,
			observation:   pollObservation{state: githubcli.PullRequestStateMerged, stateKnown: true},
			currentTime:   deadline.Add(time.Minute),
			expectedPhase: pollPhaseMerged,
		},
		{
			name:          "unknown_observation_keeps_polling_before_deadline",
			currentPhase:  pollPhasePolling,
			observation:   pollObservation{},
			currentTime:   baseTime,
			expectedPhase: pollPhasePolling,
		},
		{
			name:          "unknown_observation_times_out_at_deadline",
			currentPhase:  pollPhasePolling,
			observation:   pollObservation{},
			currentTime:   deadline,
			expectedPhase: pollPhaseTimedOut,
		},
		{
			name:          "unrecognized_state_times_out_after_deadline",
			currentPhase:  pollPhasePolling,
			observation:   pollObservation{state: githubcli.PullRequestState("DRAFT"), stateKnown: true},
			currentTime:   deadline.Add(time.Second),
			expectedPhase: pollPhaseTimedOut,
		},
		{
			name:          "merged_phase_is_absorbing",
			currentPhase:  pollPhaseMerged,
			observation:   pollObservation{state: githubcli.PullRequestStateClosed, stateKnown: true},
			currentTime:   baseTime,
			expectedPhase: pollPhaseMerged,
		},
		{
			name:          "timed_out_phase_is_absorbing",
			currentPhase:  pollPhaseTimedOut,
			observation:   pollObservation{state: githubcli.PullRequestStateMerged, stateKnown: true},
			currentTime:   baseTime,
			expectedPhase: pollPhaseTimedOut,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			nextPhase := nextPollPhase(testCase.currentPhase, testCase.observation, testCase.currentTime, deadline)
			require.Equal(testInstance, testCase.expectedPhase, nextPhase)
		})
	}
}
