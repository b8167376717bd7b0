package releases

import (
	"time"

	"github.com/relgate/relgate/internal/githubcli"
)

// pollPhase enumerates the states of a polling session.
type pollPhase int

const (
	pollPhasePolling pollPhase = iota
	pollPhaseMerged
	pollPhaseClosed
	pollPhaseTimedOut
)

// pollObservation captures the outcome of a single status query. stateKnown is
// false when the query failed and was absorbed; such observations are
// indistinguishable from non-terminal states for transition purposes.
type pollObservation struct {
	state      githubcli.PullRequestState
	stateKnown bool
}

// nextPollPhase is the pure transition function of the polling state machine.
// Terminal phases are absorbing; a non-terminal observation times the session
// out once the deadline has been reached.
func nextPollPhase(currentPhase pollPhase, observation pollObservation, currentTime time.Time, deadline time.Time) pollPhase {
	if currentPhase != pollPhasePolling {
		return currentPhase
	}

	if observation.stateKnown {
		switch observation.state {
		case githubcli.PullRequestStateMerged:
			return pollPhaseMerged
		case githubcli.PullRequestStateClosed:
			return pollPhaseClosed
		}
	}

	if !currentTime.Before(deadline) {
		return pollPhaseTimedOut
	}

	return pollPhasePolling
}
