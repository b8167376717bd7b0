package releases

import (
	"strconv"
	"strings"
)

const urlPathSeparatorConstant = "/"

// PullRequestHandle identifies a published pull request. The branch name is
// always present; the numeric identifier is best-effort and absent when the
// creation output could not be parsed.
type PullRequestHandle struct {
	Branch      string
	Number      int
	NumberKnown bool
}

// NewPullRequestHandle builds a handle carrying only the branch name.
func NewPullRequestHandle(branchName string) PullRequestHandle {
	return PullRequestHandle{Branch: strings.TrimSpace(branchName)}
}

// WithNumber returns a copy of the handle carrying the pull request number.
func (handle PullRequestHandle) WithNumber(pullRequestNumber int) PullRequestHandle {
	handle.Number = pullRequestNumber
	handle.NumberKnown = true
	return handle
}

// ParsePullRequestNumberFromURL extracts the trailing decimal path segment of
// a pull request URL, e.g. https://github.com/org/repo/pull/456 yields 456.
// The boolean result is false when the URL does not end in a positive decimal
// segment; callers fall back to branch-only tracking in that case.
func ParsePullRequestNumberFromURL(pullRequestURL string) (int, bool) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(pullRequestURL), urlPathSeparatorConstant)
	if len(trimmedURL) == 0 {
		return 0, false
	}

	lastSeparatorIndex := strings.LastIndex(trimmedURL, urlPathSeparatorConstant)
	if lastSeparatorIndex < 0 {
		return 0, false
	}

	trailingSegment := trimmedURL[lastSeparatorIndex+1:]
	pullRequestNumber, parseError := strconv.Atoi(trailingSegment)
	if parseError != nil || pullRequestNumber <= 0 {
		return 0, false
	}

	return pullRequestNumber, true
}
