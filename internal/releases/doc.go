// Package releases implements the pull request lifecycle tracking that gates a
// release: publishing the release branch as a pull request and polling its
// state until it is merged or closed. Command execution and timing are
// injected so the logic runs deterministically under test.
package releases
