// Package githubcli wraps the GitHub CLI operations relgate depends on:
// probing CLI availability, creating pull requests, and reading pull request
// state by branch name or number.
package githubcli
