package githubcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/relgate/relgate/internal/execshell"
)

const (
	versionFlagConstant           = "--version"
	pullRequestSubcommandConstant = "pr"
	createSubcommandConstant      = "create"
	viewSubcommandConstant        = "view"
	headFlagConstant              = "--head"
	baseFlagConstant              = "--base"
	titleFlagConstant             = "--title"
	bodyFlagConstant              = "--body"
	jsonFlagConstant              = "--json"
	stateJSONFieldConstant        = "state"

	headBranchFieldNameConstant             = "head_branch"
	titleFieldNameConstant                  = "title"
	referenceFieldNameConstant              = "reference"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	responseDecodingErrorTemplateConstant   = "%s response decoding failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	pullRequestNotFoundTemplateConstant     = "no pull request found for %s"

	missingPullRequestStderrPatternConstant = "no pull requests found"
	quotedReferenceTemplateConstant         = "%q"

	checkAvailabilityOperationNameConstant    = OperationName("CheckAvailability")
	createPullRequestOperationNameConstant    = OperationName("CreatePullRequest")
	viewPullRequestStateOperationNameConstant = OperationName("ViewPullRequestState")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// PullRequestState describes a pull request state reported by the GitHub CLI.
type PullRequestState string

// Pull request state enumerations as emitted by gh pr view --json state.
const (
	PullRequestStateOpen   PullRequestState = PullRequestState("OPEN")
	PullRequestStateMerged PullRequestState = PullRequestState("MERGED")
	PullRequestStateClosed PullRequestState = PullRequestState("CLOSED")
)

// IsTerminal reports whether the state ends a polling session.
func (state PullRequestState) IsTerminal() bool {
	return state == PullRequestStateMerged || state == PullRequestStateClosed
}

// ParsePullRequestState normalizes a raw state string and reports whether it is
// one of the recognized enumerations. Unrecognized values are returned
// normalized with recognized set to false so callers can treat them as
// non-terminal.
func ParsePullRequestState(rawState string) (PullRequestState, bool) {
	normalizedState := PullRequestState(strings.ToUpper(strings.TrimSpace(rawState)))
	switch normalizedState {
	case PullRequestStateOpen, PullRequestStateMerged, PullRequestStateClosed:
		return normalizedState, true
	default:
		return normalizedState, false
	}
}

// PullRequestReference identifies a pull request either by its source branch
// name or by its numeric identifier.
type PullRequestReference struct {
	branchName string
	number     int
	byNumber   bool
}

// NewBranchReference builds a reference keyed by the pull request source branch.
func NewBranchReference(branchName string) PullRequestReference {
	return PullRequestReference{branchName: strings.TrimSpace(branchName)}
}

// NewNumberReference builds a reference keyed by the pull request number.
func NewNumberReference(pullRequestNumber int) PullRequestReference {
	return PullRequestReference{number: pullRequestNumber, byNumber: true}
}

// Argument renders the reference the way gh pr view expects it.
func (reference PullRequestReference) Argument() string {
	if reference.byNumber {
		return strconv.Itoa(reference.number)
	}
	return reference.branchName
}

// String describes the reference for error messages.
func (reference PullRequestReference) String() string {
	if reference.byNumber {
		return fmt.Sprintf("pull request #%d", reference.number)
	}
	return fmt.Sprintf("branch %q", reference.branchName)
}

func (reference PullRequestReference) isEmpty() bool {
	return !reference.byNumber && len(reference.branchName) == 0
}

// matchesMissingPullRequestStderr reports whether stderr output indicates the
// branch-keyed lookup found no pull request. The GitHub CLI deletes merged
// source branches, so this pattern is the trigger for the numeric fallback.
func (reference PullRequestReference) matchesMissingPullRequestStderr(standardError string) bool {
	if reference.byNumber {
		return false
	}
	lowercasedStandardError := strings.ToLower(standardError)
	if !strings.Contains(lowercasedStandardError, missingPullRequestStderrPatternConstant) {
		return false
	}
	quotedBranch := fmt.Sprintf(quotedReferenceTemplateConstant, reference.branchName)
	return strings.Contains(standardError, quotedBranch)
}

// PullRequestCreateOptions configures CreatePullRequest invocations.
type PullRequestCreateOptions struct {
	HeadBranch string
	BaseBranch string
	Title      string
	Body       string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

// ErrExecutorNotConfigured indicates the client was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ResponseDecodingError indicates JSON decoding failures.
type ResponseDecodingError struct {
	Operation OperationName
	Cause     error
}

// Error describes the decoding failure.
func (decodingError ResponseDecodingError) Error() string {
	return fmt.Sprintf(responseDecodingErrorTemplateConstant, decodingError.Operation, decodingError.Cause)
}

// Unwrap exposes the underlying JSON error.
func (decodingError ResponseDecodingError) Unwrap() error {
	return decodingError.Cause
}

// PullRequestNotFoundError reports a state lookup that found no pull request
// for the queried reference.
type PullRequestNotFoundError struct {
	Reference PullRequestReference
}

// Error describes the missing pull request.
func (notFoundError PullRequestNotFoundError) Error() string {
	return fmt.Sprintf(pullRequestNotFoundTemplateConstant, notFoundError.Reference)
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// CheckAvailability probes whether the GitHub CLI can be invoked at all. Any
// failure, including a missing executable, is reported as an OperationError.
func (client *Client) CheckAvailability(executionContext context.Context) error {
	commandDetails := execshell.CommandDetails{Arguments: []string{versionFlagConstant}}

	_, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		return OperationError{Operation: checkAvailabilityOperationNameConstant, Cause: executionError}
	}
	return nil
}

// CreatePullRequest opens a pull request using gh pr create and returns the
// pull request URL printed by the CLI.
func (client *Client) CreatePullRequest(executionContext context.Context, options PullRequestCreateOptions) (string, error) {
	headBranch := strings.TrimSpace(options.HeadBranch)
	if len(headBranch) == 0 {
		return "", InvalidInputError{FieldName: headBranchFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(options.Title)) == 0 {
		return "", InvalidInputError{FieldName: titleFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandArguments := []string{
		pullRequestSubcommandConstant,
		createSubcommandConstant,
		headFlagConstant,
		headBranch,
		titleFlagConstant,
		options.Title,
		bodyFlagConstant,
		options.Body,
	}
	if baseBranch := strings.TrimSpace(options.BaseBranch); len(baseBranch) > 0 {
		commandArguments = append(commandArguments, baseFlagConstant, baseBranch)
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{Arguments: commandArguments})
	if executionError != nil {
		return "", OperationError{Operation: createPullRequestOperationNameConstant, Cause: executionError}
	}

	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// ViewPullRequestState reads the state of the referenced pull request using
// gh pr view --json state. Branch-keyed lookups whose stderr matches the
// missing-pull-request pattern surface as PullRequestNotFoundError.
func (client *Client) ViewPullRequestState(executionContext context.Context, reference PullRequestReference) (PullRequestState, error) {
	if reference.isEmpty() {
		return "", InvalidInputError{FieldName: referenceFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments: []string{
			pullRequestSubcommandConstant,
			viewSubcommandConstant,
			reference.Argument(),
			jsonFlagConstant,
			stateJSONFieldConstant,
		},
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, commandDetails)
	if executionError != nil {
		commandFailure := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailure) && reference.matchesMissingPullRequestStderr(commandFailure.Result.StandardError) {
			return "", PullRequestNotFoundError{Reference: reference}
		}
		return "", OperationError{Operation: viewPullRequestStateOperationNameConstant, Cause: executionError}
	}

	var response struct {
		State string `json:"state"`
	}
	decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response)
	if decodingError != nil {
		return "", ResponseDecodingError{Operation: viewPullRequestStateOperationNameConstant, Cause: decodingError}
	}

	normalizedState, _ := ParsePullRequestState(response.State)
	return normalizedState, nil
}
