package releases

import "fmt"

const releaseErrorWithCauseTemplateConstant = "%s: %s"

// ReleaseError is the single error kind surfaced by release automation.
// Transient conditions are absorbed by retrying; everything that reaches the
// caller is fatal to the release flow.
type ReleaseError struct {
	Message string
	Cause   error
}

// Error describes the release failure.
func (releaseError ReleaseError) Error() string {
	if releaseError.Cause == nil {
		return releaseError.Message
	}
	return fmt.Sprintf(releaseErrorWithCauseTemplateConstant, releaseError.Message, releaseError.Cause)
}

// Unwrap exposes the underlying cause when one exists.
func (releaseError ReleaseError) Unwrap() error {
	return releaseError.Cause
}
