package pipeline

import (
	"errors"
	"fmt"
)

// Failure kinds. Every fatal step error wraps exactly one of these so
// callers can classify with errors.Is without caring which step raised it.
var (
	ErrEnvironmentMismatch = errors.New("environment mismatch")
	ErrProvisioningFailure = errors.New("provisioning failure")
	ErrStoreInitFailure    = errors.New("state store initialization failure")
	ErrVerificationFailure = errors.New("verification failure")
)

// StepError is a fatal step failure. Kind is one of the sentinel errors
// above; Cause is the underlying error, if any.
type StepError struct {
	Kind  error
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: step %q failed", e.Kind.Error(), e.Step)
	}
	return fmt.Sprintf("%s: step %q failed: %v", e.Kind.Error(), e.Step, e.Cause)
}

func (e *StepError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Fatal wraps err as a fatal failure of the named step.
func Fatal(kind error, step string, err error) error {
	return &StepError{Kind: kind, Step: step, Cause: err}
}

// Fatalf is Fatal with a formatted cause.
func Fatalf(kind error, step string, format string, args ...any) error {
	return &StepError{Kind: kind, Step: step, Cause: fmt.Errorf(format, args...)}
}
