package result

import (
	"errors"
	"fmt"
)

// Error is a classified failure. Op names the primitive that failed
// (e.g. "clone", "checkout") and Err holds the underlying detail.
type Error struct {
	Status Status
	Op     string
	Err    error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Op != "" && e.Err != nil:
		msg = fmt.Sprintf("%s: %s: %v", e.Op, e.Status.Description(), e.Err)
	case e.Op != "":
		msg = fmt.Sprintf("%s: %s", e.Op, e.Status.Description())
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %v", e.Status.Description(), e.Err)
	default:
		msg = e.Status.Description()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by status, so
// errors.Is(err, ErrBranchNotFound) works for any *Error with that status.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Status == e.Status
}

// Sentinel errors, one per failure status.
var (
	ErrInvalidArgument           = &Error{Status: InvalidArgument}
	ErrNotCloned                 = &Error{Status: NotCloned}
	ErrAlreadyCloned             = &Error{Status: AlreadyCloned}
	ErrTransportFailure          = &Error{Status: TransportFailure}
	ErrBranchAlreadyExists       = &Error{Status: BranchAlreadyExists}
	ErrBranchNotFound            = &Error{Status: BranchNotFound}
	ErrBranchCurrentlyCheckedOut = &Error{Status: BranchCurrentlyCheckedOut}
	ErrCannotDeleteCurrent       = &Error{Status: CannotDeleteCurrent}
	ErrNotMerged                 = &Error{Status: NotMerged}
	ErrConflictPredicted         = &Error{Status: ConflictPredicted}
	ErrFailed                    = &Error{Status: Failed}
)

// New returns an *Error for op with the given status and no detail.
func New(status Status, op string) *Error {
	return &Error{Status: status, Op: op}
}

// Wrap classifies err under status. A nil err yields nil.
func Wrap(status Status, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Status: status, Op: op, Err: err}
}

// Errorf builds a classified error with a formatted detail message.
func Errorf(status Status, op, format string, args ...any) error {
	return &Error{Status: status, Op: op, Err: fmt.Errorf(format, args...)}
}

// StatusOf extracts the status carried by err.
// nil is Successful; errors without a classification are Failed.
func StatusOf(err error) Status {
	if err == nil {
		return Successful
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Status
	}
	return Failed
}
