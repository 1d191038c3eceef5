// Package result defines the outcome vocabulary shared by the git adapter,
// the conflict predictor and the batch runner.
//
// Every per-repository operation ends in exactly one [Status]. Adapter
// failures travel as [*Error] values carrying that status, so callers never
// see raw command errors. The batch runner collects one [Result] per
// repository into a [Set] and reports progress through [Listener].
package result

// Status is the outcome of one operation on one repository.
type Status string

const (
	Successful                Status = "successful"
	InvalidArgument           Status = "invalid-argument"
	NotCloned                 Status = "not-cloned"
	AlreadyCloned             Status = "already-cloned"
	TransportFailure          Status = "transport-failure"
	BranchAlreadyExists       Status = "branch-already-exists"
	BranchNotFound            Status = "branch-not-found"
	BranchCurrentlyCheckedOut Status = "branch-currently-checked-out"
	CannotDeleteCurrent       Status = "cannot-delete-current"
	NotMerged                 Status = "not-merged"
	ConflictPredicted         Status = "conflict-predicted"
	Failed                    Status = "failed"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// IsSuccess reports whether s is Successful.
func (s Status) IsSuccess() bool {
	return s == Successful
}

// Description returns a short human-readable sentence for the status.
func (s Status) Description() string {
	switch s {
	case Successful:
		return "completed successfully"
	case InvalidArgument:
		return "invalid argument"
	case NotCloned:
		return "repository is not cloned"
	case AlreadyCloned:
		return "repository is already cloned"
	case TransportFailure:
		return "remote could not be reached or rejected the request"
	case BranchAlreadyExists:
		return "branch already exists"
	case BranchNotFound:
		return "branch does not exist"
	case BranchCurrentlyCheckedOut:
		return "branch is already checked out"
	case CannotDeleteCurrent:
		return "the current branch cannot be deleted"
	case NotMerged:
		return "branch is not fully merged"
	case ConflictPredicted:
		return "local changes would conflict"
	default:
		return "operation failed"
	}
}

// AllStatuses lists every status in taxonomy order.
func AllStatuses() []Status {
	return []Status{
		Successful,
		InvalidArgument,
		NotCloned,
		AlreadyCloned,
		TransportFailure,
		BranchAlreadyExists,
		BranchNotFound,
		BranchCurrentlyCheckedOut,
		CannotDeleteCurrent,
		NotMerged,
		ConflictPredicted,
		Failed,
	}
}
