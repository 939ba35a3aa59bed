package domain

type SubmissionStatus string

const (
	SubmissionStatusInitiated SubmissionStatus = "INITIATED"
	SubmissionStatusSubmitted SubmissionStatus = "SUBMITTED"
	SubmissionStatusCompleted SubmissionStatus = "COMPLETED"
	SubmissionStatusFailed    SubmissionStatus = "FAILED"
)

var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionStatusInitiated: {SubmissionStatusSubmitted, SubmissionStatusFailed},
	SubmissionStatusSubmitted: {SubmissionStatusCompleted, SubmissionStatusFailed},
}

func CanTransitionTo(from, to SubmissionStatus) bool {
	for _, allowed := range submissionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusCompleted || s == SubmissionStatusFailed
}

// String representation (for logging)
func (s SubmissionStatus) String() string {
	return string(s)
}
