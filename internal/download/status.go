package download

// validTransitions defines allowed job state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
var validTransitions = map[Status][]Status{
	StatusQueued:      {StatusDownloading, StatusFailed},
	StatusDownloading: {StatusImporting, StatusFailed},
	StatusImporting:   {StatusCompleted, StatusFailed},
	StatusCompleted:   {},
	StatusFailed:      {},
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if the job is finished, successfully or not.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
