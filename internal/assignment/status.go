package assignment

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether no engine operation moves the status further.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

// Finished reports whether the assignment counts as done for per-inspector listings.
func (s Status) Finished() bool {
	return s == StatusCompleted
}

// Unfinished reports whether the assignment is still owed. in_progress is neither
// finished nor unfinished.
func (s Status) Unfinished() bool {
	return s == StatusPending
}

func (s Status) String() string {
	return string(s)
}
