package types

import "fmt"

// JobKind is the kind of a deferred action carried by the task queue
type JobKind string

const (
	JobKindUnban    JobKind = "unban"
	JobKindReminder JobKind = "reminder"
)

// AllJobKinds returns all valid job kinds
func AllJobKinds() []JobKind {
	return []JobKind{
		JobKindUnban,
		JobKindReminder,
	}
}

// IsValid checks if the job kind is valid
func (k JobKind) IsValid() bool {
	switch k {
	case JobKindUnban, JobKindReminder:
		return true
	default:
		return false
	}
}

func (k JobKind) String() string {
	return string(k)
}

// ParseJobKind parses a string into a JobKind
func ParseJobKind(s string) (JobKind, error) {
	kind := JobKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid job kind: %s", s)
	}
	return kind, nil
}
