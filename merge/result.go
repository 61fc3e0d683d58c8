package merge

import "github.com/creativeprojects/folderfix/mailbox"

type Status int

const (
	// StatusNotFound means the candidate folder does not exist (expected)
	StatusNotFound Status = iota
	// StatusMerged means the candidate folder was fully merged
	StatusMerged
	// StatusFailed means at least one operation on the candidate failed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not found"
	case StatusMerged:
		return "merged"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the outcome of one candidate folder of one well-known role.
type Result struct {
	Role      mailbox.Role
	Candidate string
	Status    Status
	Stats     Stats
	Err       error
}

// Failed reports whether any result in the list is a failure.
func Failed(results []Result) bool {
	for _, result := range results {
		if result.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Totals sums the stats of all results.
func Totals(results []Result) Stats {
	totals := Stats{}
	for _, result := range results {
		totals.add(result.Stats)
	}
	return totals
}
