package archiver

import (
	"strings"
	"time"
)

const (
	archivedPrefix    = "The following projects have been archived: "
	noArchivedMessage = "No projects were archived."
)

// Report summarises one run. Archived keeps first-seen tracker order.
type Report struct {
	RunID    string
	Cutoff   time.Time
	Archived []string
	Skipped  int
	Checked  int
}

// Message renders the summary text sent to the team channel.
func (r *Report) Message() string {
	if r == nil || len(r.Archived) == 0 {
		return noArchivedMessage
	}
	return archivedPrefix + strings.Join(r.Archived, ", ")
}
