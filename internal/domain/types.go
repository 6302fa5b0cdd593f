package domain

import "time"

// Work-item types as reported by the tracker.
const (
	TypeRequirement = "Requirement"
	TypeBug         = "Bug"
	TypeTask        = "Task"
)

// WorkItem is an immutable snapshot of one tracked item plus its full
// revision history and pull-request links. The engine never mutates it.
type WorkItem struct {
	ID        int        `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	Assignee  string     `json:"currentAssignee"`
	Revisions []Revision `json:"revisions"`
	PRLinks   []PRLink   `json:"prLinks"`
}

// Revision is one historical snapshot of a work item's fields, ordered by
// revision number. Order is the engine's only assumption of chronology.
type Revision struct {
	State       string    `json:"state"`
	AssignedTo  string    `json:"assignedTo"`
	ChangedBy   string    `json:"changedBy"`
	ChangedDate time.Time `json:"changedDate"`
}

// PRLink identifies a pull request referenced by a work item.
type PRLink struct {
	Repo string `json:"repo"`
	PRID int    `json:"prId"`
}

// Thread is one comment thread on a pull request, ordered oldest first.
type Thread struct {
	Comments []Comment `json:"comments"`
}

// Comment is a single pull-request comment. CommentType distinguishes
// human text comments from system/status noise.
type Comment struct {
	Author      string `json:"author"`
	CommentType string `json:"commentType"`
}

// Snapshot is the offline input shape consumed by the CLI: work items with
// inlined PR threads keyed by "repo/prId".
type Snapshot struct {
	Items   []WorkItem          `json:"items"`
	Threads map[string][]Thread `json:"threads"`
}
