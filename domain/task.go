package domain

import "time"

// Priority ranks how pressing a task is. Lower rank sorts first.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityRank = map[Priority]int{
	PriorityUrgent: 0,
	PriorityHigh:   1,
	PriorityMedium: 2,
	PriorityLow:    3,
}

// Rank returns the sort rank of the priority. Unknown values sort last.
func (p Priority) Rank() int {
	if rank, ok := priorityRank[p]; ok {
		return rank
	}
	return len(priorityRank)
}

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"

	// StatusAll is a filter sentinel, never stored on a task.
	StatusAll Status = "all"
)

// Task represents a user-created to-do item. Tags holds detached snapshots
// of canonical tags; the tag store rewrites them on tag mutations.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedAt   time.Time  `json:"createdAt"`
	Tags        []Tag      `json:"tags"`
	Completed   bool       `json:"completed"`
}

// Clone returns a deep copy so snapshots handed to callers stay detached
// from the store's backing collection.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Tags != nil {
		out.Tags = append([]Tag(nil), t.Tags...)
	}
	return out
}

// HasTag reports whether any embedded tag snapshot carries the given id.
func (t *Task) HasTag(tagID string) bool {
	if t == nil {
		return false
	}
	for _, tag := range t.Tags {
		if tag.ID == tagID {
			return true
		}
	}
	return false
}
