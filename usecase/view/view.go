// Package view computes presentation subsets of the task collection.
// Every function is pure: it never mutates its input and is deterministic
// for a given snapshot and reference time.
package view

import (
	"sort"
	"strings"
	"time"

	"github.com/tasklight/backend/domain"
)

// Order selects one of the three supported task orderings.
type Order string

const (
	OrderDueDate   Order = "dueDate"
	OrderPriority  Order = "priority"
	OrderCreatedAt Order = "createdAt"
)

// OnDate returns the tasks whose due date falls on the same calendar day as
// date, ignoring the time-of-day component. Tasks without a due date never
// qualify.
func OnDate(tasks []domain.Task, date time.Time) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if sameDay(*t.DueDate, date) {
			out = append(out, t)
		}
	}
	return out
}

// Today is OnDate against the current date.
func Today(tasks []domain.Task, now time.Time) []domain.Task {
	return OnDate(tasks, now)
}

// Overdue returns tasks due strictly before the start of now's day that are
// not completed.
func Overdue(tasks []domain.Task, now time.Time) []domain.Task {
	today := startOfDay(now)
	var out []domain.Task
	for _, t := range tasks {
		if t.DueDate == nil || t.Completed {
			continue
		}
		if t.DueDate.Before(today) {
			out = append(out, t)
		}
	}
	return out
}

// Buckets is the three-way partition of future-dated tasks.
type Buckets struct {
	Week  []domain.Task `json:"week"`
	Month []domain.Task `json:"month"`
	Later []domain.Task `json:"later"`
}

// Upcoming partitions tasks due strictly after the start of now's day into
// this week (before today+7d), this month (before today+30d), and later.
// Undated tasks and tasks due at or before the start of today are excluded;
// the latter belong to the overdue view. The partition is exhaustive and
// disjoint over the rest.
func Upcoming(tasks []domain.Task, now time.Time) Buckets {
	today := startOfDay(now)
	nextWeek := today.AddDate(0, 0, 7)
	nextMonth := today.AddDate(0, 0, 30)

	var buckets Buckets
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		if !due.After(today) {
			continue
		}
		switch {
		case due.Before(nextWeek):
			buckets.Week = append(buckets.Week, t)
		case due.Before(nextMonth):
			buckets.Month = append(buckets.Month, t)
		default:
			buckets.Later = append(buckets.Later, t)
		}
	}
	return buckets
}

// ByTag returns tasks whose embedded tag list contains the given id.
func ByTag(tasks []domain.Task, tagID string) []domain.Task {
	var out []domain.Task
	for _, t := range tasks {
		if t.HasTag(tagID) {
			out = append(out, t)
		}
	}
	return out
}

// ByStatus filters on exact status; the StatusAll sentinel passes every
// task through.
func ByStatus(tasks []domain.Task, status domain.Status) []domain.Task {
	if status == "" || status == domain.StatusAll {
		return append([]domain.Task(nil), tasks...)
	}
	var out []domain.Task
	for _, t := range tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

// Search matches the query case-insensitively against title, description,
// and embedded tag names. A blank query passes everything.
func Search(tasks []domain.Task, query string) []domain.Task {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return append([]domain.Task(nil), tasks...)
	}
	var out []domain.Task
	for _, t := range tasks {
		if matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// Sort returns a sorted copy. All orderings are stable, so tasks that
// compare equal keep their input order; in particular, tasks without a due
// date sort after all dated tasks in input order.
func Sort(tasks []domain.Task, order Order) []domain.Task {
	out := append([]domain.Task(nil), tasks...)
	switch order {
	case OrderPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		})
	case OrderCreatedAt:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a != nil && b != nil {
				return a.Before(*b)
			}
			return a != nil && b == nil
		})
	}
	return out
}

// Query combines the list-endpoint filters; zero values pass everything.
type Query struct {
	Status domain.Status
	TagID  string
	Search string
	Sort   Order
}

// Apply runs the qualifying filters, then exactly one ordering, over the
// same snapshot.
func Apply(tasks []domain.Task, q Query) []domain.Task {
	out := ByStatus(tasks, q.Status)
	if q.TagID != "" {
		out = ByTag(out, q.TagID)
	}
	out = Search(out, q.Search)
	return Sort(out, q.Sort)
}

func matches(t domain.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Description), query) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag.Name), query) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
