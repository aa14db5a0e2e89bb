package repository

import "github.com/tasklight/backend/domain"

// StateRepository is the durable string-keyed store backing the in-memory
// collections. Reads happen once, at store construction; writes arrive
// through the async state writer and replace the whole collection.
type StateRepository interface {
	LoadTasks() ([]domain.Task, error)
	SaveTasks(tasks []domain.Task) error

	LoadTags() ([]domain.Tag, error)
	SaveTags(tags []domain.Tag) error

	LoadSettings() (domain.Settings, error)
	SaveSettings(settings domain.Settings) error
}
