package bolt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
)

const (
	stateBucket = "state"

	keyTasks    = "tasks"
	keyTags     = "tags"
	keySettings = "settings"
)

// StateRepository persists whole-collection snapshots in a local bbolt file,
// one JSON document per key.
type StateRepository struct {
	db *bolt.DB
}

// Open initializes the bbolt file and ensures the state bucket exists.
func Open(path string) (*StateRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(stateBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &StateRepository{db: db}, nil
}

func (r *StateRepository) LoadTasks() ([]domain.Task, error) {
	var tasks []domain.Task
	if err := r.load(keyTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *StateRepository) SaveTasks(tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return r.save(keyTasks, tasks)
}

func (r *StateRepository) LoadTags() ([]domain.Tag, error) {
	var tags []domain.Tag
	if err := r.load(keyTags, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *StateRepository) SaveTags(tags []domain.Tag) error {
	if tags == nil {
		tags = []domain.Tag{}
	}
	return r.save(keyTags, tags)
}

func (r *StateRepository) LoadSettings() (domain.Settings, error) {
	settings := domain.DefaultSettings()
	if err := r.load(keySettings, &settings); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

func (r *StateRepository) SaveSettings(settings domain.Settings) error {
	return r.save(keySettings, settings)
}

// Close closes the underlying database.
func (r *StateRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// load leaves out untouched when the key has never been written.
func (r *StateRepository) load(key string, out interface{}) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(stateBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	})
}

func (r *StateRepository) save(key string, value interface{}) error {
	if r == nil || r.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(stateBucket)).Put([]byte(key), payload)
	})
}

var _ repository.StateRepository = (*StateRepository)(nil)
