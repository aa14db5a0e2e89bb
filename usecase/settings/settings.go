package settings

import (
	"sync"

	"go.uber.org/zap"

	"github.com/tasklight/backend/domain"
	"github.com/tasklight/backend/repository"
	"github.com/tasklight/backend/usecase"
)

// Store holds the user preferences consumed by the settings UI.
type Store struct {
	mu       sync.RWMutex
	settings domain.Settings
	writer   usecase.StateWriter
	logger   *zap.Logger
}

// NewStore loads persisted settings, falling back to defaults when none
// have been written yet.
func NewStore(state repository.StateRepository, writer usecase.StateWriter, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	settings, err := state.LoadSettings()
	if err != nil {
		return nil, err
	}
	return &Store{
		settings: settings,
		writer:   writer,
		logger:   logger,
	}, nil
}

// Get returns the current settings.
func (s *Store) Get() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the settings wholesale and persists them.
func (s *Store) Update(settings domain.Settings) domain.Settings {
	s.mu.Lock()
	s.settings = settings
	if s.writer != nil {
		s.writer.EnqueueSettings(settings)
	}
	s.mu.Unlock()
	return settings
}
