package monitor

import "time"

// Status summarizes remote connectivity and the sync backlog.
type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	SyncBuffer bool      `json:"sync_buffer"`
	Backlog    int       `json:"backlog"`
	LastCheck  time.Time `json:"last_check"`
}
