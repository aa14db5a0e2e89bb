package transport

import "encoding/json"

// TaskCreateRequest carries the fields a client supplies for a new task.
// DueDate is RFC3339 or absent.
type TaskCreateRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	DueDate     *string   `json:"dueDate"`
	Tags        []TagBody `json:"tags"`
	Completed   bool      `json:"completed"`
}

// TaskPatchRequest distinguishes absent fields (nil) from supplied ones.
// DueDate and Tags stay raw so "set to null" survives decoding.
type TaskPatchRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Priority    *string         `json:"priority"`
	Status      *string         `json:"status"`
	DueDate     json.RawMessage `json:"dueDate"`
	Tags        json.RawMessage `json:"tags"`
	Completed   *bool           `json:"completed"`
}

// TagBody is the wire shape of a tag, embedded or canonical.
type TagBody struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TagCreateRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TagPatchRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type SettingsRequest struct {
	Notifications      bool `json:"notifications"`
	EmailNotifications bool `json:"emailNotifications"`
	DarkMode           bool `json:"darkMode"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
