package domain

// Settings holds user-facing preferences consumed by the settings UI.
type Settings struct {
	Notifications      bool `json:"notifications"`
	EmailNotifications bool `json:"emailNotifications"`
	DarkMode           bool `json:"darkMode"`
}

// DefaultSettings is what a fresh installation starts with.
func DefaultSettings() Settings {
	return Settings{
		Notifications: true,
		DarkMode:      false,
	}
}
