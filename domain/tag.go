package domain

// Tag is a named, colored label shared across tasks. Identity is the ID;
// name and color are mutable.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
