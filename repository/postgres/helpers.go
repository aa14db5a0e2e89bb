package postgres

import (
	"encoding/json"
	"time"

	"github.com/tasklight/backend/domain"
)

func marshalTags(tags []domain.Tag) ([]byte, error) {
	if tags == nil {
		tags = []domain.Tag{}
	}
	return json.Marshal(tags)
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
