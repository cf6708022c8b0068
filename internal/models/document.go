package models

import "time"

// Document statuses.
const (
	StatusNew = "new"
)

// Document is one mirrored submission as stored in a collection.
type Document struct {
	ID          string                 `json:"id"`
	Collection  string                 `json:"collection"`
	Data        map[string]interface{} `json:"data"`
	Status      string                 `json:"status"`
	SubmittedAt time.Time              `json:"submittedAt"`
}

// String returns the named data field as text, or "".
func (d Document) String(key string) string {
	if v, ok := d.Data[key].(string); ok {
		return v
	}
	return ""
}
