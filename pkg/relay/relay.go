// Package relay delivers accepted form submissions to the external
// service that forwards them to the school.
package relay

import (
	"context"
	"fmt"
	"strings"
)

// Field is one ordered key of an outbound payload.
type Field struct {
	Name  string
	Value interface{}
}

// Attachment is a binary file sent alongside the fields.
type Attachment struct {
	Field       string
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a relay-ready submission. Field order is preserved by every driver.
type Message struct {
	Fields     []Field
	Attachment *Attachment
}

// Get returns the value of the named field.
func (m Message) Get(name string) (interface{}, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Relay submits a message and reports whether the relay accepted it.
type Relay interface {
	Submit(ctx context.Context, msg Message) error
}

// StatusError reports a non-2xx relay response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay responded %d: %s", e.StatusCode, e.Body)
}

// stringify renders a field value for text-only transports.
func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return strings.Join(val, ", ")
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(val)
	}
}
