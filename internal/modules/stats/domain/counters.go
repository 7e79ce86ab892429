package domain

import "time"

// Counters are the process-wide usage statistics
type Counters struct {
	MessagesHandled int64     `json:"messages_handled"`
	MediaDelivered  int64     `json:"media_delivered"`
	UpdatedAt       time.Time `json:"updated_at"`
}
