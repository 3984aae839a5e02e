package events

import "context"

// Channels
const (
	StreamAds = "events:ads"
)

// Event types
const (
	EventAdCreated = "ad_created"
	EventAdUpdated = "ad_updated"
)

type Event struct {
	Type    string         `json:"type"`
	UserID  string         `json:"user_id,omitempty"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
