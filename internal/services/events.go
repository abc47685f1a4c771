package services

// EventPublisher publishes domain events to a message broker. Services
// nil-check their publisher so the application also runs without one.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}
