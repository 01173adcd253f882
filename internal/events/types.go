// Package events publishes archiver lifecycle events.
package events

// Event types
const (
	ProjectArchived = "project.archived"
	RunCompleted    = "run.completed"
)

// Subject returns the bus subject for an event type under prefix.
func Subject(prefix, eventType string) string {
	if prefix == "" {
		return eventType
	}
	return prefix + "." + eventType
}
