package models

// Recognized webhook event types emitted by the remote service.
const (
	EventRowCalculationCompleted = "row.calculation.completed"
	EventRowCalculationFailed    = "row.calculation.failed"
	EventRowCalculationStarted   = "row.calculation.started"
	EventRowCreated              = "row.created"
	EventPhacetCreated           = "phacet.created"
)

func KnownEventType(s string) bool {
	switch s {
	case EventRowCalculationCompleted,
		EventRowCalculationFailed,
		EventRowCalculationStarted,
		EventRowCreated,
		EventPhacetCreated:
		return true
	}
	return false
}

// WebhookEvent is one inbound delivery from the remote service. Consumed
// once, never persisted.
type WebhookEvent struct {
	EventType string         `json:"eventType"`
	EventID   string         `json:"eventId"`
	Data      map[string]any `json:"data"`
}

// OutputRecord is what gets handed to the workflow engine per delivery:
// the flattened event payload plus eventType/eventId/tableId and, when
// enrichment succeeds, the fetched row under "row".
type OutputRecord map[string]any
