package event

type Type string

const (
	TypeScanStarted        Type = "alert.scan_started"
	TypeThreatsDetected    Type = "alert.threats_detected"
	TypeContainmentStarted Type = "alert.containment_started"
	TypeForensicsLogged    Type = "alert.forensics_logged"
)

// Event is what gets fanned out to connected alert listeners, JSON-encoded.
type Event struct {
	ID        string      `json:"id"`
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp string      `json:"timestamp"`
	ActorID   string      `json:"actor_id,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
