package agent

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"snagdef/internal/event"
	"snagdef/internal/model"
	"snagdef/pkg/apierror"
)

// IncidentResponseAgent acknowledges containment requests. Actual blocking
// happens in external firewall tooling.
type IncidentResponseAgent struct {
	bus event.Bus
}

func NewIncidentResponseAgent(bus event.Bus) *IncidentResponseAgent {
	return &IncidentResponseAgent{bus: bus}
}

func (a *IncidentResponseAgent) ContainThreat(ctx context.Context, target string, actorID string) (model.ContainmentResponse, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return model.ContainmentResponse{}, apierror.New("BAD_REQUEST", "target is required", "", http.StatusBadRequest)
	}

	resp := model.ContainmentResponse{
		Status:  "containment_started",
		Target:  target,
		Message: "Containment initiated for " + target + ".",
	}

	a.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      event.TypeContainmentStarted,
		Payload:   resp,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ActorID:   actorID,
	})

	return resp, nil
}
