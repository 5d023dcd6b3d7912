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

// ReconAgent initiates network scans. The scan itself runs in an external
// scanner; this service acknowledges the request and raises an alert.
type ReconAgent struct {
	bus event.Bus
}

func NewReconAgent(bus event.Bus) *ReconAgent {
	return &ReconAgent{bus: bus}
}

func (a *ReconAgent) ScanNetwork(ctx context.Context, ipRange string, actorID string) (model.ScanResponse, error) {
	ipRange = strings.TrimSpace(ipRange)
	if ipRange == "" {
		return model.ScanResponse{}, apierror.New("BAD_REQUEST", "ip_range is required", "", http.StatusBadRequest)
	}

	resp := model.ScanResponse{
		Status:  "scan_started",
		IPRange: ipRange,
		Message: "Network scan initiated for " + ipRange + ".",
	}

	a.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      event.TypeScanStarted,
		Payload:   resp,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		ActorID:   actorID,
	})

	return resp, nil
}
