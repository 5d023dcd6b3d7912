package agent

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"snagdef/internal/event"
	"snagdef/internal/model"
	"snagdef/pkg/apierror"
)

type ReportStore interface {
	Create(ctx context.Context, report model.ForensicReport) error
	ListRecent(ctx context.Context, limit int) ([]model.ForensicReport, error)
}

// ForensicsAgent persists attack details so post-mortem analysis survives a
// process restart.
type ForensicsAgent struct {
	reports ReportStore
	bus     event.Bus
}

func NewForensicsAgent(reports ReportStore, bus event.Bus) *ForensicsAgent {
	return &ForensicsAgent{reports: reports, bus: bus}
}

func (a *ForensicsAgent) LogAttack(ctx context.Context, details map[string]any, reportedBy string) (model.ForensicsResponse, error) {
	if len(details) == 0 {
		return model.ForensicsResponse{}, apierror.New("BAD_REQUEST", "details are required", "", http.StatusBadRequest)
	}

	report := model.ForensicReport{
		ID:         uuid.NewString(),
		Details:    details,
		ReportedBy: reportedBy,
		CreatedAt:  time.Now().UTC(),
	}

	if err := a.reports.Create(ctx, report); err != nil {
		return model.ForensicsResponse{}, err
	}

	a.bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      event.TypeForensicsLogged,
		Payload:   report,
		Timestamp: report.CreatedAt.Format(time.RFC3339),
		ActorID:   reportedBy,
	})

	return model.ForensicsResponse{
		Status:   "forensics_logged",
		ReportID: report.ID,
		Details:  details,
		Message:  "Attack details logged for post-mortem analysis.",
	}, nil
}

func (a *ForensicsAgent) RecentReports(ctx context.Context, limit int) ([]model.ForensicReport, error) {
	return a.reports.ListRecent(ctx, limit)
}
