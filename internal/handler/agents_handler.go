package handler

import (
	"encoding/json"
	"net/http"

	"snagdef/internal/agent"
	"snagdef/internal/middleware"
	"snagdef/internal/model"
	"snagdef/pkg/apierror"
)

type AgentsHandler struct {
	recon     *agent.ReconAgent
	detection *agent.ThreatDetectionAgent
	response  *agent.IncidentResponseAgent
	forensics *agent.ForensicsAgent
}

func NewAgentsHandler(
	recon *agent.ReconAgent,
	detection *agent.ThreatDetectionAgent,
	response *agent.IncidentResponseAgent,
	forensics *agent.ForensicsAgent,
) *AgentsHandler {
	return &AgentsHandler{
		recon:     recon,
		detection: detection,
		response:  response,
		forensics: forensics,
	}
}

func (h *AgentsHandler) Recon(w http.ResponseWriter, r *http.Request) {
	result, err := h.recon.ScanNetwork(r.Context(), r.URL.Query().Get("ip_range"), actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AgentsHandler) ThreatDetect(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ThreatDetectRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	threats, err := h.detection.AnalyzeLogs(r.Context(), payload.Logs, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ThreatDetectResponse{Threats: threats, Count: len(threats)})
}

func (h *AgentsHandler) IncidentResponse(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ContainmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	result, err := h.response.ContainThreat(r.Context(), payload.Target, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AgentsHandler) Forensics(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.ForensicsRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	result, err := h.forensics.LogAttack(r.Context(), payload.Details, actorID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func actorID(r *http.Request) string {
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		return user.Username
	}
	return ""
}
