package model

// ErrorResponse is the error body for every endpoint.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type AdminOnlyResponse struct {
	Message  string `json:"message"`
	UserRole Role   `json:"user_role"`
}

type ScanResponse struct {
	Status  string `json:"status"`
	IPRange string `json:"ip_range"`
	Message string `json:"message"`
}

type ThreatDetectResponse struct {
	Threats []map[string]any `json:"threats"`
	Count   int              `json:"count"`
}

type ContainmentResponse struct {
	Status  string `json:"status"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

type ForensicsResponse struct {
	Status   string         `json:"status"`
	ReportID string         `json:"report_id"`
	Details  map[string]any `json:"details"`
	Message  string         `json:"message"`
}
