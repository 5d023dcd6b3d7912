package model

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type ThreatDetectRequest struct {
	Logs []map[string]any `json:"logs"`
}

type ContainmentRequest struct {
	Target string `json:"target"`
}

type ForensicsRequest struct {
	Details map[string]any `json:"details"`
}
