package model

type KeyEventLog struct {
	Event     string `json:"event"`
	Token     string `json:"token"`
	Tier      string `json:"tier"`
	Plan      string `json:"plan,omitempty"`
	OwnerID   string `json:"owner_id,omitempty"`
	Actor     string `json:"actor,omitempty"`
	Detail    string `json:"detail,omitempty"`
	ExpiresAt *int64 `json:"expires_at,omitempty"`
	Version   string `json:"version,omitempty"`
	LoggedAt  string `json:"logged_at"`
}
