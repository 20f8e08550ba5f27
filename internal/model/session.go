package model

import "time"

// SessionResponse is returned when a generator session is created.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HistoryResponse lists recent credentials, most recent first.
type HistoryResponse struct {
	Passwords []string `json:"passwords"`
}
