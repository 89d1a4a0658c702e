package auth

import (
	"context"
	"time"
)

type LoginMethod string

const (
	LoginMethodPassword LoginMethod = "password"
	LoginMethodGoogle   LoginMethod = "google"
)

// LoginAttempt is an audit record of one login, successful or not.
type LoginAttempt struct {
	ID         int64       `json:"id"`
	Method     LoginMethod `json:"method"`
	Email      string      `json:"email,omitempty"`
	Success    bool        `json:"success"`
	Reason     string      `json:"reason,omitempty"`
	RemoteAddr string      `json:"remoteAddr,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

type AuditRepo interface {
	RecordLoginAttempt(ctx context.Context, attempt LoginAttempt) error
	ListLoginAttempts(ctx context.Context, limit int) ([]LoginAttempt, error)
}
