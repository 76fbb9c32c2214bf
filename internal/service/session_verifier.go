package service

import (
	"errors"
	"time"

	"github.com/brightclass/backoffice/internal/security"
)

var (
	// ErrSessionInvalid covers undecodable tokens and structurally
	// incomplete claim sets alike; callers cannot distinguish the two.
	ErrSessionInvalid = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session token expired")
)

// SessionClaim is the request-scoped identity produced from a valid token.
// It is never persisted.
type SessionClaim struct {
	SubjectID      string
	IsRefreshToken bool
	ExpiresAt      time.Time
}

// SessionVerifier validates inbound tokens against structural invariants and
// expiry. Refresh tokens pass verification; callers that require a live
// session must reject IsRefreshToken themselves.
type SessionVerifier struct {
	codec *security.TokenCodec
}

func NewSessionVerifier(codec *security.TokenCodec) *SessionVerifier {
	return &SessionVerifier{codec: codec}
}

func (v *SessionVerifier) Verify(token string, now time.Time) (*SessionClaim, error) {
	claims, err := v.codec.Decode(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}
	if claims.Subject == "" || claims.IsRefresh == nil || claims.ExpiresAt == nil {
		return nil, ErrSessionInvalid
	}
	// A token inspected exactly at its expiry instant is already expired.
	if !claims.ExpiresAt.After(now) {
		return nil, ErrSessionExpired
	}
	return &SessionClaim{
		SubjectID:      claims.Subject,
		IsRefreshToken: *claims.IsRefresh,
		ExpiresAt:      *claims.ExpiresAt,
	}, nil
}
