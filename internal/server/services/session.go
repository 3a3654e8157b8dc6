// Package services contains server-side business logic. This file
// implements SessionService, which turns an ed25519 wallet-key proof
// into a session token whose subject is the wallet principal.
package services

import (
	"context"
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/modelmart/modelmart/internal/common"
	"github.com/modelmart/modelmart/internal/icp"
	"github.com/modelmart/modelmart/internal/server/auth"
	"github.com/modelmart/modelmart/internal/server/config"
)

const challengeNonceSize = 32

// SessionService issues handshake challenges and opens sessions:
// - Challenge: hand out a single-use nonce for a wallet public key
// - OpenSession: verify the signed nonce and mint a session token
type SessionService struct {
	challenges                   *auth.ChallengeStore
	jwtSecret                    []byte
	sessionTokenValidityDuration time.Duration
}

// NewSessionService constructs a SessionService using server config.
func NewSessionService(cfg *config.Config) *SessionService {
	return &SessionService{
		challenges:                   auth.NewChallengeStore(cfg.ChallengeTTL),
		jwtSecret:                    []byte(cfg.SecretKey),
		sessionTokenValidityDuration: cfg.SessionTokenValidityDuration,
	}
}

// Challenge issues a fresh nonce bound to the given DER-encoded public
// key, replacing any outstanding one.
func (s *SessionService) Challenge(ctx context.Context, publicKeyDER []byte) ([]byte, error) {
	if len(publicKeyDER) < ed25519.PublicKeySize {
		return nil, common.ErrorValidation
	}

	nonce := common.GenerateRandByteArray(challengeNonceSize)
	s.challenges.Issue(publicKeyDER, nonce)
	return nonce, nil
}

// OpenSession verifies the signed nonce and returns a session token plus
// the self-authenticating principal derived from the public key.
func (s *SessionService) OpenSession(ctx context.Context, publicKeyDER, nonce, signature []byte) (string, string, error) {
	if err := s.challenges.Verify(publicKeyDER, nonce, signature); err != nil {
		if errors.Is(err, auth.ErrBadPublicKey) {
			return "", "", common.ErrorValidation
		}
		return "", "", common.ErrorUnauthorized
	}

	principal := icp.SelfAuthenticating(publicKeyDER).String()

	token, err := auth.GenerateToken(principal, s.jwtSecret, s.sessionTokenValidityDuration)
	if err != nil {
		return "", "", common.ErrorInternal
	}

	return token, principal, nil
}
