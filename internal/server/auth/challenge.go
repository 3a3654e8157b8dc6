package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sync"
	"time"
)

var (
	ErrChallengeNotFound = errors.New("challenge not found or expired")
	ErrBadSignature      = errors.New("signature does not verify")
	ErrBadPublicKey      = errors.New("malformed public key")
)

// ChallengeStore hands out single-use nonces bound to a public key. A
// nonce proves key possession when it comes back signed; it is consumed
// on the first verification attempt, good or bad.
type ChallengeStore struct {
	ttl time.Duration

	mu     sync.Mutex
	nonces map[string]challenge
}

type challenge struct {
	nonce     []byte
	expiresAt time.Time
}

func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{ttl: ttl, nonces: make(map[string]challenge)}
}

func keyFingerprint(publicKeyDER []byte) string {
	sum := sha256.Sum256(publicKeyDER)
	return hex.EncodeToString(sum[:])
}

// Issue stores and returns a fresh nonce for the given public key,
// replacing any outstanding one.
func (s *ChallengeStore) Issue(publicKeyDER []byte, nonce []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune(time.Now())
	s.nonces[keyFingerprint(publicKeyDER)] = challenge{
		nonce:     nonce,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Verify consumes the outstanding nonce for the public key and checks
// the ed25519 signature over it.
func (s *ChallengeStore) Verify(publicKeyDER, nonce, signature []byte) error {
	if len(publicKeyDER) < ed25519.PublicKeySize {
		return ErrBadPublicKey
	}

	s.mu.Lock()
	key := keyFingerprint(publicKeyDER)
	ch, ok := s.nonces[key]
	delete(s.nonces, key)
	s.mu.Unlock()

	if !ok || time.Now().After(ch.expiresAt) {
		return ErrChallengeNotFound
	}
	if subtle.ConstantTimeCompare(ch.nonce, nonce) != 1 {
		return ErrChallengeNotFound
	}

	// The DER SPKI wrapper is a fixed prefix; the raw key is its tail.
	pub := ed25519.PublicKey(publicKeyDER[len(publicKeyDER)-ed25519.PublicKeySize:])
	if !ed25519.Verify(pub, nonce, signature) {
		return ErrBadSignature
	}

	return nil
}

// prune drops expired nonces. Callers hold the lock.
func (s *ChallengeStore) prune(now time.Time) {
	for k, ch := range s.nonces {
		if now.After(ch.expiresAt) {
			delete(s.nonces, k)
		}
	}
}
