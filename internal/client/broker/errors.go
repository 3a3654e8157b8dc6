package broker

import "errors"

var (
	// ErrUnavailable means the broker could not be reached or did not
	// answer in time.
	ErrUnavailable = errors.New("broker unavailable")

	// ErrNoIdentity means a session-scoped call was attempted without a
	// connected wallet identity.
	ErrNoIdentity = errors.New("no wallet identity connected")
)
