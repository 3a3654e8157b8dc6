// Package common contains shared constants and sentinel errors used across
// modelmart components.
package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the broker
// session token on outbound requests.
const SessionTokenHeaderName = "session_token"
