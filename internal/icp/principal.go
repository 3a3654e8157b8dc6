// Package icp implements the Internet Computer identity formats the
// marketplace depends on: principal identifiers (textual codec and
// self-authenticating derivation) and ledger account identifiers.
// The byte layouts must match the network exactly, so everything here is
// built from the primitives the formats are defined in terms of
// (SHA-224, big-endian CRC32, unpadded base32).
package icp

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPrincipal = errors.New("invalid principal")

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)
)

// Class suffix bytes for opaque vs derived principals.
const (
	selfAuthenticatingSuffix = 0x02
	anonymousSuffix          = 0x04
)

// maxRawLen is the longest raw principal the network allows (29 bytes,
// which is exactly the self-authenticating form: 28-byte SHA-224 + suffix).
const maxRawLen = 29

// Principal is an Internet Computer principal identifier.
// The zero value is the management principal (empty blob).
type Principal struct {
	raw []byte
}

// FromRaw wraps raw principal bytes. The caller keeps ownership of b.
func FromRaw(b []byte) (Principal, error) {
	if len(b) > maxRawLen {
		return Principal{}, fmt.Errorf("%w: %d bytes", ErrInvalidPrincipal, len(b))
	}
	raw := make([]byte, len(b))
	copy(raw, b)
	return Principal{raw: raw}, nil
}

// SelfAuthenticating derives the principal of a public key given in DER
// (SubjectPublicKeyInfo) form: SHA-224 of the key followed by the
// self-authenticating class suffix.
func SelfAuthenticating(derPubKey []byte) Principal {
	sum := sha256.Sum224(derPubKey)
	raw := make([]byte, 0, maxRawLen)
	raw = append(raw, sum[:]...)
	raw = append(raw, selfAuthenticatingSuffix)
	return Principal{raw: raw}
}

// Anonymous returns the anonymous principal ("2vxsx-fae").
func Anonymous() Principal {
	return Principal{raw: []byte{anonymousSuffix}}
}

// FromText parses the dashed-base32 textual form and verifies its checksum.
func FromText(s string) (Principal, error) {
	compact := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "")
	decoded, err := b32.DecodeString(strings.ToUpper(compact))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidPrincipal, err)
	}
	if len(decoded) < 4 {
		return Principal{}, fmt.Errorf("%w: too short", ErrInvalidPrincipal)
	}
	sum := binary.BigEndian.Uint32(decoded[:4])
	raw := decoded[4:]
	if crc32Of(raw) != sum {
		return Principal{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidPrincipal)
	}
	return FromRaw(raw)
}

// MustFromText is FromText for statically known inputs; it panics on error.
func MustFromText(s string) Principal {
	p, err := FromText(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Raw returns a copy of the raw principal bytes.
func (p Principal) Raw() []byte {
	out := make([]byte, len(p.raw))
	copy(out, p.raw)
	return out
}

// String renders the canonical textual form: lowercase unpadded base32 of
// crc32(raw) || raw, in dash-separated groups of five characters.
func (p Principal) String() string {
	var prefixed [4 + maxRawLen]byte
	binary.BigEndian.PutUint32(prefixed[:4], crc32Of(p.raw))
	n := copy(prefixed[4:], p.raw) + 4

	encoded := strings.ToLower(b32.EncodeToString(prefixed[:n]))

	var sb strings.Builder
	for i, r := range encoded {
		if i > 0 && i%5 == 0 {
			sb.WriteByte('-')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// MarshalText / UnmarshalText let Principal round-trip through text-based
// codecs (CBOR text strings, JSON).
func (p Principal) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Principal) UnmarshalText(b []byte) error {
	parsed, err := FromText(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Ed25519DER wraps a raw ed25519 public key in the DER
// SubjectPublicKeyInfo envelope (OID 1.3.101.112).
func Ed25519DER(pub ed25519.PublicKey) []byte {
	// Fixed 12-byte SPKI header for ed25519; the key length never varies.
	prefix := []byte{
		0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70, 0x03, 0x21, 0x00,
	}
	out := make([]byte, 0, len(prefix)+ed25519.PublicKeySize)
	out = append(out, prefix...)
	out = append(out, pub...)
	return out
}
