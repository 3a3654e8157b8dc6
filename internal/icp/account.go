package icp

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash/crc32"
)

var ErrInvalidAccountID = errors.New("invalid account identifier")

// accountDomainSeparator prefixes the account hash input; the leading byte
// is the separator length.
var accountDomainSeparator = []byte("\x0Aaccount-id")

// DefaultSubaccount is the all-zero subaccount used when none is given.
var DefaultSubaccount [32]byte

// AccountIdentifier computes the ledger account identifier of a principal
// and subaccount: a big-endian CRC32 of the SHA-224 account hash, followed
// by the hash itself, rendered as 64 hex characters.
func AccountIdentifier(owner Principal, subaccount [32]byte) string {
	h := sha256.New224()
	h.Write(accountDomainSeparator)
	h.Write(owner.raw)
	h.Write(subaccount[:])
	sum := h.Sum(nil)

	out := make([]byte, 4, 4+len(sum))
	binary.BigEndian.PutUint32(out, crc32Of(sum))
	out = append(out, sum...)
	return hex.EncodeToString(out)
}

// CheckAccountIdentifier validates the length and embedded checksum of a
// textual account identifier.
func CheckAccountIdentifier(s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Join(ErrInvalidAccountID, err)
	}
	if len(b) != 32 {
		return ErrInvalidAccountID
	}
	if binary.BigEndian.Uint32(b[:4]) != crc32Of(b[4:]) {
		return ErrInvalidAccountID
	}
	return nil
}

func crc32Of(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
