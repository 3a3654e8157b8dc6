// Package rpc defines the wire layer shared by the broker server and the
// clients: a deterministic CBOR codec plugged into gRPC, the message
// structs, and hand-written service descriptors.
//
// The envelope format is CBOR rather than protobuf so that payload sizing
// (the byte count the pricing function charges for) is the size of the
// exact bytes sent, and so the same codec can frame calls to ledger
// endpoints that do not speak protobuf.
package rpc

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CodecName is the gRPC codec/content-subtype identifier.
const CodecName = "cbor"

// encMode uses Core Deterministic Encoding (RFC 8949 §4.2): sorted map
// keys, smallest integer encoding, no indefinite-length items. The same
// logical message always produces identical bytes, which keeps the
// size-based pricing reproducible.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown fields for forward
// compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Principal and decimal fields serialize through MarshalText as CBOR
	// text strings instead of opaque structs.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("rpc: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("rpc: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v with the deterministic encoder.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// PayloadSize is the priced size of a message: the length of its
// deterministic encoding.
func PayloadSize(v any) (uint64, error) {
	b, err := Marshal(v)
	if err != nil {
		return 0, fmt.Errorf("payload encoding failed: %w", err)
	}
	return uint64(len(b)), nil
}

// Codec implements google.golang.org/grpc/encoding.Codec over the
// deterministic CBOR modes. Register it per-connection with
// grpc.ForceCodec / grpc.ForceServerCodec.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}
