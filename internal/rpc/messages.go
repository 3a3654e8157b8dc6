package rpc

// Wire messages for the broker and ledger services. Field names are fixed
// by the cbor tags; renaming a tag is a wire-breaking change.

// Listing is the wire form of a marketplace listing.
type Listing struct {
	Index           uint64 `cbor:"index"`
	Name            string `cbor:"name"`
	Description     string `cbor:"description"`
	Category        string `cbor:"category"`
	Price           string `cbor:"price"`
	APIEndpoint     string `cbor:"api_endpoint"`
	Image           string `cbor:"image"`
	SizeBytes       uint64 `cbor:"size_bytes"`
	WalletPrincipal string `cbor:"wallet_principal"`
	Uploader        string `cbor:"uploader"`
	ArtifactKey     string `cbor:"artifact_key,omitempty"`
	CreatedAtUnix   int64  `cbor:"created_at"`
}

// ListingDraft is the mutable field set a vendor submits. Its
// deterministic encoding is the payload whose byte size is priced.
type ListingDraft struct {
	Name            string `cbor:"name"`
	Description     string `cbor:"description"`
	Category        string `cbor:"category"`
	Price           string `cbor:"price"`
	APIEndpoint     string `cbor:"api_endpoint"`
	Image           string `cbor:"image"`
	WalletPrincipal string `cbor:"wallet_principal"`
	ArtifactKey     string `cbor:"artifact_key,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `cbor:"status"`
}

// Challenge/OpenSession implement the wallet-key proof that turns a
// principal into a broker session token.

type ChallengeRequest struct {
	PublicKeyDER []byte `cbor:"public_key_der"`
}

type ChallengeResponse struct {
	Nonce []byte `cbor:"nonce"`
}

type OpenSessionRequest struct {
	PublicKeyDER []byte `cbor:"public_key_der"`
	Nonce        []byte `cbor:"nonce"`
	Signature    []byte `cbor:"signature"`
}

type OpenSessionResponse struct {
	Token     string `cbor:"token"`
	Principal string `cbor:"principal"`
}

type HasPaymentRequest struct {
	Principal string `cbor:"principal"`
}

type HasPaymentResponse struct {
	Exists    bool   `cbor:"exists"`
	AmountE8s uint64 `cbor:"amount_e8s,omitempty"`
}

type ConfirmPaymentRequest struct {
	AmountE8s uint64 `cbor:"amount_e8s"`
}

type ConfirmPaymentResponse struct {
	Receipt string `cbor:"receipt"`
}

type StoreListingRequest struct {
	Draft     ListingDraft `cbor:"draft"`
	SizeBytes uint64       `cbor:"size_bytes"`
}

type StoreListingResponse struct {
	Receipt string `cbor:"receipt"`
	Index   uint64 `cbor:"index"`
}

type UpdateListingRequest struct {
	Index     uint64       `cbor:"index"`
	SizeBytes uint64       `cbor:"size_bytes"`
	Draft     ListingDraft `cbor:"draft"`
}

type UpdateListingResponse struct {
	Receipt string `cbor:"receipt"`
}

type DeleteListingRequest struct {
	Index uint64 `cbor:"index"`
}

type DeleteListingResponse struct {
	Receipt string `cbor:"receipt"`
}

type GetListingRequest struct {
	Index uint64 `cbor:"index"`
}

type GetListingResponse struct {
	Listing *Listing `cbor:"listing,omitempty"`
}

type ListListingsRequest struct {
	// Uploader filters to one vendor's listings when set.
	Uploader string `cbor:"uploader,omitempty"`
}

type ListListingsResponse struct {
	Listings []Listing `cbor:"listings"`
}

type HasPurchasedRequest struct {
	Principal string `cbor:"principal"`
	Index     uint64 `cbor:"index"`
}

type HasPurchasedResponse struct {
	Purchased bool `cbor:"purchased"`
}

type RecordPurchaseRequest struct {
	Index     uint64 `cbor:"index"`
	AmountE8s uint64 `cbor:"amount_e8s"`
}

type RecordPurchaseResponse struct {
	Receipt string `cbor:"receipt"`
}

type PresignUploadRequest struct{}

type PresignUploadResponse struct {
	Key string `cbor:"key"`
	URL string `cbor:"url"`
}

type PresignDownloadRequest struct {
	Index uint64 `cbor:"index"`
}

type PresignDownloadResponse struct {
	URL string `cbor:"url"`
}

// Ledger wire messages. TransferRequest matches the modern variant-result
// endpoint; the legacy SendDfx endpoint takes the same request and returns
// a bare block height.

type TransferRequest struct {
	// To is the destination account identifier (64 hex characters).
	To        string `cbor:"to"`
	AmountE8s uint64 `cbor:"amount_e8s"`
	FeeE8s    uint64 `cbor:"fee_e8s"`
	Memo      uint64 `cbor:"memo"`
}

// TransferFault is the wire form of a ledger transfer error variant.
type TransferFault struct {
	Kind           string `cbor:"kind"`
	BalanceE8s     uint64 `cbor:"balance_e8s,omitempty"`
	ExpectedFeeE8s uint64 `cbor:"expected_fee_e8s,omitempty"`
	DuplicateOf    uint64 `cbor:"duplicate_of,omitempty"`
}

// Transfer fault kinds.
const (
	FaultTxTooOld          = "tx_too_old"
	FaultBadFee            = "bad_fee"
	FaultTxDuplicate       = "tx_duplicate"
	FaultTxCreatedInFuture = "tx_created_in_future"
	FaultInsufficientFunds = "insufficient_funds"
)

type TransferResponse struct {
	Height uint64         `cbor:"height"`
	Fault  *TransferFault `cbor:"fault,omitempty"`
}

type SendDfxResponse struct {
	Height uint64 `cbor:"height"`
}
