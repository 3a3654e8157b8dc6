package rpc

// The ledger is an external service; only its method names are needed
// client-side. Both dialects take TransferRequest.
//
//   - Transfer returns TransferResponse (height or fault variant).
//   - SendDfx is the legacy endpoint returning SendDfxResponse (bare
//     height; failures surface as transport errors).
const (
	LedgerServiceName = "icp.ledger.Ledger"

	LedgerTransferMethod = "/icp.ledger.Ledger/Transfer"
	LedgerSendDfxMethod  = "/icp.ledger.Ledger/SendDfx"
)
