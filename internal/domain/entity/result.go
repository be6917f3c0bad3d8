package entity

// SwapTransaction is an opaque signable transaction built by the routing
// service, valid until the chain passes LastValidBlockHeight.
type SwapTransaction struct {
	Payload              string `json:"swapTransaction"` // base64-encoded
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// TransactionResult is the outcome of a swap execution. A failed swap is an
// expected, structured outcome that callers branch on, not an error: the
// functions producing this type never return a Go error alongside it.
type TransactionResult struct {
	Signature    string
	Success      bool
	Error        string
	OutputAmount uint64 // set only by the composed swap execution, on success
}

// FailedResult builds a failure outcome with an empty signature
func FailedResult(msg string) *TransactionResult {
	return &TransactionResult{Success: false, Error: msg}
}

// NetworkStatus is a point-in-time view of chain progress
type NetworkStatus struct {
	Slot        uint64
	BlockHeight uint64
	Blockhash   string
}
