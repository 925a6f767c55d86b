package types

import "github.com/tos-network/tosvault/common"

const (
	// ReceiptStatusFailed is the status code of a transaction if execution failed.
	ReceiptStatusFailed = uint64(0)

	// ReceiptStatusSuccessful is the status code of a transaction if execution succeeded.
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt records the outcome of one applied transaction. A failed action
// leaves no state behind except the sender's nonce bump.
type Receipt struct {
	TxHash   common.Hash    `json:"transactionHash"`
	Sequence uint64         `json:"sequence"`
	From     common.Address `json:"from"`
	Action   string         `json:"action"`
	Status   uint64         `json:"status"`
	Error    string         `json:"error,omitempty"`

	// ErrorKind names the failure class of a failed action, e.g.
	// "InsufficientReserve".
	ErrorKind string `json:"errorKind,omitempty" rlp:"optional"`
}

// Succeeded reports whether the action was applied.
func (r *Receipt) Succeeded() bool { return r.Status == ReceiptStatusSuccessful }
