package domain

import "time"

// Transfer is a single TRC20 transfer observed on the ledger.
// AmountRaw is the ledger-native integer amount, 6 decimal places.
type Transfer struct {
	To        string
	AmountRaw int64
	Succeeded bool
	BlockTime time.Time
	Hash      string
}
