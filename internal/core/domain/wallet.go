package domain

// Wallet is a shared deposit address from the externally provisioned pool.
// The gateway only reads the enabled set.
type Wallet struct {
	ID      uint64
	Address string
	Enabled bool
}
