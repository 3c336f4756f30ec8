package domain

import (
	"errors"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound    = errors.New("data not found")
	ErrNoUpdatedData   = errors.New("no data to update")
	ErrConflictingData = errors.New("data conflicts with existing data in unique column")

	// * Communication errors.
	ErrBadRequest       = errors.New("error parsing request")
	ErrInvalidSignature = errors.New("request signature is invalid")

	// * Business errors.
	ErrOrderExists       = errors.New("order with this id already exists")
	ErrRateUnavailable   = errors.New("usdt rate is unavailable")
	ErrAmountTooSmall    = errors.New("settlement amount is below the minimum")
	ErrNoWalletAvailable = errors.New("no enabled wallet address available")
	ErrNoAvailableAmount = errors.New("no free payment slot for this amount")
	ErrOrderNotPending   = errors.New("order is not waiting for payment")

	// ErrSlotTaken signals that a concurrent allocation claimed the slot
	// between the free-slot scan and the insert. Internal only, never
	// surfaced to the caller.
	ErrSlotTaken = errors.New("payment slot already claimed")
)
