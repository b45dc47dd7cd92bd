package checkout

import (
	"time"
)

const bankTransferMethod = "Bank Transfer"

// PaymentReference correlates an out-of-band bank transfer with the order it pays for.
type PaymentReference struct {
	Code          string
	UserID        int64
	Amount        int
	CreatedAt     time.Time
	Confirmations int
	OrderIDs      []string
}

type BankDetails struct {
	BankName      string
	AccountNumber string
	AccountName   string
}

type Config struct {
	ReferencePrefix string
	// ConfirmDedup answers repeated confirmations of the same reference without a new order
	ConfirmDedup bool
	Bank         BankDetails
}
