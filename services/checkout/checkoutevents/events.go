package checkoutevents

import "time"

const (
	TopicName                 = "checkout"
	bankTransferRequestedName = TopicName + ".bankTransferRequested"
	orderSubmittedName        = TopicName + ".orderSubmitted"
)

// BankTransferRequested is published when a reference code is handed out for a bank transfer.
type BankTransferRequested struct {
	Reference   string
	UserID      int64
	Amount      int
	RequestedAt time.Time
}

func (e BankTransferRequested) GetEventTypeName() string {
	return bankTransferRequestedName
}

func (e BankTransferRequested) GetAggregateName() string {
	return e.Reference
}

// OrderSubmitted is published when the shopper reports a bank transfer and the order was created.
type OrderSubmitted struct {
	OrderID     string
	Reference   string
	UserID      int64
	Amount      int
	ItemCount   int
	SubmittedAt time.Time
}

func (e OrderSubmitted) GetEventTypeName() string {
	return orderSubmittedName
}

func (e OrderSubmitted) GetAggregateName() string {
	return e.Reference
}
