package usecase

import "time"

// Payloads written to the outbox. Keys are the receipt id and the order id.

type CheckoutVerifiedEvent struct {
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transactionId"`
	ReceiptID     string    `json:"receiptId"`
	OrderID       string    `json:"orderId"`
	PayersID      string    `json:"payersID"`
	ItemNum       int64     `json:"itemNum"`
	TotalAmount   int64     `json:"totalAmount"`
	DiscountCode  string    `json:"discountCode,omitempty"`
	VerifiedAt    time.Time `json:"verifiedAt"`
}

type OrderFulfilledEvent struct {
	OrderID     string       `json:"orderId"`
	FulfilledID string       `json:"fulfilledId"`
	PayersID    string       `json:"payersID"`
	ItemNum     int64        `json:"itemNum"`
	FailedLines []FailedLine `json:"failedLines,omitempty"`
	FulfilledAt time.Time    `json:"fulfilledAt"`
}
