package receipt

import "time"

// TransactionItem is one confirmed line item. Prices are cents so ledger
// arithmetic stays exact.
type TransactionItem struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity,omitempty"`
	IsTax    bool   `json:"is_tax,omitempty"`
}

// Transaction is a user-confirmed receipt extraction persisted to the ledger.
type Transaction struct {
	ID          string            `json:"id"`
	Merchant    string            `json:"merchant"`
	Date        time.Time         `json:"date"`
	Amount      int               `json:"amount"` // cents
	Items       []TransactionItem `json:"items,omitempty"`
	Filename    string            `json:"filename"`
	ContentType string            `json:"content_type"`
	Confidence  float64           `json:"confidence"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// MonthSummary aggregates confirmed transactions for one calendar month.
type MonthSummary struct {
	Month  string `json:"month"` // YYYY-MM
	Count  int    `json:"count"`
	Amount int    `json:"amount"` // cents
}
