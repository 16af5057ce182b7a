package provider

import "github.com/shopspring/decimal"

// RawTransaction is one changefeed record as the provider reports it. Amount
// keeps the provider's sign convention: outgoing money is positive.
type RawTransaction struct {
	ID                     string
	Amount                 decimal.Decimal
	ISOCurrencyCode        string
	UnofficialCurrencyCode string
	Date                   string // calendar date, YYYY-MM-DD
	Name                   string
	MerchantName           string
	Pending                bool
}

// ChangeSet is one page of the incremental changefeed. Callers must keep
// fetching with NextCursor until HasMore is false to drain an event burst.
type ChangeSet struct {
	Added      []RawTransaction
	Modified   []RawTransaction
	Removed    []string
	NextCursor string
	HasMore    bool
}
