package dto

import "swipespend/internal/models"

type TransactionResponse struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Merchant    string  `json:"merchant"`
	Currency    string  `json:"currency"`
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	IsPending   bool    `json:"is_pending"`
	Description string  `json:"description"`
	CategoryID  string  `json:"category_id,omitempty"`
}

type TransactionListResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

type CategorizeRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
	CategoryID    string `json:"category_id" validate:"required"`
}

type UncategorizeRequest struct {
	TransactionID string `json:"transaction_id" validate:"required"`
}

// TransactionCSVRow is one line of the ledger export.
type TransactionCSVRow struct {
	ID          string `csv:"id"`
	Date        string `csv:"date"`
	Merchant    string `csv:"merchant"`
	Type        string `csv:"type"`
	Amount      string `csv:"amount"`
	Currency    string `csv:"currency"`
	Pending     bool   `csv:"pending"`
	Description string `csv:"description"`
}

func FromTransaction(tx *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          tx.ID,
		Date:        tx.Date.Format("2006-01-02"),
		Merchant:    tx.Merchant,
		Currency:    tx.Currency,
		Type:        string(tx.Type),
		Amount:      tx.Amount.InexactFloat64(),
		IsPending:   tx.IsPending,
		Description: tx.Description,
	}
	if tx.CategoryID != nil {
		resp.CategoryID = tx.CategoryID.String()
	}
	return resp
}

func FromTransactions(txs []*models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, FromTransaction(tx))
	}
	return out
}

func ToCSVRows(txs []*models.Transaction) []*TransactionCSVRow {
	rows := make([]*TransactionCSVRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &TransactionCSVRow{
			ID:          tx.ID,
			Date:        tx.Date.Format("2006-01-02"),
			Merchant:    tx.Merchant,
			Type:        string(tx.Type),
			Amount:      tx.Amount.StringFixed(2),
			Currency:    tx.Currency,
			Pending:     tx.IsPending,
			Description: tx.Description,
		})
	}
	return rows
}
