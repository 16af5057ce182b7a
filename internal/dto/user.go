package dto

type ProgressResponse struct {
	IsBankConnected bool   `json:"is_bank_connected"`
	DisplayCurrency string `json:"display_currency"`
	WalkthroughDone bool   `json:"walkthrough_done"`
}

type UpdateCurrencyRequest struct {
	Currency string `json:"currency" validate:"required,len=3"`
}
