package dto

type LinkTokenRequest struct {
	RequestedDays int `json:"requested_days,omitempty"`
}

type LinkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

type ExchangeTokenRequest struct {
	PublicToken string `json:"public_token" validate:"required"`
}

// WebhookRequest is the provider's inbound notification payload.
type WebhookRequest struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
}

type SyncResponse struct {
	Added    int    `json:"added"`
	Modified int    `json:"modified"`
	Removed  int    `json:"removed"`
	Cursor   string `json:"cursor,omitempty"`
}
