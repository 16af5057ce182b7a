package provider

import (
	"context"
	"fmt"

	"swipespend/pkg/config"

	"github.com/plaid/plaid-go/v27/plaid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PlaidClient talks to the Plaid API: the transactions changefeed plus the
// link/consent endpoints.
type PlaidClient struct {
	client *plaid.APIClient
	cfg    *config.PlaidConfig
	logger *zap.Logger
}

func NewPlaidClient(cfg *config.PlaidConfig, logger *zap.Logger) *PlaidClient {
	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	if cfg.Environment == "production" {
		configuration.UseEnvironment(plaid.Production)
	} else {
		configuration.UseEnvironment(plaid.Sandbox)
	}

	return &PlaidClient{
		client: plaid.NewAPIClient(configuration),
		cfg:    cfg,
		logger: logger,
	}
}

// FetchChanges pulls one page of the transactions changefeed. A nil cursor
// means initial sync.
func (p *PlaidClient) FetchChanges(ctx context.Context, accessToken string, cursor *string) (*ChangeSet, error) {
	request := plaid.NewTransactionsSyncRequest(accessToken)
	if cursor != nil && *cursor != "" {
		request.SetCursor(*cursor)
	}

	resp, _, err := p.client.PlaidApi.TransactionsSync(ctx).TransactionsSyncRequest(*request).Execute()
	if err != nil {
		return nil, fmt.Errorf("plaid transactions sync: %w", err)
	}

	changes := &ChangeSet{
		Added:      make([]RawTransaction, 0, len(resp.GetAdded())),
		Modified:   make([]RawTransaction, 0, len(resp.GetModified())),
		Removed:    make([]string, 0, len(resp.GetRemoved())),
		NextCursor: resp.GetNextCursor(),
		HasMore:    resp.GetHasMore(),
	}
	for _, tx := range resp.GetAdded() {
		changes.Added = append(changes.Added, toRawTransaction(tx))
	}
	for _, tx := range resp.GetModified() {
		changes.Modified = append(changes.Modified, toRawTransaction(tx))
	}
	for _, removed := range resp.GetRemoved() {
		changes.Removed = append(changes.Removed, removed.GetTransactionId())
	}

	return changes, nil
}

func toRawTransaction(tx plaid.Transaction) RawTransaction {
	return RawTransaction{
		ID:                     tx.GetTransactionId(),
		Amount:                 decimal.NewFromFloat(tx.GetAmount()),
		ISOCurrencyCode:        tx.GetIsoCurrencyCode(),
		UnofficialCurrencyCode: tx.GetUnofficialCurrencyCode(),
		Date:                   tx.GetDate(),
		Name:                   tx.GetName(),
		MerchantName:           tx.GetMerchantName(),
		Pending:                tx.GetPending(),
	}
}

// CreateLinkToken creates a link token for the transactions product, wired to
// the webhook endpoint. Platform selects the mobile redirect mechanism.
func (p *PlaidClient) CreateLinkToken(ctx context.Context, userID string, requestedDays int, platform string) (string, error) {
	if requestedDays <= 0 {
		requestedDays = 30
	}

	user := plaid.LinkTokenCreateRequestUser{ClientUserId: userID}
	request := plaid.NewLinkTokenCreateRequest(
		p.cfg.AppName,
		"en",
		[]plaid.CountryCode{plaid.COUNTRYCODE_US, plaid.COUNTRYCODE_CA},
		user,
	)
	request.SetProducts([]plaid.Products{plaid.PRODUCTS_TRANSACTIONS})
	request.SetTransactions(plaid.LinkTokenTransactions{
		DaysRequested: plaid.PtrInt32(int32(requestedDays)),
	})
	if p.cfg.WebhookURL != "" {
		request.SetWebhook(p.cfg.WebhookURL)
	}
	switch platform {
	case "ios":
		if p.cfg.RedirectURI != "" {
			request.SetRedirectUri(p.cfg.RedirectURI)
		}
	case "android":
		request.SetAndroidPackageName("com.swipespend.app")
	}

	resp, _, err := p.client.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*request).Execute()
	if err != nil {
		return "", fmt.Errorf("plaid link token create: %w", err)
	}

	return resp.GetLinkToken(), nil
}

// ExchangePublicToken trades the link flow's public token for the long-lived
// access token and item id.
func (p *PlaidClient) ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error) {
	request := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, _, err := p.client.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*request).Execute()
	if err != nil {
		return "", "", fmt.Errorf("plaid public token exchange: %w", err)
	}

	return resp.GetAccessToken(), resp.GetItemId(), nil
}

// RemoveItem revokes the access token at the provider.
func (p *PlaidClient) RemoveItem(ctx context.Context, accessToken string) error {
	request := plaid.NewItemRemoveRequest(accessToken)
	if _, _, err := p.client.PlaidApi.ItemRemove(ctx).ItemRemoveRequest(*request).Execute(); err != nil {
		return fmt.Errorf("plaid item remove: %w", err)
	}
	return nil
}
