package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"swipespend/internal/models"
	"swipespend/internal/provider"
	"swipespend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Webhook event identifiers the sync service reacts to.
const (
	WebhookTypeTransactions     = "TRANSACTIONS"
	WebhookCodeUpdatesAvailable = "SYNC_UPDATES_AVAILABLE"
)

const fallbackCurrency = "USD"

// SyncResult summarizes one completed reconciliation pass.
type SyncResult struct {
	Added    int
	Modified int
	Removed  int
	Cursor   string
}

// SyncService drives reconciliation passes against the provider changefeed:
// fetch a page, merge it into the ledger, persist the cursor, repeat until
// the provider reports no more pages. Passes are serialized per user so a
// manual trigger racing a webhook cannot fetch overlapping pages or race on
// cursor persistence.
type SyncService struct {
	userStore        UserStore
	categoryStore    CategoryStore
	transactionStore TransactionStore
	feed             Changefeed
	logger           *zap.Logger

	mu        sync.Mutex
	userLocks map[uuid.UUID]*sync.Mutex
}

func NewSyncService(userStore UserStore, categoryStore CategoryStore, transactionStore TransactionStore, feed Changefeed, logger *zap.Logger) *SyncService {
	return &SyncService{
		userStore:        userStore,
		categoryStore:    categoryStore,
		transactionStore: transactionStore,
		feed:             feed,
		logger:           logger,
		userLocks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing sync passes for one user. Entries are
// never removed; one mutex per user that ever synced is cheap.
func (s *SyncService) lockFor(userID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// Sync runs one full reconciliation pass for the user. The cursor only
// advances after a page's mutations are applied; a provider failure aborts
// the pass with the cursor untouched, so the next attempt refetches the same
// page. Every mutation is an upsert, dedup-skip or scoped delete, making the
// retry safe to repeat verbatim.
func (s *SyncService) Sync(ctx context.Context, userID uuid.UUID) (*SyncResult, error) {
	lock := s.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.PlaidAccessToken == nil || *user.PlaidAccessToken == "" {
		return nil, ErrNotLinked
	}

	defaults, err := s.defaultCategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	cursor := user.SyncCursor
	result := &SyncResult{}
	if cursor != nil {
		result.Cursor = *cursor
	}

	for {
		changes, err := s.feed.FetchChanges(ctx, *user.PlaidAccessToken, cursor)
		if err != nil {
			// Upstream failure: abort without advancing the cursor.
			return nil, fmt.Errorf("fetch changes: %w", err)
		}

		s.logger.Info("Applying changefeed page",
			zap.String("user_id", userID.String()),
			zap.Int("added", len(changes.Added)),
			zap.Int("modified", len(changes.Modified)),
			zap.Int("removed", len(changes.Removed)),
			zap.Bool("has_more", changes.HasMore))

		// Fixed order within a page: an id appearing in several lists is
		// only meaningful as added, then modified, then removed.
		if err := s.applyAdded(ctx, userID, changes.Added, defaults); err != nil {
			return nil, err
		}
		if err := s.applyModified(ctx, userID, changes.Modified, defaults); err != nil {
			return nil, err
		}
		if err := s.applyRemoved(ctx, userID, changes.Removed); err != nil {
			return nil, err
		}

		result.Added += len(changes.Added)
		result.Modified += len(changes.Modified)
		result.Removed += len(changes.Removed)

		if changes.NextCursor != "" {
			// Persist only after the page is durably applied.
			if err := s.userStore.UpdateCursor(ctx, userID, changes.NextCursor); err != nil {
				return nil, err
			}
			next := changes.NextCursor
			cursor = &next
			result.Cursor = next
		}

		if !changes.HasMore {
			break
		}
	}

	s.logger.Info("Sync completed",
		zap.String("user_id", userID.String()),
		zap.Int("added", result.Added),
		zap.Int("modified", result.Modified),
		zap.Int("removed", result.Removed))
	return result, nil
}

// HandleWebhook reacts to a provider notification. Only the
// TRANSACTIONS/SYNC_UPDATES_AVAILABLE combination triggers a pass; everything
// else returns a nil result and is acknowledged by the caller. An unknown
// item id is ErrUserNotFound.
func (s *SyncService) HandleWebhook(ctx context.Context, webhookType, webhookCode, itemID string) (*SyncResult, error) {
	if webhookType != WebhookTypeTransactions || webhookCode != WebhookCodeUpdatesAvailable {
		s.logger.Debug("Ignoring webhook",
			zap.String("type", webhookType),
			zap.String("code", webhookCode))
		return nil, nil
	}

	user, err := s.userStore.GetByPlaidItemID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return s.Sync(ctx, user.ID)
}

type defaultCategorySet struct {
	uncategorized *models.Category
	income        *models.Category
}

// defaultCategories resolves the user's Uncategorized and Income buckets,
// which every added record needs for its initial assignment.
func (s *SyncService) defaultCategories(ctx context.Context, userID uuid.UUID) (*defaultCategorySet, error) {
	uncategorized, err := s.categoryStore.GetByKind(ctx, userID, models.KindUncategorized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotBootstrapped
		}
		return nil, err
	}

	income, err := s.categoryStore.GetByKind(ctx, userID, models.KindIncome)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotBootstrapped
		}
		return nil, err
	}

	return &defaultCategorySet{uncategorized: uncategorized, income: income}, nil
}

// applyAdded inserts new records with skip-on-duplicate semantics: a row
// whose provider id already exists is silently left alone, so replaying a
// page changes nothing.
func (s *SyncService) applyAdded(ctx context.Context, userID uuid.UUID, records []provider.RawTransaction, defaults *defaultCategorySet) error {
	if len(records) == 0 {
		return nil
	}

	transactions := make([]*models.Transaction, 0, len(records))
	for _, raw := range records {
		tx, err := s.transform(userID, raw, defaults)
		if err != nil {
			s.logger.Warn("Skipping malformed provider record",
				zap.String("transaction_id", raw.ID),
				zap.Error(err))
			continue
		}
		transactions = append(transactions, tx)
	}

	inserted, err := s.transactionStore.InsertIgnoreDuplicates(ctx, transactions)
	if err != nil {
		return fmt.Errorf("apply added: %w", err)
	}

	s.logger.Debug("Added transactions",
		zap.Int64("inserted", inserted),
		zap.Int("received", len(records)))
	return nil
}

// applyModified upserts by provider id. Existing rows keep their category_id
// so a user's categorization survives provider-side edits; a row delivered
// out of order is created with the same default assignment as applyAdded.
func (s *SyncService) applyModified(ctx context.Context, userID uuid.UUID, records []provider.RawTransaction, defaults *defaultCategorySet) error {
	for _, raw := range records {
		tx, err := s.transform(userID, raw, defaults)
		if err != nil {
			s.logger.Warn("Skipping malformed provider record",
				zap.String("transaction_id", raw.ID),
				zap.Error(err))
			continue
		}
		if err := s.transactionStore.UpsertPreservingCategory(ctx, tx); err != nil {
			return fmt.Errorf("apply modified: %w", err)
		}
	}
	return nil
}

// applyRemoved deletes by provider id, scoped to the user.
func (s *SyncService) applyRemoved(ctx context.Context, userID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	removed, err := s.transactionStore.DeleteByIDs(ctx, userID, ids)
	if err != nil {
		return fmt.Errorf("apply removed: %w", err)
	}

	s.logger.Debug("Removed transactions",
		zap.Int64("deleted", removed),
		zap.Int("received", len(ids)))
	return nil
}

// transform converts a raw provider record into a ledger row. The provider
// signs amounts the opposite way from user-facing semantics: outgoing money
// arrives positive, so positive means expense and negative means income. The
// stored amount is the unsigned magnitude.
func (s *SyncService) transform(userID uuid.UUID, raw provider.RawTransaction, defaults *defaultCategorySet) (*models.Transaction, error) {
	date, err := time.Parse("2006-01-02", raw.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", raw.Date, err)
	}

	merchant := raw.MerchantName
	if merchant == "" {
		merchant = raw.Name
	}

	currency := raw.ISOCurrencyCode
	if currency == "" {
		currency = raw.UnofficialCurrencyCode
	}
	if currency == "" {
		currency = fallbackCurrency
	}

	txType := models.TypeExpense
	categoryID := defaults.uncategorized.ID
	if raw.Amount.IsNegative() {
		txType = models.TypeIncome
		categoryID = defaults.income.ID
	}

	now := time.Now()
	return &models.Transaction{
		ID:          raw.ID,
		UserID:      userID,
		Date:        date,
		Merchant:    merchant,
		Currency:    currency,
		Type:        txType,
		Amount:      raw.Amount.Abs(),
		IsPending:   raw.Pending,
		Description: raw.Name,
		CategoryID:  &categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
