package service

import (
	"context"

	"swipespend/internal/models"
	"swipespend/internal/provider"

	"github.com/google/uuid"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them; tests substitute in-memory fakes.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByPlaidItemID(ctx context.Context, itemID string) (*models.User, error)
	UpdateCursor(ctx context.Context, userID uuid.UUID, cursor string) error
	SetPlaidLink(ctx context.Context, userID uuid.UUID, accessToken, itemID string) error
	ClearPlaidLink(ctx context.Context, userID uuid.UUID) error
	UpdateCurrency(ctx context.Context, userID uuid.UUID, currency string) error
	MarkWalkthroughDone(ctx context.Context, userID uuid.UUID) error
	ListBankConnected(ctx context.Context) ([]*models.User, error)
}

type CategoryStore interface {
	CreateBatch(ctx context.Context, categories []*models.Category) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	CountVisible(ctx context.Context, userID uuid.UUID) (int, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Category, error)
	GetByKind(ctx context.Context, userID uuid.UUID, kind models.CategoryKind) (*models.Category, error)
	ListManageable(ctx context.Context, userID uuid.UUID) ([]*models.Category, error)
	ListSwipeable(ctx context.Context, userID uuid.UUID) ([]*models.Category, error)
	CreateChecked(ctx context.Context, cat *models.Category, maxVisible int) error
	UpdateChecked(ctx context.Context, userID, id uuid.UUID, name, color string) (*models.Category, error)
	DeleteAndReassign(ctx context.Context, userID, categoryID, uncategorizedID uuid.UUID) error
}

type TransactionStore interface {
	InsertIgnoreDuplicates(ctx context.Context, transactions []*models.Transaction) (int64, error)
	UpsertPreservingCategory(ctx context.Context, tx *models.Transaction) error
	DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []string) (int64, error)
	GetByID(ctx context.Context, userID uuid.UUID, id string) (*models.Transaction, error)
	SetCategory(ctx context.Context, userID uuid.UUID, id string, categoryID uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, int, error)
	ListAll(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	ListUncategorized(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
	ListCategorized(ctx context.Context, userID uuid.UUID) ([]*models.Transaction, error)
}

// Changefeed is the provider's incremental transaction feed.
type Changefeed interface {
	FetchChanges(ctx context.Context, accessToken string, cursor *string) (*provider.ChangeSet, error)
}

// LinkProvider covers the provider's link/consent endpoints.
type LinkProvider interface {
	CreateLinkToken(ctx context.Context, userID string, requestedDays int, platform string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	RemoveItem(ctx context.Context, accessToken string) error
}
