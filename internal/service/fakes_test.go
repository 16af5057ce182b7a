package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"swipespend/internal/models"
	"swipespend/internal/provider"
	"swipespend/internal/repository"

	"github.com/google/uuid"
)

// In-memory stores mirroring the pgx repositories' semantics, including the
// repository sentinel errors, so the services can be tested without a
// database.

type memStores struct {
	mu           sync.Mutex
	users        map[uuid.UUID]*models.User
	categories   map[uuid.UUID]*models.Category
	transactions map[string]*models.Transaction
}

func newMemStores() *memStores {
	return &memStores{
		users:        make(map[uuid.UUID]*models.User),
		categories:   make(map[uuid.UUID]*models.Category),
		transactions: make(map[string]*models.Transaction),
	}
}

type memUserStore struct{ s *memStores }
type memCategoryStore struct{ s *memStores }
type memTransactionStore struct{ s *memStores }

func (m *memStores) userStore() *memUserStore               { return &memUserStore{s: m} }
func (m *memStores) categoryStore() *memCategoryStore       { return &memCategoryStore{s: m} }
func (m *memStores) transactionStore() *memTransactionStore { return &memTransactionStore{s: m} }

func (m *memStores) addUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
}

func (m *memStores) addCategory(c *models.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.categories[c.ID] = &cp
}

func (m *memStores) addTransaction(t *models.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.transactions[t.ID] = &cp
}

func (m *memStores) category(id uuid.UUID) *models.Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.categories[id]; ok {
		cp := *c
		return &cp
	}
	return nil
}

func (m *memStores) transaction(id string) *models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.transactions[id]; ok {
		cp := *t
		return &cp
	}
	return nil
}

func (u *memUserStore) Create(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	cp := *user
	u.s.users[user.ID] = &cp
	return nil
}

func (u *memUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, usr := range u.s.users {
		if usr.Email == email {
			cp := *usr
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *memUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u *memUserStore) GetByPlaidItemID(_ context.Context, itemID string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, usr := range u.s.users {
		if usr.PlaidItemID != nil && *usr.PlaidItemID == itemID {
			cp := *usr
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *memUserStore) UpdateCursor(_ context.Context, userID uuid.UUID, cursor string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	usr.SyncCursor = &cursor
	return nil
}

func (u *memUserStore) SetPlaidLink(_ context.Context, userID uuid.UUID, accessToken, itemID string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	usr.PlaidAccessToken = &accessToken
	usr.PlaidItemID = &itemID
	usr.IsBankConnected = true
	return nil
}

func (u *memUserStore) ClearPlaidLink(_ context.Context, userID uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	usr.PlaidAccessToken = nil
	usr.PlaidItemID = nil
	usr.SyncCursor = nil
	usr.IsBankConnected = false
	return nil
}

func (u *memUserStore) UpdateCurrency(_ context.Context, userID uuid.UUID, currency string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	usr.DisplayCurrency = currency
	return nil
}

func (u *memUserStore) MarkWalkthroughDone(_ context.Context, userID uuid.UUID) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	usr, ok := u.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	usr.WalkthroughDone = true
	return nil
}

func (u *memUserStore) ListBankConnected(_ context.Context) ([]*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	var out []*models.User
	for _, usr := range u.s.users {
		if usr.IsBankConnected {
			cp := *usr
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (c *memCategoryStore) CreateBatch(_ context.Context, categories []*models.Category) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, cat := range categories {
		cp := *cat
		c.s.categories[cat.ID] = &cp
	}
	return nil
}

func (c *memCategoryStore) CountByUser(_ context.Context, userID uuid.UUID) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	count := 0
	for _, cat := range c.s.categories {
		if cat.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (c *memCategoryStore) CountVisible(_ context.Context, userID uuid.UUID) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	count := 0
	for _, cat := range c.s.categories {
		if cat.UserID == userID && !cat.IsHidden {
			count++
		}
	}
	return count, nil
}

func (c *memCategoryStore) GetByID(_ context.Context, userID, id uuid.UUID) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cat, ok := c.s.categories[id]
	if !ok || cat.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *cat
	return &cp, nil
}

func (c *memCategoryStore) GetByKind(_ context.Context, userID uuid.UUID, kind models.CategoryKind) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, cat := range c.s.categories {
		if cat.UserID == userID && cat.Kind == kind {
			cp := *cat
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (c *memCategoryStore) ListManageable(_ context.Context, userID uuid.UUID) ([]*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var out []*models.Category
	for _, cat := range c.s.categories {
		if cat.UserID == userID && !cat.IsHidden && cat.Kind == models.KindNormal {
			cp := *cat
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (c *memCategoryStore) ListSwipeable(_ context.Context, userID uuid.UUID) ([]*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var out []*models.Category
	for _, cat := range c.s.categories {
		if cat.UserID == userID && !cat.IsHidden {
			cp := *cat
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *memCategoryStore) CreateChecked(_ context.Context, cat *models.Category, maxVisible int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	visible := 0
	for _, existing := range c.s.categories {
		if existing.UserID != cat.UserID {
			continue
		}
		if !existing.IsHidden {
			visible++
			if existing.Name == cat.Name {
				return repository.ErrDuplicateName
			}
		}
	}
	if visible >= maxVisible {
		return repository.ErrLimitReached
	}
	cp := *cat
	c.s.categories[cat.ID] = &cp
	return nil
}

func (c *memCategoryStore) UpdateChecked(_ context.Context, userID, id uuid.UUID, name, color string) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cat, ok := c.s.categories[id]
	if !ok || cat.UserID != userID || cat.IsHidden {
		return nil, repository.ErrNotFound
	}
	for _, existing := range c.s.categories {
		if existing.UserID == userID && existing.ID != id && !existing.IsHidden && existing.Name == name {
			return nil, repository.ErrDuplicateName
		}
	}
	cat.Name = name
	cat.Color = color
	cp := *cat
	return &cp, nil
}

func (c *memCategoryStore) DeleteAndReassign(_ context.Context, userID, categoryID, uncategorizedID uuid.UUID) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	cat, ok := c.s.categories[categoryID]
	if !ok || cat.UserID != userID || cat.IsHidden {
		return repository.ErrNotFound
	}
	for _, tx := range c.s.transactions {
		if tx.UserID == userID && tx.CategoryID != nil && *tx.CategoryID == categoryID {
			reassigned := uncategorizedID
			tx.CategoryID = &reassigned
		}
	}
	delete(c.s.categories, categoryID)
	return nil
}

func (t *memTransactionStore) InsertIgnoreDuplicates(_ context.Context, transactions []*models.Transaction) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var inserted int64
	for _, tx := range transactions {
		if _, exists := t.s.transactions[tx.ID]; exists {
			continue
		}
		cp := *tx
		t.s.transactions[tx.ID] = &cp
		inserted++
	}
	return inserted, nil
}

func (t *memTransactionStore) UpsertPreservingCategory(_ context.Context, tx *models.Transaction) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if existing, ok := t.s.transactions[tx.ID]; ok {
		keep := existing.CategoryID
		cp := *tx
		cp.CategoryID = keep
		cp.CreatedAt = existing.CreatedAt
		t.s.transactions[tx.ID] = &cp
		return nil
	}
	cp := *tx
	t.s.transactions[tx.ID] = &cp
	return nil
}

func (t *memTransactionStore) DeleteByIDs(_ context.Context, userID uuid.UUID, ids []string) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if tx, ok := t.s.transactions[id]; ok && tx.UserID == userID {
			delete(t.s.transactions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (t *memTransactionStore) GetByID(_ context.Context, userID uuid.UUID, id string) (*models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	tx, ok := t.s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (t *memTransactionStore) SetCategory(_ context.Context, userID uuid.UUID, id string, categoryID uuid.UUID) (*models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	tx, ok := t.s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, repository.ErrNotFound
	}
	assigned := categoryID
	tx.CategoryID = &assigned
	tx.UpdatedAt = time.Now()
	cp := *tx
	return &cp, nil
}

func (t *memTransactionStore) List(_ context.Context, userID uuid.UUID, limit, offset int) ([]*models.Transaction, int, error) {
	all, err := t.ListAll(context.Background(), userID)
	if err != nil {
		return nil, 0, err
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (t *memTransactionStore) ListAll(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []*models.Transaction
	for _, tx := range t.s.transactions {
		if tx.UserID == userID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (t *memTransactionStore) ListUncategorized(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return t.listByKind(userID, models.KindUncategorized, true)
}

func (t *memTransactionStore) ListCategorized(_ context.Context, userID uuid.UUID) ([]*models.Transaction, error) {
	return t.listByKind(userID, models.KindNormal, false)
}

func (t *memTransactionStore) listByKind(userID uuid.UUID, kind models.CategoryKind, match bool) ([]*models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []*models.Transaction
	for _, tx := range t.s.transactions {
		if tx.UserID != userID || tx.Type != models.TypeExpense || tx.CategoryID == nil {
			continue
		}
		cat, ok := t.s.categories[*tx.CategoryID]
		if !ok {
			continue
		}
		if match && cat.Kind != kind {
			continue
		}
		if !match && cat.Kind != models.KindNormal {
			continue
		}
		cp := *tx
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

// scriptedFeed serves preset changefeed pages in order and records every
// cursor it was called with.
type scriptedFeed struct {
	mu      sync.Mutex
	pages   []*provider.ChangeSet
	errs    []error
	call    int
	cursors []string
}

func (f *scriptedFeed) FetchChanges(_ context.Context, _ string, cursor *string) (*provider.ChangeSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cursor != nil {
		f.cursors = append(f.cursors, *cursor)
	} else {
		f.cursors = append(f.cursors, "")
	}
	idx := f.call
	f.call++
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	if idx >= len(f.pages) {
		return &provider.ChangeSet{}, nil
	}
	return f.pages[idx], nil
}
