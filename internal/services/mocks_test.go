package services

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/miguelmartinez95/rest-api-project/internal/models"
	"github.com/miguelmartinez95/rest-api-project/internal/utils"
)

func TestMain(m *testing.M) {
	utils.SilenceLogger()
	os.Exit(m.Run())
}

// ---------------------------------------------------------------------
// UserRepository
// ---------------------------------------------------------------------

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ---------------------------------------------------------------------
// RevocationStore that always fails
// ---------------------------------------------------------------------

var errStoreDown = errors.New("store unavailable")

type brokenRevocationStore struct{}

func (brokenRevocationStore) Revoke(context.Context, string, time.Time) (bool, error) {
	return false, errStoreDown
}
func (brokenRevocationStore) IsRevoked(context.Context, string) (bool, error) {
	return false, errStoreDown
}
func (brokenRevocationStore) CleanupExpired(context.Context) error { return errStoreDown }

// ---------------------------------------------------------------------
// In-memory catalogue backing the store, item and tag repositories
// ---------------------------------------------------------------------

type catalogue struct {
	mu     sync.Mutex
	stores map[int64]*models.Store
	items  map[int64]*models.Item
	tags   map[int64]*models.Tag
	links  map[[2]int64]bool
	nextID int64
}

func newCatalogue() *catalogue {
	return &catalogue{
		stores: map[int64]*models.Store{},
		items:  map[int64]*models.Item{},
		tags:   map[int64]*models.Tag{},
		links:  map[[2]int64]bool{},
	}
}

func (c *catalogue) newID() int64 {
	c.nextID++
	return c.nextID
}

type fakeStoreRepo struct{ c *catalogue }

func (r fakeStoreRepo) Create(_ context.Context, s *models.Store) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	for _, existing := range r.c.stores {
		if existing.Name == s.Name {
			return utils.ErrConflict
		}
	}
	s.ID = r.c.newID()
	cp := *s
	r.c.stores[s.ID] = &cp
	return nil
}

func (r fakeStoreRepo) GetByID(_ context.Context, id int64) (*models.Store, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	s, ok := r.c.stores[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r fakeStoreRepo) List(_ context.Context) ([]*models.Store, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	var out []*models.Store
	for _, s := range r.c.stores {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeStoreRepo) Delete(_ context.Context, id int64) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.stores[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.c.stores, id)
	for iid, it := range r.c.items {
		if it.StoreID == id {
			delete(r.c.items, iid)
		}
	}
	for tid, tg := range r.c.tags {
		if tg.StoreID == id {
			delete(r.c.tags, tid)
		}
	}
	return nil
}

type fakeItemRepo struct{ c *catalogue }

func (r fakeItemRepo) insert(it *models.Item) error {
	if _, ok := r.c.stores[it.StoreID]; !ok {
		return utils.ErrNotFound
	}
	for _, existing := range r.c.items {
		if existing.Name == it.Name && existing.ID != it.ID {
			return utils.ErrConflict
		}
	}
	cp := *it
	r.c.items[it.ID] = &cp
	return nil
}

func (r fakeItemRepo) Create(_ context.Context, it *models.Item) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	id := r.c.newID()
	it.ID = id
	if err := r.insert(it); err != nil {
		it.ID = 0
		return err
	}
	return nil
}

func (r fakeItemRepo) CreateWithID(_ context.Context, it *models.Item) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.items[it.ID]; ok {
		return utils.ErrConflict
	}
	if it.ID > r.c.nextID {
		r.c.nextID = it.ID
	}
	return r.insert(it)
}

func (r fakeItemRepo) GetByID(_ context.Context, id int64) (*models.Item, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	it, ok := r.c.items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r fakeItemRepo) filter(keep func(*models.Item) bool) []*models.Item {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	var out []*models.Item
	for _, it := range r.c.items {
		if keep(it) {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeItemRepo) List(_ context.Context) ([]*models.Item, error) {
	return r.filter(func(*models.Item) bool { return true }), nil
}

func (r fakeItemRepo) ListByStore(_ context.Context, storeID int64) ([]*models.Item, error) {
	return r.filter(func(it *models.Item) bool { return it.StoreID == storeID }), nil
}

func (r fakeItemRepo) ListByTag(_ context.Context, tagID int64) ([]*models.Item, error) {
	return r.filter(func(it *models.Item) bool { return r.c.links[[2]int64{it.ID, tagID}] }), nil
}

func (r fakeItemRepo) Update(_ context.Context, it *models.Item) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	existing, ok := r.c.items[it.ID]
	if !ok {
		return utils.ErrNotFound
	}
	it.StoreID = existing.StoreID
	return r.insert(it)
}

func (r fakeItemRepo) Delete(_ context.Context, id int64) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.items[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.c.items, id)
	for k := range r.c.links {
		if k[0] == id {
			delete(r.c.links, k)
		}
	}
	return nil
}

type fakeTagRepo struct{ c *catalogue }

func (r fakeTagRepo) Create(_ context.Context, tg *models.Tag) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.stores[tg.StoreID]; !ok {
		return utils.ErrNotFound
	}
	for _, existing := range r.c.tags {
		if existing.Name == tg.Name {
			return utils.ErrConflict
		}
	}
	tg.ID = r.c.newID()
	cp := *tg
	r.c.tags[tg.ID] = &cp
	return nil
}

func (r fakeTagRepo) GetByID(_ context.Context, id int64) (*models.Tag, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	tg, ok := r.c.tags[id]
	if !ok {
		return nil, nil
	}
	cp := *tg
	return &cp, nil
}

func (r fakeTagRepo) filter(keep func(*models.Tag) bool) []*models.Tag {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	var out []*models.Tag
	for _, tg := range r.c.tags {
		if keep(tg) {
			cp := *tg
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeTagRepo) ListByStore(_ context.Context, storeID int64) ([]*models.Tag, error) {
	return r.filter(func(tg *models.Tag) bool { return tg.StoreID == storeID }), nil
}

func (r fakeTagRepo) ListByItem(_ context.Context, itemID int64) ([]*models.Tag, error) {
	return r.filter(func(tg *models.Tag) bool { return r.c.links[[2]int64{itemID, tg.ID}] }), nil
}

func (r fakeTagRepo) Delete(_ context.Context, id int64) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	if _, ok := r.c.tags[id]; !ok {
		return utils.ErrNotFound
	}
	delete(r.c.tags, id)
	return nil
}

func (r fakeTagRepo) LinkItem(_ context.Context, itemID, tagID int64) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	r.c.links[[2]int64{itemID, tagID}] = true
	return nil
}

func (r fakeTagRepo) UnlinkItem(_ context.Context, itemID, tagID int64) error {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	k := [2]int64{itemID, tagID}
	if !r.c.links[k] {
		return utils.ErrNotFound
	}
	delete(r.c.links, k)
	return nil
}

func (r fakeTagRepo) CountLinkedItems(_ context.Context, tagID int64) (int, error) {
	r.c.mu.Lock()
	defer r.c.mu.Unlock()
	n := 0
	for k := range r.c.links {
		if k[1] == tagID {
			n++
		}
	}
	return n, nil
}
