package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-diet-backend/internal/cache"
	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/repo"
	"github.com/tbourn/go-diet-backend/internal/store"
)

// ---------- in-memory store ----------

// memStore is a store.Client keeping JSON bodies in maps. Hooks allow tests to
// inject failures or observe calls.
type memStore struct {
	mu   sync.Mutex
	docs map[string]map[string][]byte
	seq  int

	// failDelete returns an error for a (collection, id) delete when set.
	failDelete func(collection, id string) error
	// failQuery returns an error for a collection query when set.
	failQuery func(collection string) error

	sets    int
	deletes []string
}

func newMemStore() *memStore {
	return &memStore{docs: map[string]map[string][]byte{}}
}

func (m *memStore) doc(id string, body []byte) *store.Document {
	return store.NewDocument(id, func(v any) error { return json.Unmarshal(body, v) })
}

func (m *memStore) Get(_ context.Context, collection, id string) (*store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.docs[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return m.doc(id, b), nil
}

func (m *memStore) List(_ context.Context, collection string) ([]*store.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.docs[collection]))
	for id := range m.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*store.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.doc(id, m.docs[collection][id]))
	}
	return out, nil
}

func (m *memStore) QueryByField(ctx context.Context, collection, field, value string) ([]*store.Document, error) {
	if m.failQuery != nil {
		if err := m.failQuery(collection); err != nil {
			return nil, err
		}
	}
	all, _ := m.List(ctx, collection)
	var out []*store.Document
	for _, d := range all {
		var body map[string]any
		if err := d.DataTo(&body); err != nil {
			return nil, err
		}
		if s, ok := body[field].(string); ok && s == value {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) Set(_ context.Context, collection, id string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = map[string][]byte{}
	}
	m.docs[collection][id] = b
	m.sets++
	return nil
}

func (m *memStore) Create(ctx context.Context, collection string, data any) (string, error) {
	m.mu.Lock()
	m.seq++
	id := fmt.Sprintf("%s-%d", collection, m.seq)
	m.mu.Unlock()
	return id, m.Set(ctx, collection, id, data)
}

func (m *memStore) Delete(_ context.Context, collection, id string) error {
	if m.failDelete != nil {
		if err := m.failDelete(collection, id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[collection], id)
	m.deletes = append(m.deletes, collection+"/"+id)
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[collection])
}

func (m *memStore) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}

func (m *memStore) deleteLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}

// ---------- repository shim ----------

// repoShim adapts the repo package functions to the service interfaces.
type repoShim struct{}

func (repoShim) ListDiets(ctx context.Context, s store.Client) ([]domain.Diet, error) {
	return repo.ListDiets(ctx, s)
}
func (repoShim) ListDietsByUser(ctx context.Context, s store.Client, userID string) ([]domain.Diet, error) {
	return repo.ListDietsByUser(ctx, s, userID)
}
func (repoShim) GetDiet(ctx context.Context, s store.Client, id string) (*domain.Diet, error) {
	return repo.GetDiet(ctx, s, id)
}
func (repoShim) CreateDiet(ctx context.Context, s store.Client, d domain.Diet) (*domain.Diet, error) {
	return repo.CreateDiet(ctx, s, d)
}
func (repoShim) SaveDiet(ctx context.Context, s store.Client, d domain.Diet) error {
	return repo.SaveDiet(ctx, s, d)
}
func (repoShim) GetShoppingList(ctx context.Context, s store.Client, id string) (*domain.ShoppingList, error) {
	return repo.GetShoppingList(ctx, s, id)
}
func (repoShim) FindShoppingListByDietID(ctx context.Context, s store.Client, dietID string) (*domain.ShoppingList, error) {
	return repo.FindShoppingListByDietID(ctx, s, dietID)
}
func (repoShim) SaveShoppingList(ctx context.Context, s store.Client, l domain.ShoppingList) error {
	return repo.SaveShoppingList(ctx, s, l)
}
func (repoShim) GetRecipe(ctx context.Context, s store.Client, id string) (*domain.Recipe, error) {
	return repo.GetRecipe(ctx, s, id)
}
func (repoShim) GetRecipesByIDs(ctx context.Context, s store.Client, ids []string) ([]domain.Recipe, error) {
	return repo.GetRecipesByIDs(ctx, s, ids)
}
func (repoShim) SaveRecipe(ctx context.Context, s store.Client, r domain.Recipe) error {
	return repo.SaveRecipe(ctx, s, r)
}
func (repoShim) GetIdempotency(ctx context.Context, s store.Client, userID, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, s, userID, key, now)
}
func (repoShim) CreateIdempotency(ctx context.Context, s store.Client, userID, key, dietID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, s, userID, key, dietID, status, ttl)
}

// ---------- builders ----------

type dietFixture struct {
	svc   *DietService
	store *memStore
	cache *cache.Cache
	now   time.Time
}

func newDietFixture() *dietFixture {
	l := zerolog.Nop()
	ms := newMemStore()
	c := cache.New(&l,
		cache.NewLRURegion(cache.RegionDiets, 100, time.Minute),
		cache.NewLRURegion(cache.RegionDietLists, 100, time.Minute),
	)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cascade := NewDietCascade(ms, 4)
	cascade.Log = l
	svc := NewDietService(ms, repoShim{}, cascade, c)
	svc.Log = l
	svc.Now = func() time.Time { return now }
	return &dietFixture{svc: svc, store: ms, cache: c, now: now}
}

func day(y int, m time.Month, d int) domain.Day {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return domain.Day{Date: &t, Meals: []domain.Meal{}}
}
