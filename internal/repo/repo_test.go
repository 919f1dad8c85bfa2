package repo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-diet-backend/internal/domain"
	"github.com/tbourn/go-diet-backend/internal/store"
)

func newRepoStore(t *testing.T) store.Client {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "repo_test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := store.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	c := store.NewSQLClient(db, store.DriverSQLite)
	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDiet_CreateGetSaveDelete(t *testing.T) {
	ctx := context.Background()
	s := newRepoStore(t)

	created, err := CreateDiet(ctx, s, domain.Diet{UserID: "u1", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("CreateDiet: %v", err)
	}
	if created.ID == "" || created.Days == nil {
		t.Fatalf("unexpected created diet: %+v", created)
	}

	got, err := GetDiet(ctx, s, created.ID)
	if err != nil {
		t.Fatalf("GetDiet: %v", err)
	}
	if got.ID != created.ID || got.UserID != "u1" {
		t.Fatalf("unexpected diet: %+v", got)
	}

	got.Days = []domain.Day{{Meals: []domain.Meal{{RecipeID: "r1", MealType: domain.MealLunch, Time: "12:00"}}}}
	if err := SaveDiet(ctx, s, *got); err != nil {
		t.Fatalf("SaveDiet: %v", err)
	}
	again, err := GetDiet(ctx, s, created.ID)
	if err != nil {
		t.Fatalf("GetDiet: %v", err)
	}
	if len(again.Days) != 1 || again.Days[0].Meals[0].RecipeID != "r1" {
		t.Fatalf("save not persisted: %+v", again)
	}

	if err := s.Delete(ctx, CollectionDiets, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := GetDiet(ctx, s, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSaveDiet_MissingID(t *testing.T) {
	if err := SaveDiet(context.Background(), newRepoStore(t), domain.Diet{}); !errors.Is(err, ErrMissingID) {
		t.Fatalf("want ErrMissingID, got %v", err)
	}
}

func TestListDiets_AllAndByUser(t *testing.T) {
	ctx := context.Background()
	s := newRepoStore(t)

	for _, u := range []string{"u1", "u1", "u2"} {
		if _, err := CreateDiet(ctx, s, domain.Diet{UserID: u}); err != nil {
			t.Fatalf("CreateDiet: %v", err)
		}
	}
	all, err := ListDiets(ctx, s)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListDiets: len=%d err=%v", len(all), err)
	}
	mine, err := ListDietsByUser(ctx, s, "u1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("ListDietsByUser: len=%d err=%v", len(mine), err)
	}
	none, err := ListDietsByUser(ctx, s, "nobody")
	if err != nil || len(none) != 0 {
		t.Fatalf("ListDietsByUser(nobody): len=%d err=%v", len(none), err)
	}
}

func TestShoppingList_FindByDietAndSave(t *testing.T) {
	ctx := context.Background()
	s := newRepoStore(t)

	if _, err := FindShoppingListByDietID(ctx, s, "d1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	l, err := CreateShoppingList(ctx, s, domain.ShoppingList{
		DietID: "d1",
		UserID: "u1",
		Items: map[string][]domain.CategorizedItem{
			"Produce": {{Name: "apple", Quantity: 2}},
			"Empty":   {},
		},
	})
	if err != nil {
		t.Fatalf("CreateShoppingList: %v", err)
	}
	if _, ok := l.Items["Empty"]; ok {
		t.Fatalf("empty category must be pruned on create")
	}

	found, err := FindShoppingListByDietID(ctx, s, "d1")
	if err != nil || found.ID != l.ID {
		t.Fatalf("FindShoppingListByDietID: %+v err=%v", found, err)
	}

	found.Items["Produce"] = nil
	if err := SaveShoppingList(ctx, s, *found); err != nil {
		t.Fatalf("SaveShoppingList: %v", err)
	}
	got, err := GetShoppingList(ctx, s, l.ID)
	if err != nil {
		t.Fatalf("GetShoppingList: %v", err)
	}
	if len(got.Items) != 0 {
		t.Fatalf("expected all categories pruned, got %v", got.Items)
	}
}

func TestRecipes_BatchSkipsMissing(t *testing.T) {
	ctx := context.Background()
	s := newRepoStore(t)

	if err := SaveRecipe(ctx, s, domain.Recipe{ID: "r1", Name: "Soup"}); err != nil {
		t.Fatalf("SaveRecipe: %v", err)
	}
	if err := SaveRecipe(ctx, s, domain.Recipe{ID: "r2", Name: "Salad"}); err != nil {
		t.Fatalf("SaveRecipe: %v", err)
	}

	got, err := GetRecipesByIDs(ctx, s, []string{"r2", "missing", "r1"})
	if err != nil {
		t.Fatalf("GetRecipesByIDs: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r1" {
		t.Fatalf("unexpected batch: %+v", got)
	}
	if got[0].Photos == nil {
		t.Fatalf("photos should default to empty slice")
	}
}

func TestRecipeReferences_ByDiet(t *testing.T) {
	ctx := context.Background()
	s := newRepoStore(t)

	for _, d := range []string{"d1", "d1", "d2"} {
		if _, err := CreateRecipeReference(ctx, s, domain.RecipeReference{RecipeID: "r", DietID: d}); err != nil {
			t.Fatalf("CreateRecipeReference: %v", err)
		}
	}
	refs, err := ListRecipeReferencesByDiet(ctx, s, "d1")
	if err != nil || len(refs) != 2 {
		t.Fatalf("ListRecipeReferencesByDiet: len=%d err=%v", len(refs), err)
	}
	for _, r := range refs {
		if r.ID == "" || r.DietID != "d1" {
			t.Fatalf("unexpected ref: %+v", r)
		}
	}
}

func TestIdempotency_CreateGetExpire(t *testing.T) {
	ctx := context.Background()
	s := newRepoStore(t)

	if _, err := GetIdempotency(ctx, s, "u1", "", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty key must be ErrNotFound, got %v", err)
	}

	rec, err := CreateIdempotency(ctx, s, "u1", "k1", "d1", 201, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID != IdempotencyDocID("u1", "k1") {
		t.Fatalf("unexpected doc id %s", rec.ID)
	}

	got, err := GetIdempotency(ctx, s, "u1", "k1", time.Now())
	if err != nil || got.DietID != "d1" || got.Status != 201 {
		t.Fatalf("GetIdempotency: %+v err=%v", got, err)
	}

	// Keys are scoped per user.
	if _, err := GetIdempotency(ctx, s, "u2", "k1", time.Now()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user must not see key, got %v", err)
	}

	if _, err := GetIdempotency(ctx, s, "u1", "k1", time.Now().Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired record must be ErrNotFound, got %v", err)
	}
}
