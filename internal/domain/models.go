// Package domain defines the entities of the diet backend: diets with their
// days and meals, recipes, shopping lists and the references between them.
//
// Every persisted type carries both `json` tags (HTTP payloads and the SQL
// document store body) and `firestore` tags (Firestore documents). Document
// identifiers are never part of the stored body; repositories copy them from
// the document key after decoding.
package domain

import (
	"time"
)

// MealType is the closed set of meal slots within a day.
type MealType string

const (
	MealBreakfast       MealType = "BREAKFAST"
	MealSecondBreakfast MealType = "SECOND_BREAKFAST"
	MealLunch           MealType = "LUNCH"
	MealSnack           MealType = "SNACK"
	MealDinner          MealType = "DINNER"
)

// Valid reports whether m is one of the known meal types.
func (m MealType) Valid() bool {
	switch m {
	case MealBreakfast, MealSecondBreakfast, MealLunch, MealSnack, MealDinner:
		return true
	}
	return false
}

// Meal references a recipe scheduled for a slot and a time of day ("08:00").
type Meal struct {
	RecipeID string   `json:"recipeId" firestore:"recipeId"`
	MealType MealType `json:"mealType" firestore:"mealType"`
	Time     string   `json:"time"     firestore:"time"`
}

// Day is one calendar day of a diet. Date is nil until the day is persisted
// through an update, which stamps it with the server clock.
type Day struct {
	Date  *time.Time `json:"date"  firestore:"date"`
	Meals []Meal     `json:"meals" firestore:"meals"`
}

// DietMetadata describes the file a diet was generated from.
type DietMetadata struct {
	TotalDays int    `json:"totalDays" firestore:"totalDays"`
	FileName  string `json:"fileName"  firestore:"fileName"`
	FileURL   string `json:"fileUrl"   firestore:"fileUrl"`
}

// Diet is a plan of days owned by a single user.
//
// Invariants:
//   - UserID never changes after creation.
//   - Days is never nil once normalized (see Normalize).
//   - CreatedAt is written once by the service and preserved on update.
type Diet struct {
	ID        string        `json:"id"                 firestore:"-"`
	UserID    string        `json:"userId"             firestore:"userId"`
	CreatedAt time.Time     `json:"createdAt"          firestore:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"          firestore:"updatedAt"`
	Days      []Day         `json:"days"               firestore:"days"`
	Metadata  *DietMetadata `json:"metadata,omitempty" firestore:"metadata,omitempty"`
}

// Normalize replaces nil collections with empty ones.
func (d *Diet) Normalize() {
	if d.Days == nil {
		d.Days = []Day{}
	}
	for i := range d.Days {
		if d.Days[i].Meals == nil {
			d.Days[i].Meals = []Meal{}
		}
	}
}

// NutritionalValues holds per-serving macros. All values are non-negative.
type NutritionalValues struct {
	Calories float64 `json:"calories" firestore:"calories"`
	Protein  float64 `json:"protein"  firestore:"protein"`
	Fat      float64 `json:"fat"      firestore:"fat"`
	Carbs    float64 `json:"carbs"    firestore:"carbs"`
}

// Valid reports whether every macro is non-negative.
func (n NutritionalValues) Valid() bool {
	return n.Calories >= 0 && n.Protein >= 0 && n.Fat >= 0 && n.Carbs >= 0
}

// Recipe is a dish referenced by meals. CreatedAt and Photos are owned by the
// server once the recipe exists.
type Recipe struct {
	ID                string             `json:"id"                          firestore:"-"`
	Name              string             `json:"name"                        firestore:"name"`
	Instructions      string             `json:"instructions"                firestore:"instructions"`
	CreatedAt         time.Time          `json:"createdAt"                   firestore:"createdAt"`
	Photos            []string           `json:"photos"                      firestore:"photos"`
	NutritionalValues *NutritionalValues `json:"nutritionalValues,omitempty" firestore:"nutritionalValues,omitempty"`
	ParentRecipeID    *string            `json:"parentRecipeId,omitempty"    firestore:"parentRecipeId,omitempty"`
}

// RecipeReference links a recipe to the diet that uses it. References are
// dependents of the diet and are removed by the cascading delete.
type RecipeReference struct {
	ID       string    `json:"id"       firestore:"-"`
	RecipeID string    `json:"recipeId" firestore:"recipeId"`
	DietID   string    `json:"dietId"   firestore:"dietId"`
	UserID   string    `json:"userId"   firestore:"userId"`
	MealType MealType  `json:"mealType" firestore:"mealType"`
	AddedAt  time.Time `json:"addedAt"  firestore:"addedAt"`
}

// ItemRecipeRef records which recipe contributed a shopping list item.
type ItemRecipeRef struct {
	RecipeID string `json:"recipeId" firestore:"recipeId"`
	Text     string `json:"text"     firestore:"text"`
}

// CategorizedItem is one line of a shopping list.
type CategorizedItem struct {
	Name     string          `json:"name"     firestore:"name"`
	Quantity float64         `json:"quantity" firestore:"quantity"`
	Unit     string          `json:"unit"     firestore:"unit"`
	Original string          `json:"original" firestore:"original"`
	Recipes  []ItemRecipeRef `json:"recipes"  firestore:"recipes"`
}

// ShoppingList groups the items needed for one diet by category.
//
// Items never holds a category with an empty slice; see PruneEmpty.
type ShoppingList struct {
	ID        string                       `json:"id"        firestore:"-"`
	DietID    string                       `json:"dietId"    firestore:"dietId"`
	UserID    string                       `json:"userId"    firestore:"userId"`
	Items     map[string][]CategorizedItem `json:"items"     firestore:"items"`
	CreatedAt time.Time                    `json:"createdAt" firestore:"createdAt"`
	StartDate *time.Time                   `json:"startDate" firestore:"startDate"`
	EndDate   *time.Time                   `json:"endDate"   firestore:"endDate"`
	Version   int                          `json:"version"   firestore:"version"`
}

// PruneEmpty drops categories whose item slice is empty.
func (s *ShoppingList) PruneEmpty() {
	if s.Items == nil {
		s.Items = map[string][]CategorizedItem{}
		return
	}
	for k, v := range s.Items {
		if len(v) == 0 {
			delete(s.Items, k)
		}
	}
}

// DietInfo summarizes the diets of one user. StartDate and EndDate are nil
// when HasDiet is false.
type DietInfo struct {
	HasDiet   bool       `json:"hasDiet"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

// Role of an authenticated principal.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Principal is the identity yielded by the authentication middleware.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the principal may act on behalf of other users.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }
