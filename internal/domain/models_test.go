package domain

import (
	"encoding/json"
	"testing"
)

func TestDiet_NormalizeFillsNilCollections(t *testing.T) {
	d := Diet{Days: []Day{{}}}
	d.Normalize()
	if d.Days[0].Meals == nil {
		t.Fatalf("meals should be non-nil after Normalize")
	}

	var empty Diet
	empty.Normalize()
	if empty.Days == nil || len(empty.Days) != 0 {
		t.Fatalf("days should be an empty slice, got %#v", empty.Days)
	}

	// An empty Days slice serializes as [] and never as null.
	b, err := json.Marshal(empty)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := m["days"].([]any); !ok {
		t.Fatalf("days should serialize as array, got %T", m["days"])
	}
}

func TestShoppingList_PruneEmpty(t *testing.T) {
	s := ShoppingList{Items: map[string][]CategorizedItem{
		"Produce": {},
		"Dairy":   {{Name: "milk"}},
	}}
	s.PruneEmpty()
	if _, ok := s.Items["Produce"]; ok {
		t.Fatalf("empty category should be pruned")
	}
	if len(s.Items["Dairy"]) != 1 {
		t.Fatalf("non-empty category must survive")
	}

	var nilItems ShoppingList
	nilItems.PruneEmpty()
	if nilItems.Items == nil {
		t.Fatalf("PruneEmpty should initialize a nil map")
	}
}

func TestMealTypeAndNutrition_Validation(t *testing.T) {
	if !MealLunch.Valid() || MealType("BRUNCH").Valid() {
		t.Fatalf("meal type validation mismatch")
	}
	if !(NutritionalValues{Calories: 100}).Valid() {
		t.Fatalf("non-negative macros must be valid")
	}
	if (NutritionalValues{Fat: -1}).Valid() {
		t.Fatalf("negative fat must be invalid")
	}
	if !(Principal{Role: RoleAdmin}).IsAdmin() || (Principal{Role: RoleUser}).IsAdmin() {
		t.Fatalf("IsAdmin mismatch")
	}
}
